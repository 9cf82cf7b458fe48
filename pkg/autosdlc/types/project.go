// Package types mirrors the JSON model served by the AutoSDLC backend.
//
// Every value here is produced by the backend and only ever replaced
// wholesale by the client; nothing is mutated locally.
package types

import (
	"sort"
	"time"
)

// ProjectBrief is the free-text description a project is created from.
type ProjectBrief struct {
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description" yaml:"description"`
	BriefContent string `json:"brief_content" yaml:"brief_content"`
}

// Requirement is a single extracted software requirement.
type Requirement struct {
	ID                 string   `json:"id" yaml:"id"`
	Description        string   `json:"description" yaml:"description"`
	Priority           Priority `json:"priority" yaml:"priority"`
	AcceptanceCriteria []string `json:"acceptance_criteria" yaml:"acceptance_criteria"`
}

// SRS is the software requirements specification produced for a project.
type SRS struct {
	ProjectID    string        `json:"project_id" yaml:"project_id"`
	Requirements []Requirement `json:"requirements" yaml:"requirements"`
	GeneratedAt  string        `json:"generated_at,omitempty" yaml:"generated_at,omitempty"`
}

// WBSTask is one work-breakdown task of a project plan.
type WBSTask struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description" yaml:"description"`
	EstimatedDays float64  `json:"estimated_days" yaml:"estimated_days"`
	Dependencies  []string `json:"dependencies" yaml:"dependencies"`
	AssignedRole  *string  `json:"assigned_role,omitempty" yaml:"assigned_role,omitempty"`
}

// Role returns the assigned role or "" when none is set.
func (t WBSTask) Role() string {
	if t.AssignedRole == nil {
		return ""
	}
	return *t.AssignedRole
}

// ProjectPlan is the ordered task list with aggregate estimates.
type ProjectPlan struct {
	ProjectID          string    `json:"project_id" yaml:"project_id"`
	Tasks              []WBSTask `json:"tasks" yaml:"tasks"`
	TotalEstimatedDays float64   `json:"total_estimated_days" yaml:"total_estimated_days"`
	EstimatedCost      float64   `json:"estimated_cost" yaml:"estimated_cost"`
}

// AgentState is the lifecycle state reported for a backend agent.
type AgentState string

// Agent states reported by the backend
const (
	AgentIdle      AgentState = "idle"
	AgentWorking   AgentState = "working"
	AgentCompleted AgentState = "completed"
	AgentFailed    AgentState = "failed"
)

// AgentStatus is the last known status of one backend agent.
type AgentStatus struct {
	AgentName   string     `json:"agent_name" yaml:"agent_name"`
	Status      AgentState `json:"status" yaml:"status"`
	CurrentTask *string    `json:"current_task,omitempty" yaml:"current_task,omitempty"`
	LastUpdated string     `json:"last_updated,omitempty" yaml:"last_updated,omitempty"`
}

// Artifacts holds the generated file listing and sources.
type Artifacts struct {
	FileStructure []string          `json:"file_structure" yaml:"file_structure"`
	CodeSnippets  map[string]string `json:"code_snippets" yaml:"code_snippets"`
}

// ProjectState is the aggregate root returned by the backend.
type ProjectState struct {
	ID            string                 `json:"id" yaml:"id"`
	Brief         ProjectBrief           `json:"brief" yaml:"brief"`
	SRS           *SRS                   `json:"srs,omitempty" yaml:"srs,omitempty"`
	Plan          *ProjectPlan           `json:"plan,omitempty" yaml:"plan,omitempty"`
	Artifacts     *Artifacts             `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
	Status        string                 `json:"status" yaml:"status"`
	AgentStatuses map[string]AgentStatus `json:"agent_statuses" yaml:"agent_statuses"`
}

// Requirements returns the extracted requirements, or nil.
func (p *ProjectState) Requirements() []Requirement {
	if p == nil || p.SRS == nil {
		return nil
	}
	return p.SRS.Requirements
}

// Tasks returns the planned tasks, or nil.
func (p *ProjectState) Tasks() []WBSTask {
	if p == nil || p.Plan == nil {
		return nil
	}
	return p.Plan.Tasks
}

// EstimatedCost returns the plan's estimated cost, 0 without a plan.
func (p *ProjectState) EstimatedCost() float64 {
	if p == nil || p.Plan == nil {
		return 0
	}
	return p.Plan.EstimatedCost
}

// TotalEstimatedDays returns the plan's duration estimate, 0 without a plan.
func (p *ProjectState) TotalEstimatedDays() float64 {
	if p == nil || p.Plan == nil {
		return 0
	}
	return p.Plan.TotalEstimatedDays
}

// CodeFiles returns the paths of generated code snippets sorted by path.
func (p *ProjectState) CodeFiles() []string {
	if p == nil || p.Artifacts == nil || len(p.Artifacts.CodeSnippets) == 0 {
		return nil
	}
	files := make([]string, 0, len(p.Artifacts.CodeSnippets))
	for path := range p.Artifacts.CodeSnippets {
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

// Snippet returns the generated source for path.
func (p *ProjectState) Snippet(path string) (string, bool) {
	if p == nil || p.Artifacts == nil {
		return "", false
	}
	src, ok := p.Artifacts.CodeSnippets[path]
	return src, ok
}

// HasAssignedRoles reports whether any task carries an assigned role.
func (p *ProjectState) HasAssignedRoles() bool {
	for _, t := range p.Tasks() {
		if t.Role() != "" {
			return true
		}
	}
	return false
}

// SortedAgents returns the agent statuses ordered by name.
func (p *ProjectState) SortedAgents() []AgentStatus {
	if p == nil || len(p.AgentStatuses) == 0 {
		return nil
	}
	names := make([]string, 0, len(p.AgentStatuses))
	for name := range p.AgentStatuses {
		names = append(names, name)
	}
	sort.Strings(names)

	agents := make([]AgentStatus, 0, len(names))
	for _, name := range names {
		a := p.AgentStatuses[name]
		if a.AgentName == "" {
			a.AgentName = name
		}
		agents = append(agents, a)
	}
	return agents
}

// CreateProjectRequest is the body of POST /projects.
type CreateProjectRequest = ProjectBrief

// PrototypeResponse is the body returned by POST /prototype/{id}.
type PrototypeResponse struct {
	HTML string `json:"html"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message   string `json:"message"`
	ProjectID string `json:"project_id,omitempty"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ChatRole identifies the author of a transcript line.
type ChatRole string

// Transcript roles
const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one line of the chat transcript.
type ChatMessage struct {
	Role    ChatRole  `json:"role" yaml:"role"`
	Content string    `json:"content" yaml:"content"`
	At      time.Time `json:"at" yaml:"at"`
}
