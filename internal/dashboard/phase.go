package dashboard

import (
	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

// Status is the display state of one pipeline phase.
type Status string

// Phase statuses
const (
	StatusIdle      Status = "idle"
	StatusWorking   Status = "working"
	StatusCompleted Status = "completed"
)

// PhaseKey identifies a pipeline phase.
type PhaseKey string

// Pipeline phases, in display order.
const (
	PhaseSRS       PhaseKey = "srs"
	PhasePlan      PhaseKey = "plan"
	PhaseRoles     PhaseKey = "roles"
	PhaseArtifacts PhaseKey = "artifacts"
	PhasePrototype PhaseKey = "prototype"
)

// Phase is a pipeline phase with its display label.
type Phase struct {
	Key   PhaseKey
	Label string
}

// Phases lists the pipeline phases in display order.
var Phases = []Phase{
	{Key: PhaseSRS, Label: "Requirements"},
	{Key: PhasePlan, Label: "Planning"},
	{Key: PhaseRoles, Label: "Roles"},
	{Key: PhaseArtifacts, Label: "Code Gen"},
	{Key: PhasePrototype, Label: "Prototype"},
}

// PhaseStatus derives the status of key from the latest project state.
//
// Without a project every phase is idle. A phase is completed once its
// collection is non-empty (or, for the prototype, once protoReady is set).
// Only the requirements phase reports working while it has produced nothing.
func PhaseStatus(key PhaseKey, project *types.ProjectState, protoReady bool) Status {
	if project == nil {
		return StatusIdle
	}

	switch key {
	case PhaseSRS:
		if len(project.Requirements()) > 0 {
			return StatusCompleted
		}
		return StatusWorking
	case PhasePlan:
		if len(project.Tasks()) > 0 {
			return StatusCompleted
		}
	case PhaseRoles:
		if project.HasAssignedRoles() {
			return StatusCompleted
		}
	case PhaseArtifacts:
		if len(project.CodeFiles()) > 0 {
			return StatusCompleted
		}
	case PhasePrototype:
		if protoReady {
			return StatusCompleted
		}
	}
	return StatusIdle
}

// PipelineComplete reports whether every phase up to and including code
// generation is completed.
func PipelineComplete(project *types.ProjectState) bool {
	for _, key := range []PhaseKey{PhaseSRS, PhasePlan, PhaseRoles, PhaseArtifacts} {
		if PhaseStatus(key, project, false) != StatusCompleted {
			return false
		}
	}
	return true
}
