package backendtest

import (
	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

func advance(p *types.ProjectState, stage Stage) {
	if stage >= StageSRS && p.SRS == nil {
		p.SRS = &types.SRS{
			ProjectID: p.ID,
			Requirements: []types.Requirement{
				{ID: "REQ-1", Description: "Users can add a todo", Priority: types.PriorityHigh,
					AcceptanceCriteria: []string{"A new todo appears in the list"}},
				{ID: "REQ-2", Description: "Users can complete a todo", Priority: types.PriorityMedium},
			},
			GeneratedAt: "2026-10-19T10:00:00Z",
		}
		p.Status = "srs_complete"
		setAgent(p, "requirements", types.AgentCompleted)
		setAgent(p, "planner", types.AgentWorking)
	}
	if stage >= StagePlan && p.Plan == nil {
		p.Plan = &types.ProjectPlan{
			ProjectID: p.ID,
			Tasks: []types.WBSTask{
				{ID: "T-1", Name: "Data model", EstimatedDays: 2},
				{ID: "T-2", Name: "Todo UI", EstimatedDays: 3, Dependencies: []string{"T-1"}},
			},
			TotalEstimatedDays: 5,
			EstimatedCost:      4000,
		}
		p.Status = "plan_complete"
		setAgent(p, "planner", types.AgentCompleted)
		setAgent(p, "roles", types.AgentWorking)
	}
	if stage >= StageRoles && p.Plan != nil && !p.HasAssignedRoles() {
		for i := range p.Plan.Tasks {
			role := "Frontend Developer"
			if i == 0 {
				role = "Backend Developer"
			}
			p.Plan.Tasks[i].AssignedRole = &role
		}
		p.Status = "roles_assigned"
		setAgent(p, "roles", types.AgentCompleted)
		setAgent(p, "coder", types.AgentWorking)
	}
	if stage >= StageArtifacts && p.Artifacts == nil {
		p.Artifacts = &types.Artifacts{
			FileStructure: []string{"src/", "src/App.tsx", "src/main.py"},
			CodeSnippets: map[string]string{
				"src/main.py": "print('todo')\n",
				"src/App.tsx": "export default function App() { return null }\n",
			},
		}
		p.Status = "completed"
		setAgent(p, "coder", types.AgentCompleted)
	}
}

func setAgent(p *types.ProjectState, name string, state types.AgentState) {
	if p.AgentStatuses == nil {
		p.AgentStatuses = make(map[string]types.AgentStatus)
	}
	p.AgentStatuses[name] = types.AgentStatus{AgentName: name, Status: state}
}
