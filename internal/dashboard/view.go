package dashboard

import (
	"strconv"

	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

// PhaseView is a phase with its derived status.
type PhaseView struct {
	Phase
	Status Status
}

// View holds every value the renderers display, derived from a snapshot.
type View struct {
	HasProject bool
	ProjectID  string
	Status     string

	Phases []PhaseView

	RequirementCount int
	TaskCount        int
	CodeFileCount    int
	Cost             string
	TotalDays        float64

	Requirements []types.Requirement
	Tasks        []types.WBSTask
	Agents       []types.AgentStatus

	CodeFiles    []string
	CodeTab      int
	ActiveFile   string
	ActiveSource string

	CanSubmit    bool
	CanPrototype bool
	Error        string
}

// Derive computes the view from a snapshot. It keeps no state of its own.
func Derive(s Snapshot) View {
	p := s.Project

	v := View{
		HasProject:       p != nil,
		ProjectID:        s.ProjectID(),
		RequirementCount: len(p.Requirements()),
		TaskCount:        len(p.Tasks()),
		Cost:             FormatCost(p.EstimatedCost()),
		TotalDays:        p.TotalEstimatedDays(),
		Requirements:     p.Requirements(),
		Tasks:            p.Tasks(),
		Agents:           p.SortedAgents(),
		CodeFiles:        p.CodeFiles(),
		CanSubmit:        !s.Submitting,
		Error:            s.Error,
	}
	if p != nil {
		v.Status = p.Status
	}
	v.CodeFileCount = len(v.CodeFiles)
	v.CanPrototype = v.CodeFileCount > 0 && !s.ProtoLoading

	v.Phases = make([]PhaseView, len(Phases))
	for i, ph := range Phases {
		v.Phases[i] = PhaseView{Phase: ph, Status: PhaseStatus(ph.Key, p, s.ProtoReady)}
	}

	if v.CodeFileCount > 0 {
		tab := s.CodeTab
		if tab >= v.CodeFileCount {
			tab = 0
		}
		v.CodeTab = tab
		v.ActiveFile = v.CodeFiles[tab]
		v.ActiveSource, _ = p.Snippet(v.ActiveFile)
	}
	return v
}

// FormatCost renders an estimated cost as "$" followed by the shortest
// decimal representation.
func FormatCost(cost float64) string {
	return "$" + strconv.FormatFloat(cost, 'f', -1, 64)
}
