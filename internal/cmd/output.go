package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/autosdlc/autosdlc/internal/dashboard"
	"github.com/autosdlc/autosdlc/internal/export"
	"github.com/autosdlc/autosdlc/internal/health"
	"github.com/autosdlc/autosdlc/internal/tui"
	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

// painter applies dashboard styles only when output is styled.
type painter struct {
	styled bool
	tui.Styles
}

func newPainter(styled bool) painter {
	return painter{styled: styled, Styles: tui.DefaultStyles()}
}

func (p painter) paint(style lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return style.Render(text)
}

func (p painter) phases(v dashboard.View) string {
	parts := make([]string, len(v.Phases))
	for i, ph := range v.Phases {
		parts[i] = p.paint(p.PhaseStyle(ph.Status), phaseMark(ph.Status)+" "+ph.Label)
	}
	return strings.Join(parts, " → ")
}

func phaseMark(status dashboard.Status) string {
	switch status {
	case dashboard.StatusCompleted:
		return "✓"
	case dashboard.StatusWorking:
		return "…"
	default:
		return "○"
	}
}

// stateOutput prints a project summary as text and the raw ProjectState as
// json or yaml.
type stateOutput struct {
	State *types.ProjectState
}

func (s stateOutput) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.State)
}

func (s stateOutput) MarshalYAML() (any, error) {
	return s.State, nil
}

func (s stateOutput) RenderText(w io.Writer, styled bool) error {
	p := newPainter(styled)
	v := dashboard.Derive(dashboard.Snapshot{Project: s.State})

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", p.paint(p.Title, "Project "+v.ProjectID), p.paint(p.Subtitle, v.Status))
	fmt.Fprintf(&b, "  %s\n", p.phases(v))
	fmt.Fprintf(&b, "  %s %d   %s %d   %s %d   %s %s   %s %g\n",
		p.paint(p.Label, "Requirements"), v.RequirementCount,
		p.paint(p.Label, "Tasks"), v.TaskCount,
		p.paint(p.Label, "Files"), v.CodeFileCount,
		p.paint(p.Label, "Cost"), v.Cost,
		p.paint(p.Label, "Days"), v.TotalDays,
	)
	for _, a := range v.Agents {
		line := a.AgentName + " " + string(a.Status)
		if a.CurrentTask != nil && *a.CurrentTask != "" {
			line += ": " + *a.CurrentTask
		}
		fmt.Fprintf(&b, "  %s %s\n", p.paint(p.Muted, "agent"), p.paint(p.AgentStyle(a.Status), line))
	}
	for _, f := range v.CodeFiles {
		fmt.Fprintf(&b, "  %s %s\n", p.paint(p.Muted, "file"), f)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// projectList prints a table of projects.
type projectList []types.ProjectState

func (l projectList) RenderText(w io.Writer, styled bool) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "No projects yet. Submit one with 'autosdlc submit'.")
		return err
	}

	p := newPainter(styled)
	rows := make([][]string, len(l))
	for i := range l {
		state := &l[i]
		v := dashboard.Derive(dashboard.Snapshot{Project: state})
		rows[i] = []string{
			v.ProjectID,
			v.Status,
			fmt.Sprint(v.RequirementCount),
			fmt.Sprint(v.TaskCount),
			fmt.Sprint(v.CodeFileCount),
			v.Cost,
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "STATUS", "REQUIREMENTS", "TASKS", "FILES", "COST").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			cell := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow && p.styled {
				return cell.Inherit(p.Label)
			}
			return cell
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// watchEvent is one line of 'autosdlc watch' output.
type watchEvent struct {
	At     time.Time           `json:"at" yaml:"at"`
	Digest string              `json:"digest" yaml:"digest"`
	State  *types.ProjectState `json:"state" yaml:"state"`
}

func (e watchEvent) RenderText(w io.Writer, styled bool) error {
	p := newPainter(styled)
	v := dashboard.Derive(dashboard.Snapshot{Project: e.State})
	_, err := fmt.Fprintf(w, "%s %s %s  %s  %s\n",
		p.paint(p.Muted, e.At.Format(time.TimeOnly)),
		p.paint(p.Title, v.ProjectID),
		v.Status,
		p.phases(v),
		p.paint(p.Muted, fmt.Sprintf("req %d · tasks %d · files %d", v.RequirementCount, v.TaskCount, v.CodeFileCount)),
	)
	return err
}

// chatReply is the answer to one chat message.
type chatReply struct {
	ProjectID string `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	Message   string `json:"message" yaml:"message"`
	Reply     string `json:"reply" yaml:"reply"`
}

func (r chatReply) RenderText(w io.Writer, styled bool) error {
	p := newPainter(styled)
	_, err := fmt.Fprintf(w, "%s %s\n", p.paint(p.Assistant, "Assistant:"), r.Reply)
	return err
}

// healthOutput prints a health report.
type healthOutput struct {
	health.Report `yaml:",inline"`
	Origin        string `json:"origin" yaml:"origin"`
}

func (h healthOutput) RenderText(w io.Writer, styled bool) error {
	p := newPainter(styled)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %s\n", p.paint(p.Title, "Backend"), h.Origin, p.paint(healthStyle(p, h.Status), string(h.Status)))
	for _, c := range h.Checks {
		fmt.Fprintf(&b, "  %-9s %s  %s %s\n",
			c.Name,
			p.paint(healthStyle(p, c.Status), string(c.Status)),
			c.Message,
			p.paint(p.Muted, c.Latency.Round(time.Millisecond).String()),
		)
		if s, ok := c.Details["suggestion"].(string); ok {
			fmt.Fprintf(&b, "            %s\n", p.paint(p.Muted, s))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func healthStyle(p painter, s health.Status) lipgloss.Style {
	switch s {
	case health.StatusHealthy:
		return p.Completed
	case health.StatusDegraded:
		return p.Working
	default:
		return p.Failed
	}
}

// exportOutput prints the result of an export.
type exportOutput struct {
	export.Result `yaml:",inline"`
	Changed       []string `json:"changed,omitempty" yaml:"changed,omitempty"`

	verified bool
}

func (e exportOutput) RenderText(w io.Writer, styled bool) error {
	p := newPainter(styled)

	var b strings.Builder
	if e.verified {
		fmt.Fprintf(&b, "%s %d files in %s, %d changed\n", p.paint(p.Title, "Verified"), len(e.Manifest.Files), e.Dir, len(e.Changed))
	} else {
		fmt.Fprintf(&b, "%s %d files to %s\n", p.paint(p.Title, "Exported"), len(e.Manifest.Files), e.Dir)
	}
	for _, f := range e.Manifest.Files {
		fmt.Fprintf(&b, "  %s %s\n", f.Path, p.paint(p.Muted, fmt.Sprintf("%d bytes", f.Size)))
	}
	if e.Commit != "" {
		fmt.Fprintf(&b, "%s %s\n", p.paint(p.Label, "Commit"), e.Commit)
	}
	for _, c := range e.Changed {
		fmt.Fprintf(&b, "%s %s\n", p.paint(p.Error, "changed"), c)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
