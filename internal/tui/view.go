package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/autosdlc/autosdlc/internal/dashboard"
	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

// View renders the dashboard (required by Bubble Tea)
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.quitting {
		return ""
	}

	snap := m.ctrl.Store().Snapshot()
	v := dashboard.Derive(snap)

	if snap.ProtoView {
		return m.renderPreview(v)
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(v),
		m.renderBrief(snap),
		m.renderPipeline(v),
		m.renderStats(v),
		m.renderAgents(v),
		m.renderSections(snap, v),
		m.renderPrototype(snap, v),
		m.renderFooter(),
	)

	if !snap.ChatOpen {
		return main
	}
	chat := m.renderChat(snap)
	if m.width >= 100 {
		return lipgloss.JoinHorizontal(lipgloss.Top, main, chat)
	}
	return lipgloss.JoinVertical(lipgloss.Left, main, chat)
}

func (m Model) renderHeader(v dashboard.View) string {
	title := m.styles.Title.Render("AutoSDLC")
	sub := "Submit a brief to start the pipeline"
	if v.HasProject {
		sub = fmt.Sprintf("Project %s · %s", v.ProjectID, v.Status)
	}
	return title + "  " + m.styles.Subtitle.Render(sub)
}

func (m Model) renderBrief(snap dashboard.Snapshot) string {
	panel := m.styles.Panel
	if m.focus == focusBrief {
		panel = m.styles.Focused
	}
	hint := m.styles.Muted.Render("ctrl+s submit · esc done")
	if snap.Submitting {
		hint = m.spinner.View() + " Submitting..."
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Label.Render("Project brief"),
		m.brief.View(),
		hint,
	)
	return panel.Width(max(20, m.mainWidth()-2)).Render(body)
}

func (m Model) renderPipeline(v dashboard.View) string {
	parts := make([]string, len(v.Phases))
	for i, ph := range v.Phases {
		style := m.styles.PhaseStyle(ph.Status)
		parts[i] = style.Render(phaseIcon(ph.Status, m.spinner.View()) + " " + ph.Label)
	}
	line := strings.Join(parts, m.styles.Muted.Render(" → "))
	if v.Error != "" {
		line += "\n" + m.styles.Error.Render(v.Error)
	}
	return line
}

func (m Model) renderStats(v dashboard.View) string {
	stat := func(label, value string) string {
		return m.styles.Label.Render(label) + " " + m.styles.Value.Render(value)
	}
	return strings.Join([]string{
		stat("Requirements", fmt.Sprint(v.RequirementCount)),
		stat("Tasks", fmt.Sprint(v.TaskCount)),
		stat("Files", fmt.Sprint(v.CodeFileCount)),
		stat("Cost", v.Cost),
		stat("Days", fmt.Sprint(v.TotalDays)),
	}, "   ")
}

func (m Model) renderAgents(v dashboard.View) string {
	if len(v.Agents) == 0 {
		return ""
	}
	parts := make([]string, len(v.Agents))
	for i, a := range v.Agents {
		s := a.AgentName + " " + string(a.Status)
		if a.CurrentTask != nil && *a.CurrentTask != "" {
			s += ": " + *a.CurrentTask
		}
		parts[i] = m.styles.AgentStyle(a.Status).Render(s)
	}
	return m.styles.Muted.Render("Agents ") + strings.Join(parts, m.styles.Muted.Render(" · "))
}

func (m Model) renderSections(snap dashboard.Snapshot, v dashboard.View) string {
	tab := func(section dashboard.Section, label string) string {
		if snap.ActiveSection == section {
			return m.styles.ActiveTab.Render(label)
		}
		return m.styles.Tab.Render(label)
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top,
		tab(dashboard.SectionRequirements, fmt.Sprintf("1 Requirements (%d)", v.RequirementCount)),
		tab(dashboard.SectionPlan, fmt.Sprintf("2 Plan (%d)", v.TaskCount)),
		tab(dashboard.SectionCode, fmt.Sprintf("3 Code (%d)", v.CodeFileCount)),
	)
	if snap.ActiveSection == dashboard.SectionNone {
		return tabs
	}

	rows := []string{tabs}
	if snap.ActiveSection == dashboard.SectionCode && v.CodeFileCount > 0 {
		files := make([]string, len(v.CodeFiles))
		for i, f := range v.CodeFiles {
			if i == v.CodeTab {
				files[i] = m.styles.ActiveTab.Render(f)
			} else {
				files[i] = m.styles.Tab.Render(f)
			}
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, files...))
	}
	rows = append(rows, m.styles.Panel.Render(m.detail.View()))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderPrototype(snap dashboard.Snapshot, v dashboard.View) string {
	var line string
	switch {
	case snap.ProtoLoading || m.protoPending:
		line = m.spinner.View() + " Generating prototype..."
	case snap.ProtoReady:
		line = m.styles.Completed.Render("Prototype ready") + m.styles.Muted.Render(" · v preview")
		if m.opts.PreviewURL != "" {
			line += m.styles.Muted.Render(" · o open " + m.opts.PreviewURL)
		}
	case v.CanPrototype:
		line = m.styles.Muted.Render("p generate prototype")
	default:
		line = m.styles.Muted.Render("Prototype available once code is generated")
	}
	if m.notice != "" {
		line += "\n" + m.styles.Error.Render(m.notice)
	}
	return line
}

func (m Model) renderFooter() string {
	return m.help.View(m.keys)
}

func (m Model) renderChat(snap dashboard.Snapshot) string {
	width := m.width - m.mainWidth() - 4
	if m.width < 100 {
		width = m.width - 4
	}
	width = max(20, width)

	lines := make([]string, 0, len(snap.Transcript)+2)
	for _, msg := range snap.Transcript {
		label := m.styles.Assistant.Render("Assistant")
		if msg.Role == types.RoleUser {
			label = m.styles.User.Render("You")
		}
		lines = append(lines, label, lipgloss.NewStyle().Width(width-2).Render(msg.Content), "")
	}
	if snap.ChatPending > 0 {
		lines = append(lines, m.spinner.View()+" Thinking...")
	}

	// Keep the newest messages when the transcript outgrows the panel.
	if limit := max(4, m.height-8); len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}

	panel := m.styles.Panel
	if m.focus == focusChat {
		panel = m.styles.Focused
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Label.Render("AutoSDLC Assistant"),
		strings.Join(lines, "\n"),
		m.chat.View(),
	)
	return panel.Width(width).Render(body)
}

func (m Model) renderPreview(v dashboard.View) string {
	header := m.styles.Title.Render("Prototype preview") + "  " +
		m.styles.Subtitle.Render("Project "+v.ProjectID)
	hint := "esc back · o open in browser"
	if m.opts.PreviewURL != "" {
		hint += " · " + m.opts.PreviewURL
	}
	footer := m.styles.Muted.Render(hint)
	if m.notice != "" {
		footer += "\n" + m.styles.Error.Render(m.notice)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.detail.View(), footer)
}

// detailFor returns a key identifying the selected content and the content
// itself for the scrollable detail viewport.
func detailFor(snap dashboard.Snapshot, v dashboard.View) (string, string) {
	if snap.ProtoView {
		return "prototype", snap.ProtoHTML
	}
	switch snap.ActiveSection {
	case dashboard.SectionRequirements:
		return "requirements", requirementsText(v.Requirements)
	case dashboard.SectionPlan:
		return "plan", planText(v)
	case dashboard.SectionCode:
		if v.ActiveFile == "" {
			return "code", "No code generated yet."
		}
		return "code:" + v.ActiveFile, v.ActiveSource
	}
	return "", ""
}

func requirementsText(reqs []types.Requirement) string {
	if len(reqs) == 0 {
		return "No requirements yet."
	}
	var b strings.Builder
	for _, r := range reqs {
		fmt.Fprintf(&b, "%s [%s] %s\n", r.ID, r.Priority, r.Description)
		for _, ac := range r.AcceptanceCriteria {
			fmt.Fprintf(&b, "    - %s\n", ac)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func planText(v dashboard.View) string {
	if len(v.Tasks) == 0 {
		return "No plan yet."
	}
	var b strings.Builder
	for _, t := range v.Tasks {
		fmt.Fprintf(&b, "%s %s (%gd)", t.ID, t.Name, t.EstimatedDays)
		if role := t.Role(); role != "" {
			fmt.Fprintf(&b, " · %s", role)
		}
		if len(t.Dependencies) > 0 {
			fmt.Fprintf(&b, " · after %s", strings.Join(t.Dependencies, ", "))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nTotal %g days · %s", v.TotalDays, v.Cost)
	return b.String()
}
