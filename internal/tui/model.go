// Package tui is the interactive terminal dashboard.
//
// The model keeps only widget state. Everything it displays is derived from
// the dashboard store on each render, and every backend action runs as a
// tea.Cmd calling the dashboard controller.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/autosdlc/autosdlc/internal/dashboard"
)

type focusArea int

const (
	focusNav focusArea = iota
	focusBrief
	focusChat
)

// Actions reported back through actionDoneMsg
const (
	actionSubmit    = "submit"
	actionPrototype = "prototype"
	actionChat      = "chat"
	actionOpen      = "open"
)

// StateMsg tells the model the store changed outside a key press, such as
// after a poll refresh.
type StateMsg struct {
	ProjectID string
}

type actionDoneMsg struct {
	action string
	err    error
}

// Options configures the dashboard model.
type Options struct {
	// PreviewURL is the base URL of the running preview server, if any.
	PreviewURL string

	// Open opens a URL in a browser.
	Open func(url string) error
}

// Model is the Bubble Tea model of the dashboard.
type Model struct {
	ctx    context.Context
	ctrl   *dashboard.Controller
	opts   Options
	keys   keyMap
	styles Styles

	focus   focusArea
	brief   textarea.Model
	chat    textinput.Model
	detail  viewport.Model
	spinner spinner.Model
	help    help.Model

	detailKey     string
	detailContent string
	protoPending  bool
	notice        string

	width    int
	height   int
	ready    bool
	quitting bool
}

// NewModel creates a dashboard model driving ctrl. Actions run with ctx.
func NewModel(ctx context.Context, ctrl *dashboard.Controller, opts Options) Model {
	brief := textarea.New()
	brief.Placeholder = "Describe the software you want built..."
	brief.ShowLineNumbers = false
	brief.CharLimit = 0
	brief.SetHeight(5)
	brief.SetValue(ctrl.Store().Snapshot().Brief)
	brief.Focus()

	chat := textinput.New()
	chat.Placeholder = "Ask about the plan, architecture or costs"
	chat.Prompt = "› "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		opts:    opts,
		keys:    defaultKeyMap(),
		styles:  DefaultStyles(),
		focus:   focusBrief,
		brief:   brief,
		chat:    chat,
		detail:  viewport.New(0, 0),
		spinner: sp,
		help:    help.New(),
	}
}

// Init starts the cursor blink and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update handles messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()

	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)

	case StateMsg:
		// Rendering reads the store; nothing to copy.

	case actionDoneMsg:
		switch msg.action {
		case actionPrototype:
			m.protoPending = false
		case actionOpen:
			if msg.err != nil {
				m.notice = msg.err.Error()
			}
		}

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)

	default:
		m, cmd = m.updateInputs(msg)
	}

	m.syncDetail()
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	store := m.ctrl.Store()
	snap := store.Snapshot()
	m.notice = ""

	if snap.ProtoView {
		return m.handlePreviewKey(msg)
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusBrief:
		if key.Matches(msg, m.keys.Submit) {
			return m, m.submit()
		}
		if key.Matches(msg, m.keys.Back) || msg.Type == tea.KeyTab {
			cmd = m.setFocus(focusNav)
			return m, cmd
		}
		m.brief, cmd = m.brief.Update(msg)
		store.SetBrief(m.brief.Value())
		return m, cmd

	case focusChat:
		if key.Matches(msg, m.keys.Back) {
			cmd = m.setFocus(focusNav)
			return m, cmd
		}
		if key.Matches(msg, m.keys.Send) {
			text := m.chat.Value()
			if strings.TrimSpace(text) == "" {
				return m, nil
			}
			m.chat.Reset()
			return m, m.sendChat(text)
		}
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Focus):
		cmd = m.setFocus(focusBrief)
		return m, cmd

	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()

	case key.Matches(msg, m.keys.Chat):
		store.ToggleChat()
		if !snap.ChatOpen {
			cmd = m.setFocus(focusChat)
			return m, cmd
		}

	case key.Matches(msg, m.keys.Requirements):
		store.ToggleSection(dashboard.SectionRequirements)

	case key.Matches(msg, m.keys.Plan):
		store.ToggleSection(dashboard.SectionPlan)

	case key.Matches(msg, m.keys.Code):
		store.ToggleSection(dashboard.SectionCode)

	case key.Matches(msg, m.keys.PrevTab), key.Matches(msg, m.keys.NextTab):
		v := dashboard.Derive(snap)
		if n := v.CodeFileCount; n > 0 {
			step := 1
			if key.Matches(msg, m.keys.PrevTab) {
				step = n - 1
			}
			store.SelectCodeTab((v.CodeTab + step) % n)
		}

	case key.Matches(msg, m.keys.Prototype):
		if dashboard.Derive(snap).CanPrototype && !m.protoPending {
			m.protoPending = true
			return m, m.generatePrototype()
		}

	case key.Matches(msg, m.keys.Preview):
		store.SetPreview(true)

	case key.Matches(msg, m.keys.Open):
		cmd = m.openPreview()
		return m, cmd

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	default:
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

func (m Model) handlePreviewKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Preview):
		m.ctrl.Store().SetPreview(false)
	case key.Matches(msg, m.keys.Open):
		cmd = m.openPreview()
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		cmd = tea.Quit
	default:
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

// updateInputs forwards non-key messages such as cursor blinks to the
// focused input.
func (m Model) updateInputs(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusBrief:
		m.brief, cmd = m.brief.Update(msg)
	case focusChat:
		m.chat, cmd = m.chat.Update(msg)
	}
	return m, cmd
}

func (m *Model) setFocus(f focusArea) tea.Cmd {
	m.focus = f
	m.brief.Blur()
	m.chat.Blur()
	switch f {
	case focusBrief:
		return m.brief.Focus()
	case focusChat:
		return m.chat.Focus()
	}
	return nil
}

func (m Model) submit() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return actionDoneMsg{action: actionSubmit, err: ctrl.SubmitBrief(ctx)}
	}
}

func (m Model) generatePrototype() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return actionDoneMsg{action: actionPrototype, err: ctrl.GeneratePrototype(ctx)}
	}
}

func (m Model) sendChat(text string) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return actionDoneMsg{action: actionChat, err: ctrl.SendChat(ctx, text)}
	}
}

func (m *Model) openPreview() tea.Cmd {
	if m.opts.PreviewURL == "" || m.opts.Open == nil {
		m.notice = "Preview server is disabled"
		return nil
	}
	target, open := m.opts.PreviewURL+"/", m.opts.Open
	if !m.ctrl.Store().Snapshot().ProtoReady {
		target = m.opts.PreviewURL + "/transcript"
	}
	return func() tea.Msg {
		return actionDoneMsg{action: actionOpen, err: open(target)}
	}
}

func (m *Model) resize() {
	main := m.mainWidth()
	m.brief.SetWidth(max(20, main-4))
	m.chat.Width = max(10, m.width-main-8)
	m.detail.Width = max(20, main-4)
	m.detail.Height = max(5, m.height-24)
}

func (m Model) mainWidth() int {
	if m.ctrl.Store().Snapshot().ChatOpen && m.width >= 100 {
		return m.width * 3 / 5
	}
	return m.width
}

// syncDetail loads the viewport with the expanded section, keeping the scroll
// position while the same content stays selected.
func (m *Model) syncDetail() {
	if !m.ready {
		return
	}
	snap := m.ctrl.Store().Snapshot()
	k, content := detailFor(snap, dashboard.Derive(snap))

	if snap.ProtoView {
		m.detail.Height = max(5, m.height-6)
	} else {
		m.resize()
	}
	if content == m.detailContent && k == m.detailKey {
		return
	}
	m.detail.SetContent(content)
	if k != m.detailKey {
		m.detail.GotoTop()
	}
	m.detailKey = k
	m.detailContent = content
}
