package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autosdlc/autosdlc/internal/backendtest"
	"github.com/autosdlc/autosdlc/internal/dashboard"
	"github.com/autosdlc/autosdlc/internal/log"
	"github.com/autosdlc/autosdlc/pkg/autosdlc/client"
)

func newTestModel(t *testing.T, opts Options) (Model, *backendtest.Backend, *dashboard.Controller) {
	t.Helper()

	backend := backendtest.New(t)
	ctrl := dashboard.NewController(client.New(backend.URL), dashboard.NewStore(), dashboard.Options{
		Logger: log.Discard(),
	})
	m := NewModel(context.Background(), ctrl, opts)
	m, _ = update(m, tea.WindowSizeMsg{Width: 140, Height: 48})
	return m, backend, ctrl
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes an action command and feeds its result back to the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	_, ok := msg.(actionDoneMsg)
	require.True(t, ok, "expected actionDoneMsg, got %T", msg)
	m, _ = update(m, msg)
	return m
}

func TestViewBeforeWindowSize(t *testing.T) {
	ctrl := dashboard.NewController(client.New("http://127.0.0.1:1"), dashboard.NewStore(), dashboard.Options{Logger: log.Discard()})
	m := NewModel(context.Background(), ctrl, Options{})

	assert.Equal(t, "Initializing...", m.View())
}

func TestInitialView(t *testing.T) {
	m, _, _ := newTestModel(t, Options{})

	view := m.View()
	for _, want := range []string{"AutoSDLC", "Submit a brief", "Requirements", "Planning", "Roles", "Code Gen", "Prototype", "$0"} {
		assert.Contains(t, view, want)
	}
}

func TestSubmitBriefFlow(t *testing.T) {
	m, backend, ctrl := newTestModel(t, Options{})

	m, _ = update(m, runes("Build a todo app"))
	assert.Equal(t, "Build a todo app", ctrl.Store().Snapshot().Brief)

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = run(t, m, cmd)

	snap := ctrl.Store().Snapshot()
	require.NotNil(t, snap.Project)
	assert.Equal(t, "proj-1", snap.Project.ID)
	assert.Equal(t, 1, backend.Count("POST", "/projects"))

	v := dashboard.Derive(snap)
	assert.Equal(t, dashboard.StatusWorking, v.Phases[0].Status)
	assert.Contains(t, m.View(), "Project proj-1")
}

func TestSubmitFailureShowsError(t *testing.T) {
	m, backend, _ := newTestModel(t, Options{})
	backend.Fail(backendtest.RouteCreate, 500)

	m, _ = update(m, runes("Build a todo app"))
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = run(t, m, cmd)

	assert.Contains(t, m.View(), dashboard.MsgSubmitFailed)
}

func TestSectionKeys(t *testing.T) {
	m, backend, ctrl := newTestModel(t, Options{})
	m, _ = update(m, runes("Build a todo app"))
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = run(t, m, cmd)

	backend.Advance("proj-1", backendtest.StageArtifacts)
	state, err := client.New(backend.URL).GetProject(context.Background(), "proj-1")
	require.NoError(t, err)
	require.True(t, ctrl.ApplyPoll("proj-1", state))
	m, _ = update(m, StateMsg{ProjectID: "proj-1"})

	// Leave the brief editor, then expand requirements.
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = update(m, runes("1"))
	assert.Equal(t, dashboard.SectionRequirements, ctrl.Store().Snapshot().ActiveSection)
	assert.Equal(t, "requirements", m.detailKey)

	m, _ = update(m, runes("3"))
	assert.Equal(t, dashboard.SectionCode, ctrl.Store().Snapshot().ActiveSection)
	first := m.detailKey

	m, _ = update(m, runes("l"))
	assert.Equal(t, 1, ctrl.Store().Snapshot().CodeTab)
	assert.NotEqual(t, first, m.detailKey)

	m, _ = update(m, runes("l"))
	assert.Equal(t, 0, ctrl.Store().Snapshot().CodeTab, "wraps around")

	m, _ = update(m, runes("3"))
	assert.Equal(t, dashboard.SectionNone, ctrl.Store().Snapshot().ActiveSection)
}

func TestPrototypeKey(t *testing.T) {
	t.Run("ignored without code", func(t *testing.T) {
		m, _, _ := newTestModel(t, Options{})
		m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})

		_, cmd := update(m, runes("p"))
		assert.Nil(t, cmd)
	})

	t.Run("generates and enters preview", func(t *testing.T) {
		m, backend, ctrl := newTestModel(t, Options{})
		m, _ = update(m, runes("Build a todo app"))
		m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlS})
		m = run(t, m, cmd)

		backend.Advance("proj-1", backendtest.StageArtifacts)
		state, err := client.New(backend.URL).GetProject(context.Background(), "proj-1")
		require.NoError(t, err)
		ctrl.ApplyPoll("proj-1", state)

		m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})
		m, cmd = update(m, runes("p"))
		require.NotNil(t, cmd)

		_, again := update(m, runes("p"))
		assert.Nil(t, again, "second press while pending")

		m = run(t, m, cmd)
		snap := ctrl.Store().Snapshot()
		assert.True(t, snap.ProtoReady)
		assert.True(t, snap.ProtoView)
		assert.Contains(t, m.View(), "Prototype preview")

		m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})
		assert.False(t, ctrl.Store().Snapshot().ProtoView)
		assert.Contains(t, m.View(), "Prototype ready")
	})
}

func TestChatFlow(t *testing.T) {
	m, _, ctrl := newTestModel(t, Options{})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})

	m, _ = update(m, runes("c"))
	require.True(t, ctrl.Store().Snapshot().ChatOpen)
	assert.Contains(t, m.View(), "AutoSDLC Assistant")

	_, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "blank message is not sent")

	m, _ = update(m, runes("what does it cost?"))
	m, cmd = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, m.chat.Value())
	m = run(t, m, cmd)

	transcript := ctrl.Store().Snapshot().Transcript
	require.Len(t, transcript, 3)
	assert.Equal(t, "echo: what does it cost?", transcript[2].Content)
	assert.Contains(t, m.View(), "echo: what does it cost?")
}

func TestOpenKey(t *testing.T) {
	t.Run("disabled without preview server", func(t *testing.T) {
		m, _, _ := newTestModel(t, Options{})
		m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})

		m, cmd := update(m, runes("o"))
		assert.Nil(t, cmd)
		assert.Contains(t, m.View(), "Preview server is disabled")
	})

	t.Run("opens transcript before a prototype exists", func(t *testing.T) {
		var opened string
		m, _, _ := newTestModel(t, Options{
			PreviewURL: "http://127.0.0.1:7878",
			Open: func(url string) error {
				opened = url
				return errors.New("no browser")
			},
		})
		m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})

		m, cmd := update(m, runes("o"))
		m = run(t, m, cmd)

		assert.Equal(t, "http://127.0.0.1:7878/transcript", opened)
		assert.Contains(t, m.View(), "no browser")
	})
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t, Options{})

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.True(t, m.quitting)
}
