package dashboard

import (
	"sync"
	"time"

	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

// Greeting opens every chat transcript.
const Greeting = "Hi! I'm your **AutoSDLC Assistant**. Submit a project brief and ask me anything about your project plan, architecture, or costs."

// ConnectionErrorReply is appended to the transcript when a chat call fails.
const ConnectionErrorReply = "Connection error."

// Section is a collapsible result section.
type Section string

// Result sections
const (
	SectionNone         Section = ""
	SectionRequirements Section = "requirements"
	SectionPlan         Section = "plan"
	SectionCode         Section = "code"
)

// Snapshot is a point-in-time copy of the dashboard state.
//
// Project is shared between snapshots; project states are only ever
// replaced, never modified.
type Snapshot struct {
	Brief   string
	Project *types.ProjectState
	Error   string

	Transcript  []types.ChatMessage
	ChatOpen    bool
	ChatPending int

	ActiveSection Section
	CodeTab       int

	Submitting   bool
	ProtoLoading bool
	ProtoReady   bool
	ProtoView    bool
	ProtoHTML    string
}

// ProjectID returns the current project id or "".
func (s Snapshot) ProjectID() string {
	if s.Project == nil {
		return ""
	}
	return s.Project.ID
}

// Store holds the dashboard state behind a mutex.
type Store struct {
	mu    sync.RWMutex
	state Snapshot
}

// NewStore creates a store whose transcript starts with the greeting.
func NewStore() *Store {
	return &Store{
		state: Snapshot{
			Transcript: []types.ChatMessage{{
				Role:    types.RoleAssistant,
				Content: Greeting,
				At:      time.Now(),
			}},
		},
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.state
	snap.Transcript = append([]types.ChatMessage(nil), s.state.Transcript...)
	return snap
}

// SetBrief replaces the brief text being edited.
func (s *Store) SetBrief(brief string) {
	s.update(func(st *Snapshot) { st.Brief = brief })
}

// ToggleChat opens or closes the chat panel.
func (s *Store) ToggleChat() {
	s.update(func(st *Snapshot) { st.ChatOpen = !st.ChatOpen })
}

// ToggleSection expands section, or collapses it when already expanded.
func (s *Store) ToggleSection(section Section) {
	s.update(func(st *Snapshot) {
		if st.ActiveSection == section {
			st.ActiveSection = SectionNone
			return
		}
		st.ActiveSection = section
	})
}

// SelectCodeTab selects the generated file shown in the code section.
func (s *Store) SelectCodeTab(i int) {
	if i < 0 {
		i = 0
	}
	s.update(func(st *Snapshot) { st.CodeTab = i })
}

// SetPreview enters or leaves full-screen prototype preview. Entering
// requires a ready prototype.
func (s *Store) SetPreview(on bool) {
	s.update(func(st *Snapshot) {
		st.ProtoView = on && st.ProtoReady
	})
}

// Restore loads an existing project as if it had just been submitted.
// A nil project clears the current one.
func (s *Store) Restore(p *types.ProjectState) {
	s.update(func(st *Snapshot) {
		st.Project = p
		st.Error = ""
		st.ProtoReady = false
		st.ProtoView = false
		st.ProtoHTML = ""
		st.CodeTab = 0
	})
}

// ClearError drops the transient error string.
func (s *Store) ClearError() {
	s.update(func(st *Snapshot) { st.Error = "" })
}

func (s *Store) update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// swap runs fn and returns its result under the write lock.
func swap[T any](s *Store, fn func(*Snapshot) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.state)
}
