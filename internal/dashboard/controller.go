package dashboard

import (
	"context"
	"strings"
	"time"

	"github.com/autosdlc/autosdlc/internal/errors"
	"github.com/autosdlc/autosdlc/internal/log"
	"github.com/autosdlc/autosdlc/internal/metrics"
	"github.com/autosdlc/autosdlc/pkg/autosdlc/client"
	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

// User-facing error strings shown next to the control that failed.
const (
	MsgSubmitFailed    = "Submit failed"
	MsgPrototypeFailed = "Failed to generate prototype"
	MsgConnectionError = "Connection error"
)

// Default brief metadata sent with every submission.
const (
	DefaultProjectName        = "Project"
	DefaultProjectDescription = "Auto"
)

// API is the subset of the backend client the controller drives.
type API interface {
	CreateProject(ctx context.Context, brief types.ProjectBrief) (*types.ProjectState, error)
	GeneratePrototype(ctx context.Context, id string) (string, error)
	Chat(ctx context.Context, message, projectID string) (string, error)
}

// Tracker is told which project id to keep refreshing.
type Tracker interface {
	Track(id string)
}

// Options configures a Controller.
type Options struct {
	Logger  *log.Logger
	Metrics *metrics.Metrics
	Tracker Tracker

	// Name and Description override the brief metadata.
	Name        string
	Description string
}

// Controller runs dashboard actions against the backend and records their
// outcome in the store.
type Controller struct {
	api         API
	store       *Store
	tracker     Tracker
	logger      *log.Logger
	metrics     *metrics.Metrics
	name        string
	description string
	now         func() time.Time
}

// NewController creates a controller.
func NewController(api API, store *Store, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}
	name := opts.Name
	if name == "" {
		name = DefaultProjectName
	}
	description := opts.Description
	if description == "" {
		description = DefaultProjectDescription
	}

	return &Controller{
		api:         api,
		store:       store,
		tracker:     opts.Tracker,
		logger:      logger.Component("dashboard"),
		metrics:     opts.Metrics,
		name:        name,
		description: description,
		now:         time.Now,
	}
}

// Store returns the store the controller writes to.
func (c *Controller) Store() *Store {
	return c.store
}

// SetTracker replaces the tracker notified after a successful submission.
func (c *Controller) SetTracker(t Tracker) {
	c.tracker = t
}

// SubmitBrief creates a project from the current brief.
//
// A blank brief makes no call and changes nothing. While a submission is
// outstanding further submissions are rejected. On failure the previous
// project is kept and the error string is set.
func (c *Controller) SubmitBrief(ctx context.Context) error {
	var brief string
	err := swap(c.store, func(st *Snapshot) error {
		if strings.TrimSpace(st.Brief) == "" {
			return errors.NewEmptyBriefError()
		}
		if st.Submitting {
			return errors.New(errors.ErrCodeBusy, "a submission is already in progress")
		}
		st.Submitting = true
		brief = st.Brief
		return nil
	})
	if err != nil {
		c.metrics.RecordAction("submit", "rejected")
		return err
	}

	state, err := c.api.CreateProject(ctx, types.ProjectBrief{
		Name:         c.name,
		Description:  c.description,
		BriefContent: brief,
	})
	if err != nil {
		c.store.update(func(st *Snapshot) {
			st.Submitting = false
			st.Error = userMessage(err, MsgSubmitFailed)
		})
		c.metrics.RecordAction("submit", "failed")
		c.logger.WithError(err).WarnContext(ctx, "submit failed")
		return err
	}

	c.store.update(func(st *Snapshot) {
		st.Submitting = false
		st.Project = state
		st.Error = ""
		st.ProtoReady = false
		st.ProtoView = false
		st.ProtoHTML = ""
		st.CodeTab = 0
	})
	c.metrics.RecordAction("submit", "ok")
	c.logger.WithProject(state.ID).InfoContext(ctx, "project created")

	if c.tracker != nil {
		c.tracker.Track(state.ID)
	}
	return nil
}

// GeneratePrototype requests a prototype for the current project.
//
// It requires generated code files. Concurrent calls are not guarded here;
// callers disable the trigger while ProtoLoading is set.
func (c *Controller) GeneratePrototype(ctx context.Context) error {
	snap := c.store.Snapshot()
	if snap.Project == nil {
		return errors.New(errors.ErrCodeNoProject, "no project has been submitted")
	}
	id := snap.Project.ID
	if len(snap.Project.CodeFiles()) == 0 {
		c.metrics.RecordAction("prototype", "rejected")
		return errors.NewPrototypeUnavailableError(id)
	}

	c.store.update(func(st *Snapshot) { st.ProtoLoading = true })

	html, err := c.api.GeneratePrototype(ctx, id)
	if err != nil {
		c.store.update(func(st *Snapshot) {
			st.ProtoLoading = false
			st.Error = userMessage(err, MsgPrototypeFailed)
		})
		c.metrics.RecordAction("prototype", "failed")
		c.logger.WithProject(id).WithError(err).WarnContext(ctx, "prototype generation failed")
		return err
	}

	c.store.update(func(st *Snapshot) {
		st.ProtoLoading = false
		st.ProtoHTML = html
		st.ProtoReady = true
		st.ProtoView = true
		st.Error = ""
	})
	c.metrics.RecordAction("prototype", "ok")
	c.logger.WithProject(id).InfoContext(ctx, "prototype generated", "bytes", len(html))
	return nil
}

// SendChat appends text to the transcript, asks the backend and appends the
// reply, or ConnectionErrorReply when the call fails. Blank text makes no
// call and appends nothing.
func (c *Controller) SendChat(ctx context.Context, text string) error {
	msg := strings.TrimSpace(text)
	if msg == "" {
		return errors.NewEmptyMessageError()
	}

	projectID := swap(c.store, func(st *Snapshot) string {
		st.Transcript = append(st.Transcript, types.ChatMessage{Role: types.RoleUser, Content: msg, At: c.now()})
		st.ChatPending++
		return st.ProjectID()
	})

	reply, err := c.api.Chat(ctx, msg, projectID)
	if err != nil {
		reply = ConnectionErrorReply
		c.metrics.RecordAction("chat", "failed")
		c.logger.WithError(err).WarnContext(ctx, "chat failed")
	} else {
		c.metrics.RecordAction("chat", "ok")
	}

	c.store.update(func(st *Snapshot) {
		st.Transcript = append(st.Transcript, types.ChatMessage{Role: types.RoleAssistant, Content: reply, At: c.now()})
		st.ChatPending--
	})
	return err
}

// ApplyPoll replaces the current project with a refreshed state fetched for
// id. It reports false and changes nothing when id is no longer current.
func (c *Controller) ApplyPoll(id string, state *types.ProjectState) bool {
	if state == nil {
		return false
	}
	return swap(c.store, func(st *Snapshot) bool {
		if st.ProjectID() != id {
			return false
		}
		st.Project = state
		return true
	})
}

func userMessage(err error, fallback string) string {
	if client.IsTransport(err) {
		return MsgConnectionError
	}
	return fallback
}
