package preview

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/autosdlc/autosdlc/internal/dashboard"
	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Markdown renders assistant replies and user messages to sanitized HTML.
type Markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewMarkdown creates a renderer with GitHub flavored markdown enabled.
func NewMarkdown() *Markdown {
	return &Markdown{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
	}
}

// Render converts src to HTML safe for embedding in a page.
func (m *Markdown) Render(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	// #nosec G203 -- output of the sanitizer
	return template.HTML(m.policy.SanitizeBytes(buf.Bytes())), nil
}

type renderedMessage struct {
	Role types.ChatRole
	HTML template.HTML
}

type transcriptPage struct {
	ProjectID string
	Refresh   int
	Pending   bool
	Messages  []renderedMessage
}

// RenderTranscript writes the chat transcript of s as an HTML page that
// reloads itself every refresh seconds.
func (m *Markdown) RenderTranscript(w io.Writer, s dashboard.Snapshot, refresh int) error {
	page := transcriptPage{
		ProjectID: s.ProjectID(),
		Refresh:   refresh,
		Pending:   s.ChatPending > 0,
		Messages:  make([]renderedMessage, 0, len(s.Transcript)),
	}
	for _, msg := range s.Transcript {
		html, err := m.Render(msg.Content)
		if err != nil {
			return err
		}
		page.Messages = append(page.Messages, renderedMessage{Role: msg.Role, HTML: html})
	}
	return pageTemplates.ExecuteTemplate(w, "transcript", page)
}
