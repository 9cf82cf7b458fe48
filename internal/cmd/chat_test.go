package cmd

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autosdlc/autosdlc/internal/backendtest"
	"github.com/autosdlc/autosdlc/internal/dashboard"
	"github.com/autosdlc/autosdlc/internal/errors"
	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

func TestChatMessage(t *testing.T) {
	b, origin := backend(t)
	putProject(b, "proj-1", backendtest.StagePlan)

	var got types.ChatRequest
	b.SetChatReply(func(req types.ChatRequest) string {
		got = req
		return "About $4000."
	})

	r := run(t, "", "chat", "what does it cost?", "--project", "proj-1", "--no-color", origin)
	require.NoError(t, r.err)
	assert.Equal(t, "Assistant: About $4000.\n", r.out)
	assert.Equal(t, types.ChatRequest{Message: "what does it cost?", ProjectID: "proj-1"}, got)
}

func TestChatWithoutProject(t *testing.T) {
	_, origin := backend(t)

	r := run(t, "", "chat", "hello", "--format", "json", origin)
	require.NoError(t, r.err)

	var reply chatReply
	require.NoError(t, json.Unmarshal([]byte(r.out), &reply))
	assert.Equal(t, chatReply{Message: "hello", Reply: "echo: hello"}, reply)
}

func TestChatFailurePrintsConnectionError(t *testing.T) {
	b, origin := backend(t)
	b.Fail(backendtest.RouteChat, http.StatusInternalServerError)

	r := run(t, "", "chat", "hello", "--no-color", origin)
	require.Error(t, r.err)
	assert.Equal(t, "Assistant: "+dashboard.ConnectionErrorReply+"\n", r.out)
}

func TestChatBlankMessage(t *testing.T) {
	b, origin := backend(t)

	r := run(t, "", "chat", "   ", origin)
	require.Error(t, r.err)
	assert.Equal(t, errors.ErrCodeEmptyMessage, errors.Code(r.err))
	assert.Empty(t, r.out)
	assert.Zero(t, b.Count(http.MethodPost, "/chat"))
}

func TestChatLoopFromStdin(t *testing.T) {
	b, origin := backend(t)
	b.Fail(backendtest.RouteChat, 0)

	r := run(t, "first\n\nsecond\nquit\nnever sent\n", "chat", "--no-color", origin)
	require.NoError(t, r.err)
	assert.Equal(t, "Assistant: echo: first\nAssistant: echo: second\n", r.out)
	assert.Equal(t, 2, b.Count(http.MethodPost, "/chat"))
}

func TestChatLoopKeepsGoingAfterFailure(t *testing.T) {
	b, origin := backend(t)
	b.Fail(backendtest.RouteChat, http.StatusBadGateway)

	r := run(t, "one\ntwo\n", "chat", "--no-color", origin)
	require.NoError(t, r.err)
	assert.Equal(t, 2, strings.Count(r.out, dashboard.ConnectionErrorReply))
}

func TestChatLoopPrompt(t *testing.T) {
	b, origin := backend(t)

	lines := []string{"hi", "exit"}
	prev := promptLine
	shouldPrompt = func() bool { return true }
	promptLine = func() (string, error) {
		if len(lines) == 0 {
			return "", huh.ErrUserAborted
		}
		line := lines[0]
		lines = lines[1:]
		return line, nil
	}
	t.Cleanup(func() { promptLine = prev })

	r := run(t, "", "chat", "--no-color", origin)
	require.NoError(t, r.err)
	assert.Equal(t, "Assistant: echo: hi\n", r.out)
	assert.Equal(t, 1, b.Count(http.MethodPost, "/chat"))
}
