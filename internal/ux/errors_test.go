package ux

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autosdlc/autosdlc/internal/errors"
)

func TestEnhanceError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantSuggestion string
	}{
		{"nil", nil, ""},
		{"connection refused", stderrors.New("dial tcp 127.0.0.1:8000: connect: connection refused"), "Start the AutoSDLC backend"},
		{"not found", errors.NewStatusError("get_project", 404), "autosdlc projects"},
		{"server error", errors.NewStatusError("chat", 502), "check its logs"},
		{"missing config", stderrors.New("open /tmp/config.yaml: no such file or directory"), "--config"},
		{"missing file", stderrors.New("open brief.txt: no such file or directory"), "file path is correct"},
		{"port in use", stderrors.New("listen tcp 127.0.0.1:7878: bind: address already in use"), "--addr"},
		{"unknown", stderrors.New("something odd"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnhanceError(tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}

			var ews *ErrorWithSuggestion
			if tt.wantSuggestion == "" {
				assert.False(t, stderrors.As(got, &ews))
				assert.Equal(t, tt.err, got)
				return
			}
			if assert.True(t, stderrors.As(got, &ews)) {
				assert.Contains(t, ews.Suggestion, tt.wantSuggestion)
				assert.ErrorIs(t, got, tt.err)
			}
		})
	}
}

func TestEnhanceErrorKeepsCodedSuggestions(t *testing.T) {
	err := errors.NewTransportError("chat", stderrors.New("connection refused"))

	assert.Same(t, err, EnhanceError(err))
}

func TestErrorWithSuggestionMessage(t *testing.T) {
	err := NewErrorWithSuggestion(stderrors.New("the dashboard needs an interactive terminal"), "Use 'autosdlc submit'")
	assert.EqualError(t, err, "the dashboard needs an interactive terminal\n\nSuggestion: Use 'autosdlc submit'")
	assert.NoError(t, NewErrorWithSuggestion(nil, "ignored"))
}
