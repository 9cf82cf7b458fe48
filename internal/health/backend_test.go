package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct {
	status string
	err    error
}

func (f fakePinger) Health(context.Context) (string, error) {
	return f.status, f.err
}

func TestBackendChecker(t *testing.T) {
	tests := []struct {
		name   string
		pinger fakePinger
		want   Status
	}{
		{"ok", fakePinger{status: "ok"}, StatusHealthy},
		{"unexpected status", fakePinger{status: "starting"}, StatusDegraded},
		{"unreachable", fakePinger{err: errors.New("connection refused")}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewBackendChecker(tt.pinger, "http://localhost:8000")
			result := c.Check(context.Background())

			assert.Equal(t, "backend", c.Name())
			assert.Equal(t, tt.want, result.Status)
			assert.Equal(t, "http://localhost:8000", result.Details["origin"])
		})
	}
}

func TestContractChecker(t *testing.T) {
	result := NewContractChecker().Check(context.Background())

	assert.Equal(t, StatusHealthy, result.Status)
	assert.Equal(t, 6, result.Details["operations"])
}
