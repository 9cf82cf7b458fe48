package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

func TestDigest(t *testing.T) {
	empty, err := Digest(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	a := &types.ProjectState{ID: "p1", Status: "analyzing", AgentStatuses: map[string]types.AgentStatus{
		"b": {Status: types.AgentWorking},
		"a": {Status: types.AgentIdle},
	}}
	b := &types.ProjectState{ID: "p1", Status: "analyzing", AgentStatuses: map[string]types.AgentStatus{
		"a": {Status: types.AgentIdle},
		"b": {Status: types.AgentWorking},
	}}

	da, err := Digest(a)
	require.NoError(t, err)
	db, err := Digest(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
	assert.Len(t, da, 64)

	b.Status = "planning"
	db, err = Digest(b)
	require.NoError(t, err)
	assert.NotEqual(t, da, db)
}
