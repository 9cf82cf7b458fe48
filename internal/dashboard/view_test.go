package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

func TestDeriveWithoutProject(t *testing.T) {
	v := Derive(NewStore().Snapshot())

	assert.False(t, v.HasProject)
	assert.Zero(t, v.RequirementCount)
	assert.Zero(t, v.TaskCount)
	assert.Zero(t, v.CodeFileCount)
	assert.Equal(t, "$0", v.Cost)
	assert.False(t, v.CanPrototype)
	assert.True(t, v.CanSubmit)
	for _, ph := range v.Phases {
		assert.Equal(t, StatusIdle, ph.Status, ph.Label)
	}
}

func TestDeriveCountsMatchCollections(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := genProject(t)
		v := Derive(Snapshot{Project: p})

		if v.RequirementCount != len(p.Requirements()) {
			t.Fatalf("requirements: %d != %d", v.RequirementCount, len(p.Requirements()))
		}
		if v.TaskCount != len(p.Tasks()) {
			t.Fatalf("tasks: %d != %d", v.TaskCount, len(p.Tasks()))
		}
		if v.CodeFileCount != len(p.CodeFiles()) {
			t.Fatalf("files: %d != %d", v.CodeFileCount, len(p.CodeFiles()))
		}
		if v.CanPrototype != (v.CodeFileCount > 0) {
			t.Fatalf("can prototype %v with %d files", v.CanPrototype, v.CodeFileCount)
		}
	})
}

func TestDeriveCodeTab(t *testing.T) {
	p := &types.ProjectState{
		ID: "p1",
		Artifacts: &types.Artifacts{CodeSnippets: map[string]string{
			"b.py": "print('b')",
			"a.py": "print('a')",
		}},
	}

	v := Derive(Snapshot{Project: p, CodeTab: 1})
	assert.Equal(t, []string{"a.py", "b.py"}, v.CodeFiles)
	assert.Equal(t, "b.py", v.ActiveFile)
	assert.Equal(t, "print('b')", v.ActiveSource)

	v = Derive(Snapshot{Project: p, CodeTab: 7})
	assert.Equal(t, 0, v.CodeTab)
	assert.Equal(t, "a.py", v.ActiveFile)
}

func TestDeriveBusyFlags(t *testing.T) {
	p := &types.ProjectState{
		ID:        "p1",
		Artifacts: &types.Artifacts{CodeSnippets: map[string]string{"a.py": ""}},
	}

	v := Derive(Snapshot{Project: p, Submitting: true, ProtoLoading: true})
	assert.False(t, v.CanSubmit)
	assert.False(t, v.CanPrototype)
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0", FormatCost(0))
	assert.Equal(t, "$4000", FormatCost(4000))
	assert.Equal(t, "$1234.5", FormatCost(1234.5))
}
