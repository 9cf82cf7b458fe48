package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldPromptDisabledInCI(t *testing.T) {
	for _, v := range ciVars {
		t.Run(v, func(t *testing.T) {
			t.Setenv(v, "true")
			assert.False(t, ShouldPrompt())
		})
	}
}

func TestPromptForSelectWithoutOptions(t *testing.T) {
	_, err := PromptForSelect("Choose a project", nil)
	assert.Error(t, err)
}

func TestNotBlank(t *testing.T) {
	assert.Error(t, notBlank(" \n\t"))
	assert.NoError(t, notBlank("Build a todo app"))
}
