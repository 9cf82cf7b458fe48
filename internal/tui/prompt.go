package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

// ciVars disable prompts when any of them is set.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS", "CIRCLECI", "BUILDKITE"}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// ShouldPrompt reports whether commands may ask questions: stdin is a
// terminal and no CI environment is detected.
func ShouldPrompt() bool {
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return false
		}
	}
	return IsInteractive()
}

// ask runs fields as a single form. huh.ErrUserAborted is kept in the chain
// so callers can treat ctrl+c as "stop".
func ask(fields ...huh.Field) error {
	form := huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeCharm())
	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt: %w", err)
	}
	return nil
}

// Prompt configures PromptForString.
type Prompt struct {
	Message     string
	Default     string
	Placeholder string
	Required    bool
}

// PromptForString asks for one line of text.
func PromptForString(p Prompt) (string, error) {
	value := p.Default
	input := huh.NewInput().Title(p.Message).Placeholder(p.Placeholder).Value(&value)
	if p.Required {
		input = input.Validate(notBlank)
	}
	if err := ask(input); err != nil {
		return "", err
	}
	return value, nil
}

// PromptForBrief asks for a multi-line project brief. A blank brief is
// rejected in the form.
func PromptForBrief() (string, error) {
	var brief string
	err := ask(huh.NewText().
		Title("Project brief").
		Description("Describe the software you want built.").
		Placeholder("Build a todo app with user accounts and due-date reminders...").
		CharLimit(0).
		Lines(8).
		Validate(notBlank).
		Value(&brief))
	return brief, err
}

// PromptForConfirmation asks a yes/no question.
func PromptForConfirmation(message string, defaultValue bool) (bool, error) {
	ok := defaultValue
	if err := ask(huh.NewConfirm().Title(message).Value(&ok)); err != nil {
		return false, err
	}
	return ok, nil
}

// Option is one choice of PromptForSelect.
type Option struct {
	Label string
	Value string
}

// PromptForSelect asks the user to pick one of options and returns its Value.
func PromptForSelect(message string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("nothing to choose from")
	}

	choices := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		choices = append(choices, huh.NewOption(o.Label, o.Value))
	}

	selected := options[0].Value
	err := ask(huh.NewSelect[string]().Title(message).Options(choices...).Value(&selected))
	return selected, err
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("must not be empty")
	}
	return nil
}
