package cmd

import (
	"github.com/spf13/cobra"

	"github.com/autosdlc/autosdlc/internal/dashboard"
	"github.com/autosdlc/autosdlc/internal/errors"
	"github.com/autosdlc/autosdlc/internal/tui"
)

// Replaced in tests.
var selectOption = tui.PromptForSelect

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [project-id]",
		Short: "Show the pipeline status of a project",
		Long: `Fetch a project once and print its pipeline phases, counts and agents.

Without a project id an interactive terminal offers a list to choose from.
Use --format json or yaml for the full project state.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeProjectIDs,
		RunE:              runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cc.Close()

	ctx := cmd.Context()
	var id string
	if len(args) == 1 {
		id = args[0]
	} else {
		id, err = chooseProject(cmd, cc)
		if err != nil {
			return err
		}
	}

	state, err := cc.Client.GetProject(ctx, id)
	if err != nil {
		return err
	}
	return cc.Print(stateOutput{State: state})
}

// chooseProject lets the user pick one of the backend's projects.
func chooseProject(cmd *cobra.Command, cc *CommandContext) (string, error) {
	if !shouldPrompt() {
		return "", errors.New(errors.ErrCodeNoProject, "project id required").
			WithSuggestion("List projects with 'autosdlc projects'")
	}

	projects, err := cc.Client.ListProjects(cmd.Context())
	if err != nil {
		return "", err
	}
	if len(projects) == 0 {
		return "", errors.New(errors.ErrCodeNoProject, "the backend has no projects").
			WithSuggestion("Submit one with 'autosdlc submit'")
	}

	options := make([]tui.Option, len(projects))
	for i := range projects {
		v := dashboard.Derive(dashboard.Snapshot{Project: &projects[i]})
		options[i] = tui.Option{
			Label: v.ProjectID + "  " + v.Status,
			Value: v.ProjectID,
		}
	}
	return selectOption("Select a project", options)
}
