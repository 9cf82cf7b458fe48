package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "projects",
		Aliases: []string{"ls"},
		Short:   "List the projects known to the backend",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()

			projects, err := cc.Client.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			return cc.Print(projectList(projects))
		},
	}
}

// completeProjectIDs offers the backend's project IDs for the first
// positional argument. Failures yield no suggestions.
func completeProjectIDs(cmd *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if cmd.Context() == nil {
		cmd.SetContext(context.Background())
	}
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer cc.Close()

	projects, err := cc.Client.ListProjects(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ids := make([]cobra.Completion, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, cobra.CompletionWithDesc(p.ID, p.Status))
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
