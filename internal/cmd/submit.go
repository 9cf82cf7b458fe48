package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/autosdlc/autosdlc/internal/dashboard"
	"github.com/autosdlc/autosdlc/internal/errors"
	"github.com/autosdlc/autosdlc/internal/tui"
)

// Replaced in tests.
var (
	shouldPrompt = tui.ShouldPrompt
	promptBrief  = tui.PromptForBrief
)

type submitOptions struct {
	file        string
	name        string
	description string
	watch       bool
}

func newSubmitCmd() *cobra.Command {
	o := &submitOptions{}
	c := &cobra.Command{
		Use:   "submit [brief]",
		Short: "Submit a project brief",
		Long: `Submit a natural-language project brief and print the created project.

The brief is read from the argument, from --file ("-" for stdin), from an
interactive prompt, or from piped stdin, in that order. A blank brief is
rejected without contacting the backend.`,
		Example: `  autosdlc submit "Build a todo app"
  autosdlc submit --file brief.md --watch
  cat brief.md | autosdlc submit --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, args, o)
		},
	}
	c.Flags().StringVar(&o.file, "file", "", `read the brief from a file, "-" for stdin`)
	c.Flags().StringVar(&o.name, "name", "", "project name, overrides brief.name")
	c.Flags().StringVar(&o.description, "description", "", "project description, overrides brief.description")
	c.Flags().BoolVarP(&o.watch, "watch", "w", false, "follow the pipeline until code is generated")
	return c
}

func runSubmit(cmd *cobra.Command, args []string, o *submitOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cc.Close()

	brief, err := readBrief(cc, args, o.file)
	if err != nil {
		return err
	}

	if o.name != "" {
		cc.Config.Brief.Name = o.name
	}
	if o.description != "" {
		cc.Config.Brief.Description = o.description
	}

	store := dashboard.NewStore()
	store.SetBrief(brief)
	ctx := cmd.Context()
	if err := cc.NewController(store).SubmitBrief(ctx); err != nil {
		return err
	}

	state := store.Snapshot().Project
	if !o.watch {
		return cc.Print(stateOutput{State: state})
	}
	return watchProject(ctx, cc, state, watchOptions{untilComplete: true})
}

func readBrief(cc *CommandContext, args []string, file string) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case file == "-":
		return readAll(cc.In, "stdin")
	case file != "":
		data, err := os.ReadFile(file)
		if os.IsNotExist(err) {
			return "", errors.NewFileNotFoundError(file)
		}
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("failed to read %s", file), err)
		}
		return string(data), nil
	case shouldPrompt():
		return promptBrief()
	default:
		return readAll(cc.In, "stdin")
	}
}

func readAll(r io.Reader, name string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read "+name, err)
	}
	return string(data), nil
}
