package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autosdlc/autosdlc/internal/export"
	"github.com/autosdlc/autosdlc/internal/ux"
)

type exportOptions struct {
	dir    string
	git    bool
	verify bool
}

func newExportCmd() *cobra.Command {
	o := &exportOptions{}
	c := &cobra.Command{
		Use:   "export <project-id>",
		Short: "Write a project's generated code to disk",
		Long: `Write every generated file of a project into a directory, together with
a manifest of BLAKE3 digests and the full project state under .autosdlc/.

--git commits the export, initialising a repository when needed. --verify
checks an earlier export in --dir against its manifest instead of writing.`,
		Example: `  autosdlc export proj-1 --dir ./todo-app --git
  autosdlc export proj-1 --dir ./todo-app --verify`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProjectIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], o)
		},
	}
	c.Flags().StringVarP(&o.dir, "dir", "d", "", "target directory (default ./autosdlc-<project-id>)")
	c.Flags().BoolVar(&o.git, "git", false, "commit the exported files")
	c.Flags().BoolVar(&o.verify, "verify", false, "verify an existing export instead of writing")
	return c
}

func runExport(cmd *cobra.Command, id string, o *exportOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cc.Close()

	dir := o.dir
	if dir == "" {
		dir = ux.DefaultExportDir(id)
	}

	if o.verify {
		return verifyExport(cc, dir)
	}

	state, err := cc.Client.GetProject(cmd.Context(), id)
	if err != nil {
		return err
	}

	result, err := export.Export(cmd.Context(), state, export.Options{
		Dir:         dir,
		Git:         o.git,
		AuthorName:  cc.Config.Export.AuthorName,
		AuthorEmail: cc.Config.Export.AuthorEmail,
		Logger:      cc.Logger,
		Metrics:     cc.Metrics,
	})
	if err != nil {
		return err
	}
	return cc.Print(exportOutput{Result: *result})
}

func verifyExport(cc *CommandContext, dir string) error {
	manifest, err := export.ReadManifest(dir)
	if err != nil {
		return err
	}
	changed, err := export.Verify(dir, manifest)
	if err != nil {
		return err
	}
	if err := cc.Print(exportOutput{Result: export.Result{Dir: dir, Manifest: *manifest}, Changed: changed, verified: true}); err != nil {
		return err
	}
	if len(changed) > 0 {
		return fmt.Errorf("%d exported files changed since export", len(changed))
	}
	return nil
}
