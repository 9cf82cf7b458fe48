package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/autosdlc/autosdlc/internal/dashboard"
	"github.com/autosdlc/autosdlc/internal/errors"
)

type prototypeOptions struct {
	out   string
	open  bool
	serve bool
	addr  string
}

func newPrototypeCmd() *cobra.Command {
	o := &prototypeOptions{}
	c := &cobra.Command{
		Use:   "prototype <project-id>",
		Short: "Generate an HTML prototype for a project",
		Long: `Ask the backend to generate a single-page HTML prototype from the
project's generated code.

The HTML is written to stdout unless --out is given. --open shows it in the
default browser; --serve keeps serving it through the local preview server
until interrupted.`,
		Example: `  autosdlc prototype proj-1 --out prototype.html
  autosdlc prototype proj-1 --serve --open`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProjectIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrototype(cmd, args[0], o)
		},
	}
	c.Flags().StringVarP(&o.out, "out", "o", "", "write the HTML to this file")
	c.Flags().BoolVar(&o.open, "open", false, "open the prototype in a browser")
	c.Flags().BoolVar(&o.serve, "serve", false, "serve the prototype until interrupted")
	c.Flags().StringVar(&o.addr, "addr", "", "preview server address, overrides preview.addr")
	return c
}

func runPrototype(cmd *cobra.Command, id string, o *prototypeOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cc.Close()

	ctx := cmd.Context()
	state, err := cc.Client.GetProject(ctx, id)
	if err != nil {
		return err
	}

	store := dashboard.NewStore()
	store.Restore(state)
	if err := cc.NewController(store).GeneratePrototype(ctx); err != nil {
		return err
	}
	html := store.Snapshot().ProtoHTML

	if o.out != "" {
		if err := writeHTML(o.out, html); err != nil {
			return err
		}
		fmt.Fprintf(cc.Err, "Prototype written to %s\n", o.out)
	}

	if o.serve {
		addr := o.addr
		if addr == "" {
			addr = cc.Config.Preview.Addr
		}
		url, stop, err := startPreview(cc, store, addr)
		if err != nil {
			return err
		}
		defer stop()

		fmt.Fprintf(cc.Err, "Serving prototype at %s/ (Ctrl+C to stop)\n", url)
		if o.open {
			if err := openBrowser(url + "/"); err != nil {
				return err
			}
		}
		<-ctx.Done()
		return nil
	}

	if o.open {
		path := o.out
		if path == "" {
			f, err := os.CreateTemp("", "autosdlc-prototype-*.html")
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to create a temporary file", err)
			}
			path = f.Name()
			_, werr := io.WriteString(f, html)
			if cerr := f.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil {
				return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write "+path, werr)
			}
		}
		return openBrowser(path)
	}

	if o.out == "" {
		_, err = io.WriteString(cc.Out, html)
		return err
	}
	return nil
}

func writeHTML(path, html string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeDirectoryFailed, "failed to create "+dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write "+path, err)
	}
	return nil
}
