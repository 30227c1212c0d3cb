package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/objview/pkg/errors"
	"github.com/matzehuels/objview/pkg/export"
)

type exportOpts struct {
	target   targetFlags
	format   string
	output   string
	detailed bool
}

// exportCommand creates the export command, which walks the root and writes
// the resulting graph.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Walk a struct and write the graph as JSON, DOT or SVG",
		Example: `  objview export -i core.yaml -f dot | dot -Tpng > graph.png
  objview export -i core.yaml -f svg -o graph.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runExport(cmd, opts)
		},
	}

	opts.target.bind(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(export.FormatJSON), "output format: json, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "add positions and data types to DOT and SVG labels")

	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, opts exportOpts) error {
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	s, img, err := c.openSession(opts.target.image)
	if err != nil {
		return err
	}
	root, err := resolveRoot(img, opts.target, nil)
	if err != nil {
		return err
	}
	if _, err := c.walk(cmd.Context(), s, root); err != nil {
		return err
	}

	var (
		w io.Writer = cmd.OutOrStdout()
		f *os.File
	)
	if opts.output != "" {
		if f, err = os.Create(opts.output); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", opts.output)
		}
		w = f
	}

	var spin *Spinner
	if format == export.FormatSVG {
		spin = newSpinner(cmd.Context(), cmd.ErrOrStderr(), "Rendering SVG...")
		spin.Start()
	}
	err = export.Write(cmd.Context(), w, s.Graph, format, export.Options{Session: s.ID, Detailed: opts.detailed})
	if spin != nil {
		spin.Stop()
	}
	if f != nil {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(errors.ErrCodeInternal, cerr, "close %s", opts.output)
		}
	}
	if err != nil {
		return err
	}

	if opts.output != "" {
		printSuccess(cmd.ErrOrStderr(), "Exported %s", format)
		printFile(cmd.ErrOrStderr(), opts.output)
	}
	return nil
}
