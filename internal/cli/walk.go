package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type walkOpts struct {
	target   targetFlags
	maxDepth int
	quiet    bool
}

// walkCommand creates the walk command, which prints the objects reachable
// from the root.
func (c *CLI) walkCommand() *cobra.Command {
	var opts walkOpts

	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Walk the pointers of a struct and dump every object found",
		Long: `Walk starts at the root struct, follows every valid pointer member and
prints each discovered object with its members. A pointer into an object
that was already visited is shown as a link to the member it points at.

The root comes from the image highlight unless --root or --register is set.`,
		Example: `  objview walk -i core.yaml
  objview walk -i core.yaml --register rdi --type "struct list"
  objview walk -i core.yaml -r 0x1040 --max-depth 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runWalk(cmd, opts)
		},
	}

	opts.target.bind(cmd)
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", -1, "walk depth limit, 0 for unlimited (default from config)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "print only the summary")

	return cmd
}

func (c *CLI) runWalk(cmd *cobra.Command, opts walkOpts) error {
	out := cmd.OutOrStdout()

	s, img, err := c.openSession(opts.target.image)
	if err != nil {
		return err
	}
	if opts.maxDepth >= 0 {
		s.Config.MaxDepth = opts.maxDepth
	}

	root, err := resolveRoot(img, opts.target, nil)
	if err != nil {
		return err
	}

	res, err := c.walk(cmd.Context(), s, root)
	if err != nil {
		if res != nil && len(res.Objects) > 0 {
			printInfo(out, "%d objects were created before the walk stopped", len(res.Objects))
		}
		return err
	}

	if !opts.quiet {
		for _, seg := range img.Segments() {
			printKeyValue(out, seg.Name, fmt.Sprintf("%#x..%#x", seg.Start, seg.Start+uint64(seg.Size)))
		}
		fmt.Fprintln(out)
		if err := res.Dump(out); err != nil {
			return err
		}
	}
	printSuccess(out, "%s", StyleTitle.Render(res.Root.Name()))
	printStats(out, s.Graph.Len(), len(s.Graph.Connections()), 0)
	printNextStep(out, "Edit the graph", fmt.Sprintf("%s view -i %s -r %#x -t %q", appName, opts.target.image, root.Address, root.Type))
	return nil
}
