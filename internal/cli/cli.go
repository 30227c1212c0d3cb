// Package cli implements the objview command-line interface.
package cli

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/objview/pkg/buildinfo"
	"github.com/matzehuels/objview/pkg/editor"
	"github.com/matzehuels/objview/pkg/errors"
	"github.com/matzehuels/objview/pkg/target/image"
	"github.com/matzehuels/objview/pkg/walker"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "objview"

	// defaultAddr is where the inspection server listens by default.
	defaultAddr = "127.0.0.1:8740"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// out is where Logger writes.
	out io.Writer

	// configPath is the --config flag; empty means the default location.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), out: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "objview walks C structs in a memory image and edits them as a node graph",
		Long:         `objview follows the pointers of a struct in a memory image, builds one node per object with one attribute per member, and lets you inspect the result as a node graph in the terminal, as JSON, DOT or SVG, or over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+editor.DefaultConfigPath()+")")

	root.AddCommand(c.walkCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Session Factory
// =============================================================================

// targetFlags select the image and the walk root. They are shared by every
// command that walks.
type targetFlags struct {
	image    string
	root     string
	register string
	typeName string
}

func (f *targetFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.image, "image", "i", "", "memory image (YAML)")
	cmd.Flags().StringVarP(&f.root, "root", "r", "", "root address or symbol (overrides the image highlight)")
	cmd.Flags().StringVar(&f.register, "register", "", "take the root address from this register")
	cmd.Flags().StringVarP(&f.typeName, "type", "t", "", "root struct type (default: the type declared at the root)")
	_ = cmd.MarkFlagRequired("image")
	cmd.MarkFlagsMutuallyExclusive("root", "register")
}

// openSession loads the config and the image and creates a session whose
// architecture follows the image.
func (c *CLI) openSession(path string, opts ...editor.Option) (*editor.Session, *image.Image, error) {
	cfg, err := editor.LoadConfig(c.configPath)
	if err != nil {
		return nil, nil, err
	}
	img, err := image.Load(path)
	if err != nil {
		return nil, nil, err
	}
	arch := img.Arch()
	cfg.Bits = arch.Bits
	cfg.Endian = "little"
	if arch.ByteOrder == binary.BigEndian {
		cfg.Endian = "big"
	}

	opts = append([]editor.Option{editor.WithLogger(c.Logger), editor.WithTarget(img)}, opts...)
	s := editor.NewSession(cfg, opts...)
	c.Logger.Debug("session", "id", s.ID, "image", path, "bits", cfg.Bits, "endian", cfg.Endian)
	return s, img, nil
}

// resolveRoot asks the image host for the walk root, with the root flags
// taking the place of the image highlight. prompt answers the type question
// when --type is not set; nil falls back to the image prompt. The image is
// left unchanged.
func resolveRoot(img *image.Image, f targetFlags, prompt func(def string) (string, bool)) (walker.Root, error) {
	h := &flagHost{Host: img, flags: f, prompt: prompt}
	root, ok, err := walker.ResolveRoot(h, img)
	if err != nil {
		return walker.Root{}, err
	}
	if !ok {
		return walker.Root{}, errors.New(errors.ErrCodeCancelled, "no root selected")
	}
	return root, nil
}

// flagHost overrides the highlight and the type prompt of a host with the
// target flags of one command or request.
type flagHost struct {
	walker.Host
	flags  targetFlags
	prompt func(def string) (string, bool)
}

func (h *flagHost) Highlighted() (string, walker.HighlightKind, bool) {
	switch {
	case h.flags.register != "":
		return h.flags.register, walker.HighlightRegister, true
	case h.flags.root != "":
		return h.flags.root, walker.HighlightAddress, true
	}
	return h.Host.Highlighted()
}

func (h *flagHost) PromptString(def string) (string, bool) {
	switch {
	case h.flags.typeName != "":
		return h.flags.typeName, true
	case h.prompt != nil:
		return h.prompt(def)
	}
	return h.Host.PromptString(def)
}

// walk runs the session walk and logs its outcome. Nodes created before a
// failure stay in the graph.
func (c *CLI) walk(ctx context.Context, s *editor.Session, root walker.Root) (*walker.Result, error) {
	prog := newProgress(c.Logger)
	res, err := s.Walk(ctx, root)
	if err != nil {
		c.Logger.Error("walk aborted", "root", fmt.Sprintf("%#x", root.Address), "type", root.Type, "err", errors.UserMessage(err))
		return res, err
	}
	prog.done(fmt.Sprintf("Walked %d objects from %s@%#x", len(res.Objects), root.Type, root.Address))
	return res, nil
}
