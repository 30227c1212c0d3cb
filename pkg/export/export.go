package export

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/matzehuels/objview/pkg/errors"
	"github.com/matzehuels/objview/pkg/nodegraph"
	"github.com/matzehuels/objview/pkg/observability"
)

// Format is an output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"
	FormatSVG  Format = "svg"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatDOT, FormatSVG}

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want json, dot or svg)", s)
}

// Options configures an export.
type Options struct {
	// Session is recorded in JSON snapshots.
	Session string
	// Detailed adds attribute data types and positions to DOT labels.
	Detailed bool
}

// Render returns g in the given format.
func Render(ctx context.Context, g *nodegraph.Graph, format Format, opts Options) ([]byte, error) {
	start := time.Now()
	observability.Export().OnExportStart(ctx, string(format), g.Len())

	var (
		out []byte
		err error
	)
	switch format {
	case FormatJSON:
		out, err = JSON(g, opts.Session)
	case FormatDOT:
		out = []byte(ToDOT(g, opts))
	case FormatSVG:
		out, err = RenderSVG(ctx, ToDOT(g, opts))
	default:
		err = errors.New(errors.ErrCodeInvalidInput, "unknown format %q", format)
	}

	observability.Export().OnExportComplete(ctx, string(format), len(out), time.Since(start), err)
	return out, err
}

// Write renders g to w and marks the graph saved.
func Write(ctx context.Context, w io.Writer, g *nodegraph.Graph, format Format, opts Options) error {
	out, err := Render(ctx, g, format, opts)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", format)
	}
	g.MarkSaved()
	return nil
}
