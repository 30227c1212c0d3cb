// Package editor ties one editing session together: the graph, its
// settings, the target architecture and the logger.
//
// A Session replaces process-wide state. The walker and the interaction
// controller receive everything they need from it explicitly.
package editor

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/objview/pkg/errors"
	"github.com/matzehuels/objview/pkg/geom"
	"github.com/matzehuels/objview/pkg/layout"
	"github.com/matzehuels/objview/pkg/nodegraph"
	"github.com/matzehuels/objview/pkg/walker"
)

// Session is one editor instance.
type Session struct {
	ID     string
	Config Config
	Graph  *nodegraph.Graph
	Logger *log.Logger
	// History keeps the last Config.HistorySize graph events.
	History *nodegraph.Recorder

	target walker.Target
}

// Option configures a [Session].
type Option func(*sessionOptions)

type sessionOptions struct {
	logger    *log.Logger
	listeners []nodegraph.Events
	target    walker.Target
}

// WithLogger sets the session logger. Graph events are logged at debug
// level.
func WithLogger(l *log.Logger) Option {
	return func(o *sessionOptions) { o.logger = l }
}

// WithListener adds a graph event listener.
func WithListener(e nodegraph.Events) Option {
	return func(o *sessionOptions) { o.listeners = append(o.listeners, e) }
}

// WithTarget sets the memory and type provider walks read from.
func WithTarget(t walker.Target) Option {
	return func(o *sessionOptions) { o.target = t }
}

// NewSession creates a session with an empty graph.
func NewSession(cfg Config, opts ...Option) *Session {
	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	id := uuid.New().String()
	logger := o.logger.With("session", id[:8])

	history := &nodegraph.Recorder{Limit: cfg.HistorySize}
	listeners := append(nodegraph.Multi{history, &logEvents{logger: logger}}, o.listeners...)
	return &Session{
		ID:      id,
		Config:  cfg,
		Graph:   nodegraph.New(nodegraph.WithStyle(cfg.Style()), nodegraph.WithEvents(listeners)),
		Logger:  logger,
		History: history,
		target:  o.target,
	}
}

// Arch returns the target architecture from the config.
func (s *Session) Arch() walker.Arch { return s.Config.Arch() }

// Target returns the provider set with [WithTarget], or nil.
func (s *Session) Target() walker.Target { return s.target }

// SceneCenter returns the middle of the scene, where nodes without an
// explicit position are created.
func (s *Session) SceneCenter() geom.Point {
	return geom.Pt(s.Config.SceneWidth/2, s.Config.SceneHeight/2)
}

// Walker returns a walker configured from the session.
func (s *Session) Walker() *walker.Walker {
	return walker.New(s.target, s.Graph,
		walker.WithArch(s.Arch()),
		walker.WithPlacer(layout.New(s.Config.LayoutMargin)),
		walker.WithMaxDepth(s.Config.MaxDepth),
		walker.WithLogger(s.Logger),
	)
}

// Walk clears the graph and walks from root, placing the root node at the
// scene origin.
func (s *Session) Walk(ctx context.Context, root walker.Root) (*walker.Result, error) {
	if s.target == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "session has no target")
	}
	if s.Graph.Len() > 0 {
		s.Graph.Clear()
	}
	return s.Walker().Walk(ctx, root.Address, root.Type, geom.Point{})
}
