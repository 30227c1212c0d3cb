package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/objview/internal/metrics"
	"github.com/matzehuels/objview/pkg/buildinfo"
	"github.com/matzehuels/objview/pkg/editor"
	"github.com/matzehuels/objview/pkg/errors"
	"github.com/matzehuels/objview/pkg/export"
	"github.com/matzehuels/objview/pkg/observability"
	"github.com/matzehuels/objview/pkg/target/image"
)

// sessionHeader carries the session id on every response.
const sessionHeader = "X-Objview-Session"

type serveOpts struct {
	target targetFlags
	addr   string
}

// serveCommand creates the serve command, an HTTP API over one walked
// session.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the walked graph and Prometheus metrics over HTTP",
		Long: `Serve walks the root once and exposes the session over HTTP:

  GET  /healthz            status, session id and version
  GET  /graph              JSON snapshot
  GET  /graph/{format}     json, dot or svg
  GET  /nodes/{name}       one node
  GET  /segments           mapped ranges of the image
  GET  /structs            struct definitions of the image
  GET  /events             most recent graph events
  POST /walk?root=&type=   walk again from another root
  GET  /metrics            Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runServe(cmd, opts)
		},
	}

	opts.target.bind(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", defaultAddr, "listen address")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts serveOpts) error {
	ctx := cmd.Context()

	reg := metrics.NewRegistry()
	reg.Install()
	defer observability.Reset()

	s, img, err := c.openSession(opts.target.image, editor.WithListener(reg.Events()))
	if err != nil {
		return err
	}
	root, err := resolveRoot(img, opts.target, nil)
	if err != nil {
		return err
	}
	if _, err := c.walk(ctx, s, root); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         opts.addr,
		Handler:      newServer(s, img, reg).routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	out := cmd.OutOrStdout()
	printSuccess(out, "Serving session %s", StyleHighlight.Render(s.ID))
	printKeyValue(out, "graph", "http://"+opts.addr+"/graph")
	printKeyValue(out, "metrics", "http://"+opts.addr+"/metrics")

	select {
	case err := <-errc:
		return errors.Wrap(errors.ErrCodeInternal, err, "listen on %s", opts.addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "shutdown")
	}
	return ctx.Err()
}

// =============================================================================
// Server
// =============================================================================

// server exposes one session. The graph is not safe for concurrent use, so
// every handler touching it holds mu.
type server struct {
	mu      sync.Mutex
	session *editor.Session
	image   *image.Image
	logger  *log.Logger
	metrics *metrics.Registry
}

func newServer(s *editor.Session, img *image.Image, reg *metrics.Registry) *server {
	return &server{session: s, image: img, logger: s.Logger, metrics: reg}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Get("/graph", s.handleGraph)
	r.Get("/graph/{format}", s.handleGraph)
	r.Get("/nodes/{name}", s.handleNode)
	r.Get("/segments", s.handleSegments)
	r.Get("/structs", s.handleStructs)
	r.Get("/events", s.handleEvents)
	r.Post("/walk", s.handleWalk)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	return r
}

// instrument reports every request to the HTTP hooks under its route
// pattern and stamps the session id.
func (s *server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		w.Header().Set(sessionHeader, s.session.ID)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, path, status, d)
		s.logger.Debug("request", "id", middleware.GetReqID(r.Context()), "method", r.Method, "path", r.URL.Path, "status", status, "duration", d)
	})
}

type healthResponse struct {
	Status  string `json:"status"`
	Session string `json:"session"`
	Version string `json:"version"`
	Nodes   int    `json:"nodes"`
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	n := s.session.Graph.Len()
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Session: s.session.ID,
		Version: buildinfo.Version,
		Nodes:   n,
	})
}

var contentTypes = map[export.Format]string{
	export.FormatJSON: "application/json",
	export.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	export.FormatSVG:  "image/svg+xml",
}

func (s *server) handleGraph(w http.ResponseWriter, r *http.Request) {
	format := export.FormatJSON
	if name := chi.URLParam(r, "format"); name != "" {
		f, err := export.ParseFormat(name)
		if err != nil {
			respondError(w, err)
			return
		}
		format = f
	}

	s.mu.Lock()
	out, err := export.Render(r.Context(), s.session.Graph, format, export.Options{
		Session:  s.session.ID,
		Detailed: r.URL.Query().Get("detailed") == "true",
	})
	s.mu.Unlock()
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *server) handleNode(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.session.Graph.Node(name)
	if !ok {
		respondError(w, errors.New(errors.ErrCodeUnknownNode, "no node named %q", name))
		return
	}
	respondJSON(w, http.StatusOK, export.NodeOf(n))
}

func (s *server) handleSegments(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.image.Segments())
}

func (s *server) handleStructs(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.image.StructNames())
}

// handleEvents lists the session history, oldest first.
func (s *server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	events := make([]string, len(s.session.History.Events))
	for i, e := range s.session.History.Events {
		events[i] = e.String()
	}
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, events)
}

type walkResponse struct {
	Root    string `json:"root"`
	Objects int    `json:"objects"`
	Nodes   int    `json:"nodes"`
}

// handleWalk replaces the graph with a walk from another root. On failure
// the nodes created before the error are kept.
func (s *server) handleWalk(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("root") == "" {
		respondError(w, errors.New(errors.ErrCodeInvalidInput, "root is required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	root, err := resolveRoot(s.image, targetFlags{root: q.Get("root"), typeName: q.Get("type")}, nil)
	if err != nil {
		respondError(w, err)
		return
	}
	res, err := s.session.Walk(r.Context(), root)
	if err != nil {
		s.logger.Error("walk aborted", "root", q.Get("root"), "err", errors.UserMessage(err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, walkResponse{
		Root:    res.Root.Name(),
		Objects: len(res.Objects),
		Nodes:   s.session.Graph.Len(),
	})
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	respondJSON(w, statusOf(err), errorResponse{Error: string(code), Message: errors.UserMessage(err)})
}

// statusOf maps an error code to an HTTP status.
func statusOf(err error) int {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidName, errors.ErrCodeInvalidAddress, errors.ErrCodeCancelled:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeUnknownNode, errors.ErrCodeUnknownAttribute:
		return http.StatusNotFound
	case errors.ErrCodeObjectNotDefined, errors.ErrCodeNoMemberFound, errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
