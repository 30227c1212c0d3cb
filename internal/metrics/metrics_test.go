package metrics

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/matzehuels/objview/pkg/errors"
	"github.com/matzehuels/objview/pkg/geom"
	"github.com/matzehuels/objview/pkg/nodegraph"
	"github.com/matzehuels/objview/pkg/observability"
)

// value reads a counter or gauge.
func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if out.Counter != nil {
		return out.GetCounter().GetValue()
	}
	return out.GetGauge().GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.WalksTotal == nil || r.ExportsTotal == nil || r.HTTPRequestsTotal == nil || r.GraphEventsTotal == nil {
		t.Fatal("metrics not initialized")
	}
	if r.Gatherer() == nil {
		t.Fatal("Gatherer() returned nil")
	}
}

func TestWalkHooks(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	r.OnWalkStart(ctx, 0x1000, "list")
	r.OnObjectVisited(ctx, "list", 2)
	r.OnObjectVisited(ctx, "list", 2)
	r.OnObjectVisited(ctx, "tree", 3)
	r.OnAlias(ctx)
	r.OnWalkComplete(ctx, 3, 4, 5*time.Millisecond, nil)
	r.OnWalkComplete(ctx, 1, 0, time.Millisecond, errors.New(errors.ErrCodeObjectNotDefined, "missing"))

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"list objects", value(t, r.ObjectsVisited.WithLabelValues("list")), 2},
		{"tree objects", value(t, r.ObjectsVisited.WithLabelValues("tree")), 1},
		{"aliases", value(t, r.AliasesTotal), 1},
		{"ok walks", value(t, r.WalksTotal.WithLabelValues("ok")), 1},
		{"failed walks", value(t, r.WalksTotal.WithLabelValues("OBJECT_NOT_DEFINED")), 1},
		{"nodes", value(t, r.GraphNodes), 1},
		{"connections", value(t, r.GraphConnections), 0},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestExportHooks(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	r.OnExportStart(ctx, "dot", 3)
	r.OnExportComplete(ctx, "dot", 512, time.Millisecond, nil)
	r.OnExportComplete(ctx, "svg", 0, time.Millisecond, stdError("boom"))

	if got := value(t, r.ExportsTotal.WithLabelValues("dot", "ok")); got != 1 {
		t.Errorf("dot exports = %v, want 1", got)
	}
	if got := value(t, r.ExportsTotal.WithLabelValues("svg", "error")); got != 1 {
		t.Errorf("failed svg exports = %v, want 1", got)
	}
}

type stdError string

func (e stdError) Error() string { return string(e) }

func TestHTTPHooks(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	r.OnRequest(ctx, "GET", "/graph")
	if got := value(t, r.HTTPRequestsInFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	r.OnResponse(ctx, "GET", "/graph", 200, time.Millisecond)
	if got := value(t, r.HTTPRequestsInFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := value(t, r.HTTPRequestsTotal.WithLabelValues("GET", "/graph", "200")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
}

func TestEvents(t *testing.T) {
	r := NewRegistry()
	g := nodegraph.New(nodegraph.WithEvents(r.Events()))
	a, _ := g.CreateNode("A", "", geom.Pt(0, 0))
	_, _ = g.CreateNode("B", "", geom.Pt(300, 0))
	_, _ = g.CreateAttribute(a, nodegraph.AttributeSpec{Name: "a1", Index: -1, Plug: true})
	_ = g.DeleteNode(a)

	for kind, want := range map[string]float64{"node_created": 2, "attr_created": 1, "node_deleted": 1, "graph_saved": 0} {
		if got := value(t, r.GraphEventsTotal.WithLabelValues(kind)); got != want {
			t.Errorf("%s = %v, want %v", kind, got, want)
		}
	}
}

func TestInstallAndHandler(t *testing.T) {
	r := NewRegistry()
	r.Install()
	t.Cleanup(observability.Reset)

	observability.Walk().OnAlias(context.Background())
	if got := value(t, r.AliasesTotal); got != 1 {
		t.Errorf("aliases = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "objview_aliases_total 1") {
		t.Errorf("metrics output missing alias counter:\n%s", body)
	}
}
