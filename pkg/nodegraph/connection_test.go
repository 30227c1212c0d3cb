package nodegraph

import (
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/objview/pkg/geom"
)

func TestPendingConnection(t *testing.T) {
	tests := []struct {
		name     string
		from     func(a, b *Node) *Slot
		to       func(a, b *Node) *Slot
		wantLive bool
	}{
		{
			name:     "PlugToSocket",
			from:     func(a, _ *Node) *Slot { s, _ := a.Plug("a1"); return s },
			to:       func(_, b *Node) *Slot { s, _ := b.Socket("b1"); return s },
			wantLive: true,
		},
		{
			name:     "SocketToPlug",
			from:     func(_, b *Node) *Slot { s, _ := b.Socket("b1"); return s },
			to:       func(a, _ *Node) *Slot { s, _ := a.Plug("a1"); return s },
			wantLive: true,
		},
		{
			name: "EmptySpace",
			from: func(a, _ *Node) *Slot { s, _ := a.Plug("a1"); return s },
			to:   func(_, _ *Node) *Slot { return nil },
		},
		{
			name: "SameKind",
			from: func(a, _ *Node) *Slot { s, _ := a.Plug("a1"); return s },
			to:   func(a, _ *Node) *Slot { s, _ := a.Plug("a1"); return s },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, a, b := newPair(t)
			c, err := g.StartConnection(tt.from(a, b))
			if err != nil {
				t.Fatal(err)
			}
			if !c.Pending() || c.Live() {
				t.Fatal("new connection should be pending and not live")
			}
			if len(g.Connections()) != 0 {
				t.Fatal("pending connection added to the graph")
			}
			c.MoveFreeEnd(geom.Pt(250, 100))

			got := g.FinishConnection(c, tt.to(a, b))
			if got != tt.wantLive || c.Live() != tt.wantLive {
				t.Fatalf("FinishConnection = %v (live %v), want %v", got, c.Live(), tt.wantLive)
			}
			if tt.wantLive {
				want := []EdgeData{{Source: "A.a1", Target: "B.b1"}}
				if edges := g.Evaluate(); !reflect.DeepEqual(edges, want) {
					t.Errorf("Evaluate() = %v, want %v", edges, want)
				}
			} else if len(g.Connections()) != 0 {
				t.Errorf("connections = %d, want 0", len(g.Connections()))
			}
			if err := checkInvariants(g); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestDetachAndReattach(t *testing.T) {
	g, a, b := newPair(t)
	b2 := mustAttr(t, g, b, AttributeSpec{Name: "b2", Index: -1, Socket: true, DataType: "int"})
	c, _ := g.CreateConnection("A", "a1", "B", "b1")

	if err := g.Detach(c, SocketEnd); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if end, ok := c.FreeEnd(); !ok || end != SocketEnd {
		t.Fatalf("FreeEnd() = %v, %v, want socket, true", end, ok)
	}
	plug, _ := a.Plug("a1")
	if c.Anchored() != plug {
		t.Error("Anchored() is not the plug")
	}
	if len(g.Connections()) != 0 || len(plug.Connections()) != 0 {
		t.Error("detached connection still bound")
	}
	if err := checkInvariants(g); err != nil {
		t.Fatal(err)
	}

	if !g.FinishConnection(c, b2.Socket()) {
		t.Fatal("FinishConnection onto B.b2 failed")
	}
	if c.Target() != "B.b2" {
		t.Errorf("Target() = %q, want B.b2", c.Target())
	}

	if err := g.Detach(c, PlugEnd); err != nil {
		t.Fatal(err)
	}
	other, _ := b.Socket("b1")
	if g.FinishConnection(c, other) {
		t.Error("socket accepted a socket")
	}
	if c.Live() || len(g.Connections()) != 0 {
		t.Error("rejected connection kept in the graph")
	}
	if err := g.Detach(c, PlugEnd); err == nil {
		t.Error("Detach on a discarded connection succeeded")
	}
	if err := checkInvariants(g); err != nil {
		t.Error(err)
	}
}

func TestFinishConnectionAfterAttributeDeleted(t *testing.T) {
	tests := []struct {
		name    string
		deleted func(a, b *Node) *Node
	}{
		{name: "Anchored", deleted: func(a, _ *Node) *Node { return a }},
		{name: "Target", deleted: func(_, b *Node) *Node { return b }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, a, b := newPair(t)
			plug, _ := a.Plug("a1")
			socket, _ := b.Socket("b1")
			c, err := g.StartConnection(plug)
			if err != nil {
				t.Fatal(err)
			}

			if err := g.DeleteAttribute(tt.deleted(a, b), 0); err != nil {
				t.Fatal(err)
			}
			if g.FinishConnection(c, socket) {
				t.Fatal("FinishConnection bound a slot of a deleted attribute")
			}
			if c.Live() {
				t.Error("connection is live")
			}
			if got := g.Evaluate(); len(got) != 0 {
				t.Errorf("Evaluate() = %v, want none", got)
			}
			if len(plug.Connections()) != 0 || len(socket.Connections()) != 0 {
				t.Error("slots still hold the discarded connection")
			}
		})
	}
}

func TestStartConnectionFromDeletedAttribute(t *testing.T) {
	g, a, _ := newPair(t)
	plug, _ := a.Plug("a1")
	if err := g.DeleteAttribute(a, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := g.StartConnection(plug); err == nil {
		t.Error("StartConnection accepted a slot of a deleted attribute")
	}
}

func TestConnectionNearest(t *testing.T) {
	g, _, _ := newPair(t)
	c, _ := g.CreateConnection("A", "a1", "B", "b1")

	if got := c.Point(PlugEnd); got != geom.Pt(200, 30) {
		t.Fatalf("plug point = %v, want (200, 30)", got)
	}
	if got := c.Point(SocketEnd); got != geom.Pt(300, 30) {
		t.Fatalf("socket point = %v, want (300, 30)", got)
	}
	tests := []struct {
		p    geom.Point
		want End
	}{
		{geom.Pt(205, 30), PlugEnd},
		{geom.Pt(290, 35), SocketEnd},
		{geom.Pt(250, 30), PlugEnd},
	}
	for _, tt := range tests {
		if got := c.Nearest(tt.p); got != tt.want {
			t.Errorf("Nearest(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestPath(t *testing.T) {
	p := NewPath(geom.Pt(0, 0), geom.Pt(100, 50))
	if p.Ctrl1 != geom.Pt(50, 0) || p.Ctrl2 != geom.Pt(50, 50) {
		t.Errorf("controls = %v, %v, want (50, 0), (50, 50)", p.Ctrl1, p.Ctrl2)
	}
	if got := p.At(0.5); got != geom.Pt(50, 25) {
		t.Errorf("At(0.5) = %v, want (50, 25)", got)
	}
	if got := p.Distance(geom.Pt(100, 50)); got > 1e-9 {
		t.Errorf("Distance(end) = %v, want 0", got)
	}
	if got := p.Distance(geom.Pt(50, 25)); got > 1e-9 {
		t.Errorf("Distance(midpoint) = %v, want 0", got)
	}
	if got := p.Distance(geom.Pt(50, 125)); got < 75 || math.IsInf(got, 0) {
		t.Errorf("Distance((50, 125)) = %v, want at least 75", got)
	}
	if got, want := p.Bounds(), geom.R(0, 0, 100, 50); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
}

func TestItemAt(t *testing.T) {
	g, a, _ := newPair(t)
	c, _ := g.CreateConnection("A", "a1", "B", "b1")
	plug, _ := a.Plug("a1")

	tests := []struct {
		name string
		p    geom.Point
		want Item
	}{
		{name: "Slot", p: geom.Pt(200, 30), want: Item{Slot: plug}},
		{name: "Node", p: geom.Pt(100, 40), want: Item{Node: a}},
		{name: "Connection", p: geom.Pt(250, 31), want: Item{Connection: c}},
		{name: "Nothing", p: geom.Pt(250, 200), want: Item{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ItemAt(tt.p, 4); got != tt.want {
				t.Errorf("ItemAt(%v) = %+v, want %+v", tt.p, got, tt.want)
			}
		})
	}
}

func TestRaiseChangesHitOrder(t *testing.T) {
	g := New()
	first := mustNode(t, g, "first", geom.Pt(0, 0))
	second := mustNode(t, g, "second", geom.Pt(10, 10))

	if got := g.NodeAt(geom.Pt(15, 15)); got != second {
		t.Fatalf("NodeAt = %v, want second", got.Name())
	}
	if err := g.Raise(first); err != nil {
		t.Fatal(err)
	}
	if got := g.NodeAt(geom.Pt(15, 15)); got != first {
		t.Errorf("NodeAt after Raise = %v, want first", got.Name())
	}
}

func TestSceneQueries(t *testing.T) {
	g, a, b := newPair(t)

	if got := g.NodesIntersecting(geom.R(40, 40, -50, -50)); !reflect.DeepEqual(got, []*Node{a}) {
		t.Errorf("NodesIntersecting = %v, want [A]", got)
	}
	if got := g.NodesIntersecting(geom.R(0, 0, 400, 10)); len(got) != 2 {
		t.Errorf("NodesIntersecting wide = %d nodes, want 2", len(got))
	}
	if got, want := g.BoundingRect(nil), geom.R(0, 0, 500, 62); got != want {
		t.Errorf("BoundingRect(nil) = %v, want %v", got, want)
	}
	if got, want := g.BoundingRect([]*Node{b}), geom.R(300, 0, 200, 62); got != want {
		t.Errorf("BoundingRect(B) = %v, want %v", got, want)
	}
}

func TestConnectable(t *testing.T) {
	g, a, b := newPair(t)
	f := mustAttr(t, g, b, AttributeSpec{Name: "f", Index: -1, Socket: true, DataType: "float"})
	p := mustAttr(t, g, b, AttributeSpec{Name: "p", Index: -1, Plug: true, DataType: "int"})
	src, _ := a.Plug("a1")
	b1, _ := b.Socket("b1")

	if !b1.Connectable(src) {
		t.Error("same type socket not connectable")
	}
	if f.Socket().Connectable(src) {
		t.Error("float socket connectable from int plug")
	}
	if p.Plug().Connectable(src) {
		t.Error("plug connectable from plug")
	}
}
