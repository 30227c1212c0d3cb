package export

import (
	"encoding/json"

	"github.com/matzehuels/objview/pkg/nodegraph"
)

// Snapshot is the JSON form of a graph.
type Snapshot struct {
	Session string               `json:"session,omitempty"`
	Nodes   []NodeData           `json:"nodes"`
	Edges   []nodegraph.EdgeData `json:"edges"`
}

// NodeData is one node of a [Snapshot].
type NodeData struct {
	Name       string     `json:"name"`
	Preset     string     `json:"preset,omitempty"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Selected   bool       `json:"selected,omitempty"`
	Attributes []AttrData `json:"attributes"`
}

// AttrData is one attribute of a [NodeData].
type AttrData struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Plug     bool   `json:"plug"`
	Socket   bool   `json:"socket"`
}

// Snap captures g. It evaluates the graph, which emits GraphEvaluated.
func Snap(g *nodegraph.Graph, session string) Snapshot {
	s := Snapshot{Session: session, Nodes: make([]NodeData, 0, g.Len()), Edges: g.Evaluate()}
	for _, n := range g.Nodes() {
		s.Nodes = append(s.Nodes, NodeOf(n))
	}
	return s
}

// NodeOf returns the snapshot form of n.
func NodeOf(n *nodegraph.Node) NodeData {
	r := n.Rect()
	nd := NodeData{
		Name:       n.Name(),
		Preset:     n.Preset(),
		X:          r.X,
		Y:          r.Y,
		Width:      r.W,
		Height:     r.H,
		Selected:   n.Selected(),
		Attributes: make([]AttrData, 0, n.Len()),
	}
	for _, a := range n.Attributes() {
		nd.Attributes = append(nd.Attributes, AttrData{
			Name:     a.Name(),
			DataType: a.DataType(),
			Plug:     a.Plug() != nil,
			Socket:   a.Socket() != nil,
		})
	}
	return nd
}

// JSON returns the indented snapshot of g.
func JSON(g *nodegraph.Graph, session string) ([]byte, error) {
	return json.MarshalIndent(Snap(g, session), "", "  ")
}
