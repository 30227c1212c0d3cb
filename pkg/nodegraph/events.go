package nodegraph

import (
	"fmt"

	"github.com/matzehuels/objview/pkg/geom"
)

// Endpoints identifies both ends of a connection by name.
type Endpoints struct {
	PlugNode   string
	PlugAttr   string
	SocketNode string
	SocketAttr string
}

// String renders the endpoints as "Node.attr -> Node.attr".
func (e Endpoints) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", e.PlugNode, e.PlugAttr, e.SocketNode, e.SocketAttr)
}

// Events receives notifications about graph changes.
// Implementations must not mutate the graph from inside a callback.
type Events interface {
	NodeCreated(name string)
	NodeDeleted(names []string)
	NodeEdited(oldName, newName string)
	NodeSelected(names []string)
	NodeMoved(name string, pos geom.Point)

	AttrCreated(node string, index int)
	AttrDeleted(node string, index int)
	AttrEdited(node string, oldIndex, newIndex int)

	PlugConnected(e Endpoints)
	PlugDisconnected(e Endpoints)
	SocketConnected(e Endpoints)
	SocketDisconnected(e Endpoints)

	GraphSaved()
	GraphLoaded()
	GraphCleared()
	GraphEvaluated()

	KeyPressed(key string)
}

// NoopEvents is a no-op implementation of Events.
type NoopEvents struct{}

func (NoopEvents) NodeCreated(string)           {}
func (NoopEvents) NodeDeleted([]string)         {}
func (NoopEvents) NodeEdited(string, string)    {}
func (NoopEvents) NodeSelected([]string)        {}
func (NoopEvents) NodeMoved(string, geom.Point) {}
func (NoopEvents) AttrCreated(string, int)      {}
func (NoopEvents) AttrDeleted(string, int)      {}
func (NoopEvents) AttrEdited(string, int, int)  {}
func (NoopEvents) PlugConnected(Endpoints)      {}
func (NoopEvents) PlugDisconnected(Endpoints)   {}
func (NoopEvents) SocketConnected(Endpoints)    {}
func (NoopEvents) SocketDisconnected(Endpoints) {}
func (NoopEvents) GraphSaved()                  {}
func (NoopEvents) GraphLoaded()                 {}
func (NoopEvents) GraphCleared()                {}
func (NoopEvents) GraphEvaluated()              {}
func (NoopEvents) KeyPressed(string)            {}

// Multi fans every event out to each of the given listeners in order.
type Multi []Events

func (m Multi) NodeCreated(name string) {
	for _, e := range m {
		e.NodeCreated(name)
	}
}

func (m Multi) NodeDeleted(names []string) {
	for _, e := range m {
		e.NodeDeleted(names)
	}
}

func (m Multi) NodeEdited(oldName, newName string) {
	for _, e := range m {
		e.NodeEdited(oldName, newName)
	}
}

func (m Multi) NodeSelected(names []string) {
	for _, e := range m {
		e.NodeSelected(names)
	}
}

func (m Multi) NodeMoved(name string, pos geom.Point) {
	for _, e := range m {
		e.NodeMoved(name, pos)
	}
}

func (m Multi) AttrCreated(node string, index int) {
	for _, e := range m {
		e.AttrCreated(node, index)
	}
}

func (m Multi) AttrDeleted(node string, index int) {
	for _, e := range m {
		e.AttrDeleted(node, index)
	}
}

func (m Multi) AttrEdited(node string, oldIndex, newIndex int) {
	for _, e := range m {
		e.AttrEdited(node, oldIndex, newIndex)
	}
}

func (m Multi) PlugConnected(ep Endpoints) {
	for _, e := range m {
		e.PlugConnected(ep)
	}
}

func (m Multi) PlugDisconnected(ep Endpoints) {
	for _, e := range m {
		e.PlugDisconnected(ep)
	}
}

func (m Multi) SocketConnected(ep Endpoints) {
	for _, e := range m {
		e.SocketConnected(ep)
	}
}

func (m Multi) SocketDisconnected(ep Endpoints) {
	for _, e := range m {
		e.SocketDisconnected(ep)
	}
}

func (m Multi) GraphSaved() {
	for _, e := range m {
		e.GraphSaved()
	}
}

func (m Multi) GraphLoaded() {
	for _, e := range m {
		e.GraphLoaded()
	}
}

func (m Multi) GraphCleared() {
	for _, e := range m {
		e.GraphCleared()
	}
}

func (m Multi) GraphEvaluated() {
	for _, e := range m {
		e.GraphEvaluated()
	}
}

func (m Multi) KeyPressed(key string) {
	for _, e := range m {
		e.KeyPressed(key)
	}
}

// Event is one recorded notification.
type Event struct {
	Kind string // e.g. "NodeCreated", "SocketConnected"
	Args []any
}

// String renders the event as "Kind arg1 arg2".
func (e Event) String() string {
	if len(e.Args) == 0 {
		return e.Kind
	}
	return fmt.Sprintf("%s %v", e.Kind, e.Args)
}

// Recorder stores the events it receives. It backs the editor's event log
// and is handy in tests.
type Recorder struct {
	Events []Event
	// Limit caps Events to the most recent entries. 0 keeps everything.
	Limit int
}

func (r *Recorder) add(kind string, args ...any) {
	if r.Limit > 0 && len(r.Events) >= r.Limit {
		r.Events = r.Events[len(r.Events)-r.Limit+1:]
	}
	r.Events = append(r.Events, Event{Kind: kind, Args: args})
}

// Kinds returns the recorded event kinds in order.
func (r *Recorder) Kinds() []string {
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Kind
	}
	return out
}

// Count returns how many events of the given kind were recorded.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Reset drops all recorded events.
func (r *Recorder) Reset() { r.Events = nil }

func (r *Recorder) NodeCreated(name string)    { r.add("NodeCreated", name) }
func (r *Recorder) NodeDeleted(names []string) { r.add("NodeDeleted", names) }
func (r *Recorder) NodeEdited(oldName, newName string) {
	r.add("NodeEdited", oldName, newName)
}
func (r *Recorder) NodeSelected(names []string)           { r.add("NodeSelected", names) }
func (r *Recorder) NodeMoved(name string, pos geom.Point) { r.add("NodeMoved", name, pos) }
func (r *Recorder) AttrCreated(node string, index int)    { r.add("AttrCreated", node, index) }
func (r *Recorder) AttrDeleted(node string, index int)    { r.add("AttrDeleted", node, index) }
func (r *Recorder) AttrEdited(node string, oldIndex, newIndex int) {
	r.add("AttrEdited", node, oldIndex, newIndex)
}
func (r *Recorder) PlugConnected(e Endpoints)      { r.add("PlugConnected", e) }
func (r *Recorder) PlugDisconnected(e Endpoints)   { r.add("PlugDisconnected", e) }
func (r *Recorder) SocketConnected(e Endpoints)    { r.add("SocketConnected", e) }
func (r *Recorder) SocketDisconnected(e Endpoints) { r.add("SocketDisconnected", e) }
func (r *Recorder) GraphSaved()                    { r.add("GraphSaved") }
func (r *Recorder) GraphLoaded()                   { r.add("GraphLoaded") }
func (r *Recorder) GraphCleared()                  { r.add("GraphCleared") }
func (r *Recorder) GraphEvaluated()                { r.add("GraphEvaluated") }
func (r *Recorder) KeyPressed(key string)          { r.add("KeyPressed", key) }

var (
	_ Events = NoopEvents{}
	_ Events = Multi(nil)
	_ Events = (*Recorder)(nil)
)
