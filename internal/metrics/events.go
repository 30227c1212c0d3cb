package metrics

import (
	"github.com/matzehuels/objview/pkg/geom"
	"github.com/matzehuels/objview/pkg/nodegraph"
)

// Events returns a graph listener counting events by kind.
func (r *Registry) Events() nodegraph.Events { return eventCounter{r} }

type eventCounter struct{ r *Registry }

func (e eventCounter) inc(kind string) { e.r.GraphEventsTotal.WithLabelValues(kind).Inc() }

func (e eventCounter) NodeCreated(string)                     { e.inc("node_created") }
func (e eventCounter) NodeDeleted([]string)                   { e.inc("node_deleted") }
func (e eventCounter) NodeEdited(string, string)              { e.inc("node_edited") }
func (e eventCounter) NodeSelected([]string)                  { e.inc("node_selected") }
func (e eventCounter) NodeMoved(string, geom.Point)           { e.inc("node_moved") }
func (e eventCounter) AttrCreated(string, int)                { e.inc("attr_created") }
func (e eventCounter) AttrDeleted(string, int)                { e.inc("attr_deleted") }
func (e eventCounter) AttrEdited(string, int, int)            { e.inc("attr_edited") }
func (e eventCounter) PlugConnected(nodegraph.Endpoints)      { e.inc("plug_connected") }
func (e eventCounter) PlugDisconnected(nodegraph.Endpoints)   { e.inc("plug_disconnected") }
func (e eventCounter) SocketConnected(nodegraph.Endpoints)    { e.inc("socket_connected") }
func (e eventCounter) SocketDisconnected(nodegraph.Endpoints) { e.inc("socket_disconnected") }
func (e eventCounter) GraphSaved()                            { e.inc("graph_saved") }
func (e eventCounter) GraphLoaded()                           { e.inc("graph_loaded") }
func (e eventCounter) GraphCleared()                          { e.inc("graph_cleared") }
func (e eventCounter) GraphEvaluated()                        { e.inc("graph_evaluated") }
func (e eventCounter) KeyPressed(string)                      { e.inc("key_pressed") }
