package editor

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/objview/pkg/geom"
	"github.com/matzehuels/objview/pkg/nodegraph"
)

// logEvents logs graph events at debug level.
type logEvents struct {
	logger *log.Logger
}

func (l *logEvents) NodeCreated(name string)    { l.logger.Debug("node created", "node", name) }
func (l *logEvents) NodeDeleted(names []string) { l.logger.Debug("node deleted", "nodes", names) }
func (l *logEvents) NodeEdited(oldName, newName string) {
	l.logger.Debug("node edited", "node", oldName, "new_name", newName)
}
func (l *logEvents) NodeSelected(names []string) { l.logger.Debug("node selected", "nodes", names) }
func (l *logEvents) NodeMoved(name string, pos geom.Point) {
	l.logger.Debug("node moved", "node", name, "x", pos.X, "y", pos.Y)
}
func (l *logEvents) AttrCreated(node string, index int) {
	l.logger.Debug("attr created", "node", node, "index", index)
}
func (l *logEvents) AttrDeleted(node string, index int) {
	l.logger.Debug("attr deleted", "node", node, "old_index", index)
}
func (l *logEvents) AttrEdited(node string, oldIndex, newIndex int) {
	l.logger.Debug("attr edited", "node", node, "old_index", oldIndex, "new_index", newIndex)
}
func (l *logEvents) PlugConnected(e nodegraph.Endpoints)    { l.connection("connected", e) }
func (l *logEvents) PlugDisconnected(e nodegraph.Endpoints) { l.connection("disconnected", e) }
func (l *logEvents) SocketConnected(nodegraph.Endpoints)    {}
func (l *logEvents) SocketDisconnected(nodegraph.Endpoints) {}
func (l *logEvents) GraphSaved()                            { l.logger.Debug("graph saved") }
func (l *logEvents) GraphLoaded()                           { l.logger.Debug("graph loaded") }
func (l *logEvents) GraphCleared()                          { l.logger.Debug("graph cleared") }
func (l *logEvents) GraphEvaluated()                        { l.logger.Debug("graph evaluated") }
func (l *logEvents) KeyPressed(key string)                  { l.logger.Debug("key pressed", "key", key) }

func (l *logEvents) connection(what string, e nodegraph.Endpoints) {
	l.logger.Debug(what, "src", e.PlugNode, "plug", e.PlugAttr, "dst", e.SocketNode, "socket", e.SocketAttr)
}

var _ nodegraph.Events = (*logEvents)(nil)
