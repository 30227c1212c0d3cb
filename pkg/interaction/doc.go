// Package interaction implements the pointer and keyboard state machine of
// the graph editor.
//
// # Overview
//
// A [Controller] receives raw input from a front-end (a terminal UI, a test,
// a remote client) as [PointerEvent], [WheelEvent] and [Key] values in view
// coordinates. It maps them to the scene through its [View] and turns them
// into [nodegraph.Graph] mutations: selection, node moves, connections and
// deletions.
//
// # States
//
// A press picks one [State] by fixed priority on the button, the held
// modifiers and whether an item lies under the pointer:
//
//	secondary + alt          ZOOM_VIEW
//	middle + alt             DRAG_VIEW
//	primary, empty space     DRAG_WINDOW
//	primary, over an item    DRAG_ITEM
//	primary + shift + ctrl   ADD_SELECTION
//	primary + ctrl           SUBTRACT_SELECTION
//	primary + shift          TOGGLE_SELECTION
//
// Every release applies the state's effect and returns to DEFAULT.
//
// # Connections
//
// Pressing a slot starts a pending connection; pressing near an existing
// connection detaches its closer end. While drawing, the free end follows
// the pointer and the node under a small box around it is reported by
// [Controller.Hovered]. Releasing over a slot that accepts the anchored end
// binds the connection. Anything else discards it silently.
package interaction
