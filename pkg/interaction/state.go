package interaction

// State is the controller's current pointer interaction. Exactly one state
// is active; connection drawing is tracked separately.
type State int

const (
	StateDefault State = iota
	StateZoomView
	StateDragView
	StateDragWindow
	StateDragItem
	StateAddSelection
	StateSubtractSelection
	StateToggleSelection
)

var stateNames = [...]string{
	StateDefault:           "DEFAULT",
	StateZoomView:          "ZOOM_VIEW",
	StateDragView:          "DRAG_VIEW",
	StateDragWindow:        "DRAG_WINDOW",
	StateDragItem:          "DRAG_ITEM",
	StateAddSelection:      "ADD_SELECTION",
	StateSubtractSelection: "SUBTRACT_SELECTION",
	StateToggleSelection:   "TOGGLE_SELECTION",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// selecting reports whether s draws a rubber band.
func (s State) selecting() bool {
	switch s {
	case StateDragWindow, StateAddSelection, StateSubtractSelection, StateToggleSelection:
		return true
	}
	return false
}

// pick returns the state for a press, first match wins.
func pick(b Button, m Modifiers, overItem bool) State {
	switch {
	case b == ButtonSecondary && m == ModAlt:
		return StateZoomView
	case b == ButtonMiddle && m == ModAlt:
		return StateDragView
	case b == ButtonPrimary && m == 0 && !overItem:
		return StateDragWindow
	case b == ButtonPrimary && m == 0 && overItem:
		return StateDragItem
	case b == ButtonPrimary && m.Has(ModShift|ModCtrl):
		return StateAddSelection
	case b == ButtonPrimary && m == ModCtrl:
		return StateSubtractSelection
	case b == ButtonPrimary && m == ModShift:
		return StateToggleSelection
	}
	return StateDefault
}
