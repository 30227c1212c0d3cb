package interaction

import (
	"strings"

	"github.com/matzehuels/objview/pkg/geom"
)

// Button identifies a pointer button.
type Button int

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonMiddle
	ButtonSecondary
)

func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonMiddle:
		return "middle"
	case ButtonSecondary:
		return "secondary"
	}
	return "none"
}

// Modifiers is a set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

// Has reports whether every modifier in m is held.
func (m Modifiers) Has(o Modifiers) bool { return m&o == o }

func (m Modifiers) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	if m.Has(ModShift) {
		parts = append(parts, "shift")
	}
	if m.Has(ModCtrl) {
		parts = append(parts, "ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "alt")
	}
	return strings.Join(parts, "+")
}

// Key names a keyboard key. Printable keys use their lower-case character.
type Key string

const (
	KeyDelete Key = "delete"
	KeyFrame  Key = "f"
	KeySnap   Key = "s"
)

// PointerEvent is a press, move or release at Pos, in view coordinates.
type PointerEvent struct {
	Pos    geom.Point
	Button Button
	Mods   Modifiers
}

// WheelEvent is a wheel turn at Pos, in view coordinates. A positive Delta
// zooms in.
type WheelEvent struct {
	Pos   geom.Point
	Delta int
}
