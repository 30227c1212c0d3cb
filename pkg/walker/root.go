package walker

import (
	"strings"

	"github.com/matzehuels/objview/pkg/errors"
)

// Root is where a walk starts.
type Root struct {
	Address uint64
	Type    string
}

// ResolveRoot derives the walk root from the host's current highlight.
//
// A highlighted register is read through the host; any other highlight is
// evaluated as an address expression. The type declared at the address is
// offered as the default answer to the type prompt. ok is false if nothing
// is highlighted or the user cancelled the prompt.
func ResolveRoot(h Host, t Types) (root Root, ok bool, err error) {
	text, kind, ok := h.Highlighted()
	if !ok || strings.TrimSpace(text) == "" {
		return Root{}, false, nil
	}

	var addr uint64
	if kind == HighlightRegister {
		addr, err = h.RegisterValue(text)
	} else {
		addr, err = h.ResolveAddress(text)
	}
	if err != nil {
		return Root{}, false, errors.Wrap(errors.ErrCodeInvalidAddress, err, "resolve %q", text)
	}

	def, _ := t.DeclaredType(addr)
	answer, ok := h.PromptString(NormalizeType(def))
	if !ok || strings.TrimSpace(answer) == "" {
		return Root{}, false, nil
	}
	if err := errors.ValidateTypeName(answer); err != nil {
		return Root{}, false, err
	}
	return Root{Address: addr, Type: NormalizeType(strings.TrimSpace(answer))}, true, nil
}
