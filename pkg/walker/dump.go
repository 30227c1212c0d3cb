package walker

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes every discovered object and its fields, in discovery order.
func (r *Result) Dump(w io.Writer) error {
	rule := strings.Repeat("=", 30)
	for _, o := range r.Objects {
		if _, err := fmt.Fprintf(w, "object %s (%d bytes)\n%s\n", o.Name(), o.Size, rule); err != nil {
			return err
		}
		for _, f := range o.Fields {
			line := fmt.Sprintf("  +0x%02x %s", f.Offset, f.Label())
			if t := f.Target(); t != nil {
				line += fmt.Sprintf(" -> %s.%s", t.Object.Name(), t.Name)
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, rule); err != nil {
			return err
		}
	}
	return nil
}
