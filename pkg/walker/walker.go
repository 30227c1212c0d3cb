package walker

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/objview/pkg/errors"
	"github.com/matzehuels/objview/pkg/geom"
	"github.com/matzehuels/objview/pkg/layout"
	"github.com/matzehuels/objview/pkg/nodegraph"
	"github.com/matzehuels/objview/pkg/observability"
)

// Presets applied to walker-created nodes and attributes.
const (
	NodePreset = "node_preset_1"
	AttrPreset = "attr_preset_1"
	// FieldDataType is the data type of every field attribute, so any
	// field may point to any other.
	FieldDataType = "member"
)

// Walker builds graphs from a [Target].
type Walker struct {
	target   Target
	graph    *nodegraph.Graph
	arch     Arch
	placer   layout.Placer
	maxDepth int
	logger   *log.Logger
}

// Option configures a [Walker].
type Option func(*Walker)

// WithArch sets the pointer width and byte order. Defaults to [DefaultArch].
func WithArch(a Arch) Option { return func(w *Walker) { w.arch = a } }

// WithPlacer sets the layout margins.
func WithPlacer(p layout.Placer) Option { return func(w *Walker) { w.placer = p } }

// WithMaxDepth limits how many pointer levels below the root are visited.
// 0 means unlimited. Pointers into objects that were already visited are
// connected regardless of depth.
func WithMaxDepth(n int) Option { return func(w *Walker) { w.maxDepth = n } }

// WithLogger sets the logger. Visits and skipped pointers are logged at
// debug level.
func WithLogger(l *log.Logger) Option {
	return func(w *Walker) {
		if l != nil {
			w.logger = l
		}
	}
}

// New returns a walker reading from t and writing into g.
func New(t Target, g *nodegraph.Graph, opts ...Option) *Walker {
	w := &Walker{
		target: t,
		graph:  g,
		arch:   DefaultArch,
		placer: layout.New(layout.DefaultMargin),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Result lists what a walk discovered. On failure it holds the objects
// created before the error.
type Result struct {
	Root    *Object
	Objects []*Object // discovery order

	arena *arena
}

// Lookup returns the visited object containing addr.
func (r *Result) Lookup(addr uint64) *Object {
	if r.arena == nil {
		return nil
	}
	return r.arena.find(addr)
}

// walk holds the state of one traversal. It is discarded afterwards.
type walk struct {
	*Walker
	ctx    context.Context
	arena  *arena
	result *Result
}

// Walk visits the struct of type typeName at root, placing its node at pos,
// and everything reachable from it through valid pointers.
//
// The walk is not cancellable; ctx is only handed to observability hooks.
// The returned Result is never nil.
func (w *Walker) Walk(ctx context.Context, root uint64, typeName string, pos geom.Point) (*Result, error) {
	start := time.Now()
	typeName = NormalizeType(typeName)
	observability.Walk().OnWalkStart(ctx, root, typeName)
	w.logger.Debug("walk", "root", fmt.Sprintf("%#x", root), "type", typeName, "max_depth", w.maxDepth)

	st := &walk{Walker: w, ctx: ctx, arena: &arena{}}
	st.result = &Result{arena: st.arena}
	obj, err := st.visit(root, typeName, pos, nil, 0)
	st.result.Root = obj
	st.result.Objects = st.arena.order

	observability.Walk().OnWalkComplete(ctx, len(st.arena.order), len(w.graph.Connections()), time.Since(start), err)
	if err != nil {
		return st.result, err
	}
	w.graph.MarkLoaded()
	return st.result, nil
}

// visit creates the object at addr unless a visited object already covers
// it, then follows its pointers.
func (st *walk) visit(addr uint64, typeName string, pos geom.Point, parent *Field, depth int) (*Object, error) {
	if o := st.arena.find(addr); o != nil {
		return o, nil
	}

	def, err := st.resolve(typeName)
	if err != nil {
		return nil, err
	}
	obj := &Object{
		Address: addr,
		Type:    typeName,
		Size:    def.Size,
		Depth:   depth,
		parent:  parent,
	}
	if err := st.decode(obj, def); err != nil {
		return nil, err
	}

	node, err := st.graph.CreateNode(obj.Name(), NodePreset, pos)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "create node for %s", obj.Name())
	}
	obj.node = node
	st.arena.insert(obj)
	observability.Walk().OnObjectVisited(st.ctx, typeName, len(obj.Fields))
	st.logger.Debug("visit", "address", fmt.Sprintf("%#x", addr), "type", typeName, "members", len(obj.Fields), "depth", depth)

	for _, f := range obj.Fields {
		spec := nodegraph.AttributeSpec{
			Name:     f.Label(),
			Index:    -1,
			Preset:   AttrPreset,
			Plug:     true,
			Socket:   true,
			DataType: FieldDataType,
		}
		if _, err := st.graph.CreateAttribute(node, spec); err != nil {
			return obj, errors.Wrap(errors.GetCode(err), err, "create attribute %s", f.Label())
		}
	}

	col := st.placer.Column(node.Rect())
	for _, f := range obj.Fields {
		if !f.valid {
			continue
		}
		ptr, _ := f.Value.Address()
		if existing := st.arena.find(ptr); existing != nil {
			observability.Walk().OnAlias(st.ctx)
			st.logger.Debug("alias", "from", obj.Name()+"."+f.Name, "to", existing.Name())
			if err := st.connect(f, existing.FieldAt(ptr)); err != nil {
				return obj, err
			}
			continue
		}
		if st.maxDepth > 0 && depth+1 > st.maxDepth {
			st.logger.Debug("max depth reached", "field", obj.Name()+"."+f.Name, "pointer", fmt.Sprintf("%#x", ptr))
			continue
		}
		pointee := st.pointee(f, ptr)
		if pointee == "" {
			st.logger.Debug("untyped pointer", "field", obj.Name()+"."+f.Name, "pointer", fmt.Sprintf("%#x", ptr))
			continue
		}
		if !st.fits(ptr, pointee) {
			st.logger.Debug("pointee not fully mapped", "field", obj.Name()+"."+f.Name, "pointer", fmt.Sprintf("%#x", ptr), "type", pointee)
			continue
		}
		child, err := st.visit(ptr, pointee, col.Next(), f, depth+1)
		if err != nil {
			return obj, err
		}
		obj.children = append(obj.children, child)
		if err := st.connect(f, child.Fields[0]); err != nil {
			return obj, err
		}
		col.Advance(child.bottom())
	}
	return obj, nil
}

// resolve looks up a struct definition and rejects the ones a walk cannot
// represent.
func (st *walk) resolve(typeName string) (Struct, error) {
	def, ok := st.target.LookupStruct(typeName)
	if !ok {
		return Struct{}, errors.New(errors.ErrCodeObjectNotDefined,
			"%s isn't defined, add it to the structures first", typeName)
	}
	if def.Union {
		return Struct{}, errors.New(errors.ErrCodeUnsupported, "%s is a union, unions are not supported", typeName)
	}
	if len(def.Members) == 0 {
		return Struct{}, errors.New(errors.ErrCodeNoMemberFound, "no member found in %s", typeName)
	}
	return def, nil
}

// decode reads every member of obj and fills obj.Fields.
func (st *walk) decode(obj *Object, def Struct) error {
	obj.Fields = make([]*Field, 0, len(def.Members))
	for _, m := range def.Members {
		f := &Field{
			Object: obj,
			Offset: m.Offset,
			Name:   m.Name,
			Size:   m.Size,
			Flags:  m.Flags,
			ID:     m.ID,
		}
		if m.Type != "" {
			f.Type = NormalizeType(m.Type)
		}
		raw, err := st.target.ReadBytes(f.Address(), m.Size)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidAddress, err, "read %s.%s at %#x", obj.Type, m.Name, f.Address())
		}
		v, err := st.value(f, raw)
		if err != nil {
			return err
		}
		f.Value = v
		if addr, ok := v.Address(); ok {
			f.valid = st.target.IsMapped(addr)
		}
		obj.Fields = append(obj.Fields, f)
	}
	return nil
}

// value decodes raw according to the member's flags and declared type.
//
// Offset members become pointers. Untyped members whose integer flag
// matches their size become integers. Enums and bitfields are rejected.
// Everything else is kept as raw bytes.
func (st *walk) value(f *Field, raw []byte) (Value, error) {
	if f.Flags.Has(FlagOffset) {
		if n, ok := st.arch.Uint(raw); ok {
			return Pointer(len(raw), n), nil
		}
	}
	if f.Type == "" {
		if isInteger(f.Flags, f.Size) {
			n, _ := st.arch.Uint(raw)
			return Integer(f.Size, n), nil
		}
		if f.Flags.Has(FlagEnum) || f.Flags.Has(FlagBitfield) {
			return Value{}, errors.New(errors.ErrCodeUnsupported,
				"%s.%s: %s members are not supported", f.Object.Type, f.Name, f.Flags)
		}
	}
	return RawBytes(raw), nil
}

func isInteger(flags Flags, size int) bool {
	return (flags.Has(FlagByte) && size == 1) ||
		(flags.Has(FlagWord) && size == 2) ||
		(flags.Has(FlagDword) && size == 4) ||
		(flags.Has(FlagQword) && size == 8)
}

// pointee returns the struct type a pointer field refers to: its declared
// type dereferenced once, or the type declared at the target address. It is
// empty when the pointer leads to another pointer or to nothing typed.
// "void *" counts as untyped.
func (st *walk) pointee(f *Field, addr uint64) string {
	if t, ok := Deref(f.Type); ok && t != "void" {
		if _, isPtr := Deref(t); isPtr || t == "" {
			return ""
		}
		return NormalizeType(t)
	}
	if t, ok := st.target.DeclaredType(addr); ok {
		return NormalizeType(t)
	}
	return ""
}

// fits reports whether the last byte of a typeName object at addr is
// mapped. Unknown types fit so that visiting them reports the error.
func (st *walk) fits(addr uint64, typeName string) bool {
	def, ok := st.target.LookupStruct(typeName)
	if !ok {
		return true
	}
	end := def.Size
	for _, m := range def.Members {
		end = max(end, m.Offset+uint64(m.Size))
	}
	if end == 0 {
		return true
	}
	return st.target.IsMapped(addr + end - 1)
}

// connect draws the edge from f to target and records it on f.
func (st *walk) connect(f, target *Field) error {
	if target == nil {
		return nil
	}
	_, err := st.graph.CreateConnection(
		f.Object.Name(), f.Label(),
		target.Object.Name(), target.Label(),
		nodegraph.AllowSelfLoop(),
	)
	if err != nil {
		return errors.Wrap(errors.GetCode(err), err, "connect %s.%s", f.Object.Name(), f.Name)
	}
	if f.target == nil {
		f.target = target
	}
	return nil
}
