package walker_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/objview/pkg/errors"
	"github.com/matzehuels/objview/pkg/geom"
	"github.com/matzehuels/objview/pkg/nodegraph"
	"github.com/matzehuels/objview/pkg/walker"
	"github.com/matzehuels/objview/pkg/walker/walkertest"
)

const ptrFlags = walker.FlagQword | walker.FlagOffset

// listStruct is struct list { struct list *next; uint32 value; }.
func listStruct() walker.Struct {
	return walker.Struct{
		Name: "list",
		Size: 16,
		Members: []walker.Member{
			{Offset: 0, Name: "next", Size: 8, Flags: ptrFlags, Type: "struct list *"},
			{Offset: 8, Name: "value", Size: 4, Flags: walker.FlagDword},
		},
	}
}

// treeStruct is struct tree { tree *left; tree *right; uint32 value; }.
func treeStruct() walker.Struct {
	return walker.Struct{
		Name: "tree",
		Size: 24,
		Members: []walker.Member{
			{Offset: 0, Name: "left", Size: 8, Flags: ptrFlags, Type: "tree *"},
			{Offset: 8, Name: "right", Size: 8, Flags: ptrFlags, Type: "tree *"},
			{Offset: 16, Name: "value", Size: 4, Flags: walker.FlagDword},
		},
	}
}

// leafStruct is struct leaf { uint64 x; uint64 y; }.
func leafStruct() walker.Struct {
	return walker.Struct{
		Name: "leaf",
		Size: 16,
		Members: []walker.Member{
			{Offset: 0, Name: "x", Size: 8, Flags: walker.FlagQword},
			{Offset: 8, Name: "y", Size: 8, Flags: walker.FlagQword},
		},
	}
}

func walk(t *testing.T, tgt walker.Target, root uint64, typeName string, opts ...walker.Option) (*nodegraph.Graph, *walker.Result, error) {
	t.Helper()
	g := nodegraph.New()
	res, err := walker.New(tgt, g, opts...).Walk(context.Background(), root, typeName, geom.Pt(0, 0))
	require.NotNil(t, res)
	return g, res, err
}

func TestWalkSelfLoop(t *testing.T) {
	tgt := walkertest.New().Map(0x1000, 16).Define(listStruct())
	tgt.PutUint(0x1000, 8, 0x1000).PutUint(0x1008, 4, 7)

	g, res, err := walk(t, tgt, 0x1000, "list")
	require.NoError(t, err)

	assert.Equal(t, 1, g.Len())
	require.Len(t, res.Objects, 1)
	assert.Equal(t, "list@0x1000", res.Root.Name())

	edges := g.Evaluate()
	require.Len(t, edges, 1)
	assert.Equal(t, "list@0x1000.next  0x0000000000001000", edges[0].Source)
	assert.Equal(t, "list@0x1000.next  0x0000000000001000", edges[0].Target)
	assert.Same(t, res.Root.Fields[0], res.Root.Fields[0].Target())
}

func TestWalkCycle(t *testing.T) {
	tgt := walkertest.New().Map(0x1000, 0x1000).Define(listStruct())
	tgt.PutUint(0x1000, 8, 0x1100)
	tgt.PutUint(0x1100, 8, 0x1200)
	tgt.PutUint(0x1200, 8, 0x1000)

	g, res, err := walk(t, tgt, 0x1000, "struct list")
	require.NoError(t, err)

	names := make([]string, 0, len(res.Objects))
	for _, o := range res.Objects {
		names = append(names, o.Name())
	}
	assert.Equal(t, []string{"list@0x1000", "list@0x1100", "list@0x1200"}, names)
	assert.Len(t, g.Connections(), 3)

	b, ok := g.Node("list@0x1100")
	require.True(t, ok)
	assert.Equal(t, geom.Pt(240, 0), b.Pos())
	c, _ := g.Node("list@0x1200")
	assert.Equal(t, geom.Pt(480, 0), c.Pos())

	last := res.Objects[2].Fields[0]
	assert.Same(t, res.Root.Fields[0], last.Target(), "back edge should reach the root's first field")
}

func TestWalkStacksSiblings(t *testing.T) {
	tgt := walkertest.New().Map(0x1000, 0x100).Define(treeStruct())
	tgt.PutUint(0x1000, 8, 0x1040)
	tgt.PutUint(0x1008, 8, 0x1080)

	g, res, err := walk(t, tgt, 0x1000, "tree")
	require.NoError(t, err)
	require.Len(t, res.Objects, 3)

	left, _ := g.Node("tree@0x1040")
	right, _ := g.Node("tree@0x1080")
	assert.Equal(t, geom.Pt(240, 0), left.Pos())
	// tree nodes are 25 + 3*30 + 2 + 5 = 122 high
	assert.Equal(t, geom.Pt(240, 162), right.Pos())
	assert.Len(t, res.Root.Children(), 2)
	assert.Same(t, res.Root.Fields[1], res.Objects[2].Parent())
}

func TestWalkAliases(t *testing.T) {
	pair := walker.Struct{
		Name: "pair",
		Size: 16,
		Members: []walker.Member{
			{Offset: 0, Name: "first", Size: 8, Flags: ptrFlags, Type: "leaf *"},
			{Offset: 8, Name: "second", Size: 8, Flags: ptrFlags, Type: "leaf *"},
		},
	}

	tests := []struct {
		name       string
		second     uint64
		wantTarget string
		wantEdges  int
	}{
		{name: "SameStart", second: 0x2000, wantTarget: "x", wantEdges: 1},
		{name: "Interior", second: 0x2008, wantTarget: "y", wantEdges: 2},
		{name: "InsideField", second: 0x200c, wantTarget: "y", wantEdges: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tgt := walkertest.New().Map(0x1000, 16).Map(0x2000, 16).Define(pair).Define(leafStruct())
			tgt.PutUint(0x1000, 8, 0x2000).PutUint(0x1008, 8, tt.second)

			g, res, err := walk(t, tgt, 0x1000, "pair")
			require.NoError(t, err)
			assert.Len(t, res.Objects, 2)
			assert.Len(t, g.Connections(), tt.wantEdges)

			second := res.Root.Fields[1]
			require.NotNil(t, second.Target())
			assert.Equal(t, tt.wantTarget, second.Target().Name)
			assert.Equal(t, "x", res.Root.Fields[0].Target().Name)
		})
	}
}

func TestWalkDecodesValues(t *testing.T) {
	rec := walker.Struct{
		Name: "rec",
		Size: 16,
		Members: []walker.Member{
			{Offset: 0, Name: "id", Size: 4, Flags: walker.FlagDword},
			{Offset: 4, Name: "tag", Size: 4, Flags: walker.FlagByte, Type: "char[4]"},
			{Offset: 8, Name: "dangling", Size: 8, Flags: ptrFlags, Type: "rec *"},
		},
	}
	tgt := walkertest.New().Map(0x1000, 16).Define(rec)
	tgt.PutUint(0x1000, 4, 0x2a).PutBytes(0x1004, []byte("ABCD")).PutUint(0x1008, 8, 0xdead0000)

	g, res, err := walk(t, tgt, 0x1000, "rec")
	require.NoError(t, err)

	fields := res.Root.Fields
	assert.Equal(t, walker.KindInteger, fields[0].Value.Kind())
	assert.Equal(t, "id  0x0000002a", fields[0].Label())
	assert.Equal(t, walker.KindRawBytes, fields[1].Value.Kind())
	assert.Equal(t, "tag  [41 42 43 44]", fields[1].Label())
	assert.True(t, fields[2].IsPointer())
	assert.False(t, fields[2].ValidPointer())
	assert.Empty(t, g.Connections())

	n := res.Root.Node()
	for i, f := range fields {
		a := n.AttributeAt(i)
		require.NotNil(t, a)
		assert.Equal(t, f.Label(), a.Name())
		assert.NotNil(t, a.Plug())
		assert.NotNil(t, a.Socket())
		assert.Equal(t, walker.FieldDataType, a.DataType())
	}
}

func TestWalkUntypedPointer(t *testing.T) {
	holder := walker.Struct{
		Name:    "holder",
		Size:    8,
		Members: []walker.Member{{Offset: 0, Name: "p", Size: 8, Flags: ptrFlags}},
	}
	tests := []struct {
		name     string
		declare  bool
		wantObjs int
	}{
		{name: "DeclaredAtTarget", declare: true, wantObjs: 2},
		{name: "Undeclared", declare: false, wantObjs: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tgt := walkertest.New().Map(0x1000, 8).Map(0x2000, 16).Define(holder).Define(leafStruct())
			tgt.PutUint(0x1000, 8, 0x2000)
			if tt.declare {
				tgt.Declare(0x2000, "struct leaf")
			}
			_, res, err := walk(t, tgt, 0x1000, "holder")
			require.NoError(t, err)
			assert.Len(t, res.Objects, tt.wantObjs)
		})
	}
}

func TestWalkMaxDepth(t *testing.T) {
	tgt := walkertest.New().Map(0x1000, 0x1000).Define(listStruct())
	tgt.PutUint(0x1000, 8, 0x1100)
	tgt.PutUint(0x1100, 8, 0x1200)
	tgt.PutUint(0x1200, 8, 0x1000)

	g, res, err := walk(t, tgt, 0x1000, "list", walker.WithMaxDepth(1))
	require.NoError(t, err)
	assert.Len(t, res.Objects, 2)
	assert.Len(t, g.Connections(), 1)
	assert.Equal(t, 1, res.Objects[1].Depth)
}

func TestWalkTruncatedPointee(t *testing.T) {
	// The second list starts in the mapping but its value member does not.
	tgt := walkertest.New().Map(0x1000, 0x18).Define(listStruct())
	tgt.PutUint(0x1000, 8, 0x1010)

	g, res, err := walk(t, tgt, 0x1000, "list")
	require.NoError(t, err)
	assert.Len(t, res.Objects, 1)
	assert.Equal(t, 1, g.Len())
	assert.Empty(t, g.Connections())
}

func TestWalkRunsToCompletionWhenCancelled(t *testing.T) {
	tgt := walkertest.New().Map(0x1000, 32).Define(listStruct())
	tgt.PutUint(0x1000, 8, 0x1010).PutUint(0x1010, 8, 0x1000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := nodegraph.New()
	res, err := walker.New(tgt, g).Walk(ctx, 0x1000, "list", geom.Pt(0, 0))
	require.NoError(t, err)
	assert.Len(t, res.Objects, 2)
	assert.Len(t, g.Connections(), 2)
}

func TestWalkErrors(t *testing.T) {
	union := walker.Struct{Name: "u", Size: 8, Union: true, Members: []walker.Member{{Name: "a", Size: 8, Flags: walker.FlagQword}}}
	empty := walker.Struct{Name: "empty", Size: 0}
	flags := walker.Struct{Name: "flags", Size: 4, Members: []walker.Member{{Name: "mode", Size: 4, Flags: walker.FlagEnum}}}
	parent := walker.Struct{Name: "parent", Size: 8, Members: []walker.Member{
		{Name: "child", Size: 8, Flags: ptrFlags, Type: "missing *"},
	}}

	tests := []struct {
		name      string
		typeName  string
		root      uint64
		wantCode  errors.Code
		wantNodes int
	}{
		{name: "NotDefined", typeName: "nope", root: 0x1000, wantCode: errors.ErrCodeObjectNotDefined},
		{name: "Union", typeName: "u", root: 0x1000, wantCode: errors.ErrCodeUnsupported},
		{name: "NoMembers", typeName: "empty", root: 0x1000, wantCode: errors.ErrCodeNoMemberFound},
		{name: "EnumMember", typeName: "flags", root: 0x1000, wantCode: errors.ErrCodeUnsupported},
		{name: "Unmapped", typeName: "parent", root: 0x9000, wantCode: errors.ErrCodeInvalidAddress},
		{name: "PartialGraphKept", typeName: "parent", root: 0x1000, wantCode: errors.ErrCodeObjectNotDefined, wantNodes: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tgt := walkertest.New().Map(0x1000, 16).Map(0x2000, 16).
				Define(union).Define(empty).Define(flags).Define(parent)
			tgt.PutUint(0x1000, 8, 0x2000)

			g, res, err := walk(t, tgt, tt.root, tt.typeName)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantCode), "got %v, want %s", err, tt.wantCode)
			assert.Equal(t, tt.wantNodes, g.Len())
			assert.Len(t, res.Objects, tt.wantNodes)
		})
	}
}

func TestResultDump(t *testing.T) {
	tgt := walkertest.New().Map(0x1000, 16).Define(listStruct())
	tgt.PutUint(0x1000, 8, 0x1000)

	_, res, err := walk(t, tgt, 0x1000, "list")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.Dump(&buf))
	out := buf.String()
	assert.Contains(t, out, "object list@0x1000 (16 bytes)")
	assert.Contains(t, out, "+0x00 next  0x0000000000001000 -> list@0x1000.next")
	assert.Contains(t, out, "+0x08 value  0x00000000")
}

func TestResolveRoot(t *testing.T) {
	tests := []struct {
		name     string
		host     walkertest.Host
		wantRoot walker.Root
		wantOK   bool
		wantDef  string
	}{
		{
			name:     "Register",
			host:     walkertest.Host{Text: "RAX", Kind: walker.HighlightRegister, Registers: map[string]uint64{"rax": 0x1000}, Answer: "list"},
			wantRoot: walker.Root{Address: 0x1000, Type: "list"},
			wantOK:   true,
			wantDef:  "list",
		},
		{
			name:     "Symbol",
			host:     walkertest.Host{Text: "g_head", Kind: walker.HighlightAddress, Symbols: map[string]uint64{"g_head": 0x2000}, Answer: "struct leaf"},
			wantRoot: walker.Root{Address: 0x2000, Type: "leaf"},
			wantOK:   true,
		},
		{
			name:     "HexAddress",
			host:     walkertest.Host{Text: "0x1000", Kind: walker.HighlightAddress, Answer: " list "},
			wantRoot: walker.Root{Address: 0x1000, Type: "list"},
			wantOK:   true,
			wantDef:  "list",
		},
		{
			name:    "Cancelled",
			host:    walkertest.Host{Text: "0x1000", Kind: walker.HighlightAddress, Cancel: true},
			wantDef: "list",
		},
		{
			name: "NothingHighlighted",
			host: walkertest.Host{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			types := walkertest.New().Declare(0x1000, "struct list")
			h := tt.host
			root, ok, err := walker.ResolveRoot(&h, types)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantRoot, root)
			if len(h.Prompts) > 0 {
				assert.Equal(t, tt.wantDef, h.Prompts[0])
			}
		})
	}
}

func TestResolveRootErrors(t *testing.T) {
	types := walkertest.New()

	h := &walkertest.Host{Text: "RBX", Kind: walker.HighlightRegister}
	_, _, err := walker.ResolveRoot(h, types)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidAddress), "got %v", err)

	h = &walkertest.Host{Text: "0x10", Kind: walker.HighlightAddress, Answer: "not a type!"}
	_, _, err = walker.ResolveRoot(h, types)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "got %v", err)
}

func ExampleWalker_Walk() {
	tgt := walkertest.New().Map(0x1000, 16).Define(walker.Struct{
		Name: "node",
		Size: 16,
		Members: []walker.Member{
			{Offset: 0, Name: "next", Size: 8, Flags: walker.FlagQword | walker.FlagOffset, Type: "node *"},
			{Offset: 8, Name: "id", Size: 4, Flags: walker.FlagDword},
		},
	})
	tgt.PutUint(0x1000, 8, 0x1000).PutUint(0x1008, 4, 1)

	g := nodegraph.New()
	res, err := walker.New(tgt, g).Walk(context.Background(), 0x1000, "node", geom.Point{})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(len(res.Objects), "object")
	for _, e := range g.Evaluate() {
		fmt.Println(e.Source, "->", e.Target)
	}
	// Output:
	// 1 object
	// node@0x1000.next  0x0000000000001000 -> node@0x1000.next  0x0000000000001000
}
