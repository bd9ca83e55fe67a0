package bind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heliolang/heliobind/scanner"
)

func buildSource(t *testing.T, srcs ...string) (*Module, *Registry, error) {
	t.Helper()
	reg := NewRegistry()
	b := NewBuilder(reg)
	var sources []RecordSource
	for _, src := range srcs {
		sources = append(sources, scanner.New("test.go", src, scanner.DefaultTags()))
	}
	m, err := b.Build(sources...)
	return m, reg, err
}

const vectorSource = `package geom

//helio:Module(math)

//helio:Function(name=dot)
func Dot(a, b Vec3) float64 {
}

//helio:Class(ValueCopy)
type Vec3 struct {
	//helio:Property(ReadWrite)
	X float64
	//helio:Property(ReadWrite)
	Y float64
	//helio:Property(ReadWrite)
	Z float64
}
`

func TestBuildVectorModule(t *testing.T) {
	m, reg, err := buildSource(t, vectorSource)
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, "math", m.Name)
	require.Len(t, m.Classes, 1)
	require.Len(t, m.Functions, 1)

	cls := m.Classes[0]
	assert.Equal(t, "Vec3", cls.Name)
	assert.Equal(t, ValueCopy, cls.Ownership)
	assert.Len(t, cls.Properties, 3)
	assert.Len(t, cls.Methods, 0)

	fn := m.Functions[0]
	assert.Equal(t, "dot", fn.Exposed)
	require.Len(t, fn.Params, 2)

	// Dot is declared before Vec3; classification must still resolve
	// the forward reference once the class is registered.
	NewClassifier(reg).Resolve(m)
	assert.Equal(t, CategoryWrapped, fn.Params[0].Type.Category)
	assert.Equal(t, CategoryWrapped, fn.Params[1].Type.Category)
	assert.Same(t, cls, fn.Params[0].Type.Class)
	assert.Equal(t, CategoryFloating, fn.Return.Category)
}

func TestDuplicateModuleTag(t *testing.T) {
	_, _, err := buildSource(t, "//helio:Module(a)\n//helio:Module(b)\n")
	var be *BuilderError
	require.ErrorAs(t, err, &be)
	assert.Contains(t, be.Msg, "duplicate module")
}

func TestUnrecognizedPropertyOption(t *testing.T) {
	src := `//helio:Module(m)
//helio:Class(Owned)
type Buf struct {
	//helio:Property(WriteOnly)
	N int
}
`
	_, _, err := buildSource(t, src)
	var be *BuilderError
	require.ErrorAs(t, err, &be)
	assert.Contains(t, be.Msg, `unrecognized option "WriteOnly"`)
}

func TestFunctionNameOverrideCollision(t *testing.T) {
	src := `//helio:Module(m)
//helio:Class(Owned)
type Calc struct {
}

//helio:Function(name=calc)
func (c *Calc) Compute() int {
}

//helio:Function(name=calc)
func (c *Calc) ComputeFast() int {
}
`
	_, _, err := buildSource(t, src)
	var be *BuilderError
	require.ErrorAs(t, err, &be)
	assert.Contains(t, be.Msg, "name collision")
	assert.Contains(t, be.Msg, `"calc"`)
}

func TestUnrecognizedClassOption(t *testing.T) {
	src := "//helio:Module(m)\n//helio:Class(Shared)\ntype T struct {\n}\n"
	_, _, err := buildSource(t, src)
	var be *BuilderError
	require.ErrorAs(t, err, &be)
	assert.Contains(t, be.Msg, `unrecognized option "Shared"`)
}

func TestOwnershipDefaultsFromReceiverContext(t *testing.T) {
	src := `//helio:Module(m)
//helio:Class()
type Counter struct {
}

//helio:Function()
func (c *Counter) Inc() int {
}

//helio:Class()
type Point struct {
}
`
	m, _, err := buildSource(t, src)
	require.NoError(t, err)
	require.Len(t, m.Classes, 2)
	assert.Equal(t, Borrowed, m.Classes[0].Ownership, "pointer-receiver context")
	assert.Equal(t, ValueCopy, m.Classes[1].Ownership, "ambiguous context fallback")
}

func TestOwnershipFallbackOverride(t *testing.T) {
	reg := NewRegistry()
	b := NewBuilder(reg)
	b.SetDefaultOwnership(Borrowed)
	src := "//helio:Module(m)\n//helio:Class()\ntype P struct {\n}\n"
	m, err := b.Build(scanner.New("t.go", src, scanner.DefaultTags()))
	require.NoError(t, err)
	assert.Equal(t, Borrowed, m.Classes[0].Ownership)
}

func TestModuleProperty(t *testing.T) {
	src := "//helio:Module(m)\n//helio:Property(ReadOnly)\nvar Pi float64\n"
	m, _, err := buildSource(t, src)
	require.NoError(t, err)
	require.Len(t, m.Properties, 1)
	assert.Equal(t, "pi", m.Properties[0].Exposed)
	assert.Equal(t, ReadOnly, m.Properties[0].Access)
	assert.Nil(t, m.Properties[0].Owner())
}

func TestOperatorRequiresMethod(t *testing.T) {
	src := "//helio:Module(m)\n//helio:Operator(index)\nfunc At(i int) int {\n}\n"
	_, _, err := buildSource(t, src)
	var be *BuilderError
	require.ErrorAs(t, err, &be)
	assert.Contains(t, be.Msg, "must be declared as a method")
}

func TestSubscriptGetAndSetShareSlot(t *testing.T) {
	src := `//helio:Module(m)
//helio:Class(Borrowed, allocator)
type Buf struct {
}

//helio:Operator(index)
func (b *Buf) At(i int) float64 {
}

//helio:Operator(index)
func (b *Buf) SetAt(i int, v float64) {
}
`
	m, _, err := buildSource(t, src)
	require.NoError(t, err)
	cls := m.Classes[0]
	require.Len(t, cls.Operators, 2)
	assert.True(t, cls.HasAllocator)
	assert.Equal(t, OpSubscript, cls.Operators[0].Kind)
	assert.Equal(t, OpSubscript, cls.Operators[1].Kind)
}

func TestDuplicateSubscriptArityRejected(t *testing.T) {
	src := `//helio:Module(m)
//helio:Class(Borrowed)
type Buf struct {
}

//helio:Operator(index)
func (b *Buf) At(i int) float64 {
}

//helio:Operator(index)
func (b *Buf) Get(i int) float64 {
}
`
	_, _, err := buildSource(t, src)
	var be *BuilderError
	require.ErrorAs(t, err, &be)
	assert.Contains(t, be.Msg, "already bound")
}

func TestParameterDefaults(t *testing.T) {
	src := "//helio:Module(m)\n//helio:Function(default:scale=1.0)\nfunc Mul(v float64, scale float64) float64 {\n}\n"
	m, _, err := buildSource(t, src)
	require.NoError(t, err)
	fn := m.Functions[0]
	assert.Equal(t, "", fn.Params[0].Default)
	assert.Equal(t, "1.0", fn.Params[1].Default)
}

func TestNonTrailingDefaultRejected(t *testing.T) {
	src := "//helio:Module(m)\n//helio:Function(default:v=2.0)\nfunc Mul(v float64, scale float64) float64 {\n}\n"
	_, _, err := buildSource(t, src)
	var be *BuilderError
	require.ErrorAs(t, err, &be)
	assert.Contains(t, be.Msg, "without default follows")
}

func TestMemberBeforeModuleRejected(t *testing.T) {
	src := "//helio:Function()\nfunc F() int {\n}\n"
	_, _, err := buildSource(t, src)
	var be *BuilderError
	require.ErrorAs(t, err, &be)
	assert.Contains(t, be.Msg, "before module tag")
}

func TestExposedName(t *testing.T) {
	cases := map[string]string{
		"Vec3":       "vec3",
		"Dot":        "dot",
		"HTTPServer": "http_server",
		"SetAt":      "set_at",
		"X":          "x",
	}
	for in, want := range cases {
		if got := ExposedName(in); got != want {
			t.Errorf("ExposedName(%q) = %q, want %q", in, got, want)
		}
	}
}
