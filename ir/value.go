package ir

// Value is anything that can be used as an operand: an argument, a constant,
// a global variable, or the result of an instruction.
type Value interface {
	Type() Type
	valueName() string
}

// Name returns v's result name, or "" for values that don't have one (a
// constant, or a void-producing instruction such as Store or a
// terminator). Exported so callers outside this package — e.g. a module
// serializer — can render a Value without a type switch over every
// concrete kind.
func Name(v Value) string { return v.valueName() }

// Argument is one parameter of a Function.
type Argument struct {
	Name  string
	Ty    Type
	Index int
}

func (a *Argument) Type() Type        { return a.Ty }
func (a *Argument) valueName() string { return a.Name }

// IsPointer reports whether this argument is a pointer-to-device-memory
// parameter, as opposed to an integer scalar.
func (a *Argument) IsPointer() bool {
	_, ok := a.Ty.(PointerType)
	return ok
}

// IntBits returns the argument's integer width, or 0 if it is not an
// integer-typed argument.
func (a *Argument) IntBits() int {
	if it, ok := a.Ty.(IntType); ok {
		return it.Bits
	}
	return 0
}

// ConstInt is an integer constant operand.
type ConstInt struct {
	Ty  IntType
	Val int64
}

func (c ConstInt) Type() Type        { return c.Ty }
func (c ConstInt) valueName() string { return "" }

// GlobalVariable is a module-scope variable. The sanitizer pass only acts on
// globals resident in AddressSpaceLocal whose element type is a statically
// sized array (§4.4).
type GlobalVariable struct {
	Name       string
	ElemType   Type // typically ArrayType
	AddrSpace  AddressSpace
	Linkage    Linkage
	Constant   bool
	ExternInit bool // "externally initialized" per §4.4(c)
	Align      int
}

func (g *GlobalVariable) Type() Type {
	return PointerType{Elem: g.ElemType, AddrSpace: g.AddrSpace}
}
func (g *GlobalVariable) valueName() string { return g.Name }

// ArrayLen returns the element count of g's array type, or 0 if g is not an
// array-typed global.
func (g *GlobalVariable) ArrayLen() int {
	if at, ok := g.ElemType.(ArrayType); ok {
		return at.Count
	}
	return 0
}
