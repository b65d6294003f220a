package ir

import "fmt"

// AddressSpace identifies which memory space a pointer or global resides in.
// The numbering follows the SPIR-V convention used by
// _examples/original_source/plugin/SPIRVComputeSanitizer.cc, since that is
// the toolchain this pass's design was distilled from.
type AddressSpace int

const (
	AddressSpaceGeneric  AddressSpace = 0
	AddressSpaceGlobal   AddressSpace = 1
	AddressSpaceConstant AddressSpace = 2
	// AddressSpaceLocal is work-group-local memory: fast, shared by a
	// work-group's work-items, not persistent across dispatches.
	AddressSpaceLocal AddressSpace = 3
)

func (a AddressSpace) String() string {
	switch a {
	case AddressSpaceGeneric:
		return "generic"
	case AddressSpaceGlobal:
		return "global"
	case AddressSpaceConstant:
		return "constant"
	case AddressSpaceLocal:
		return "local"
	default:
		return fmt.Sprintf("addrspace(%d)", int(a))
	}
}

// Linkage mirrors the handful of linkage kinds the pass needs to reason
// about: whether a global/function is visible outside the module.
type Linkage int

const (
	LinkageExternal Linkage = iota
	LinkageInternal
)

// CallingConv distinguishes the GPU device calling convention the sanitizer
// runtime symbols and kernel entry points use from the module's other
// (host-callable) functions.
type CallingConv int

const (
	CallingConvDefault CallingConv = iota
	CallingConvGPU
)

// Type is implemented by every IR type. Types are compared by value
// (structurally), not by pointer identity.
type Type interface {
	String() string
	isType()
}

// VoidType is the type of values that produce nothing: the result of the
// three sanitizer-runtime entry points, stores, and terminators.
type VoidType struct{}

func (VoidType) String() string { return "void" }
func (VoidType) isType()        {}

// IntType is an integer type of a fixed bit width.
type IntType struct {
	Bits int
}

func (t IntType) String() string { return fmt.Sprintf("i%d", t.Bits) }
func (IntType) isType()          {}

var (
	I32 = IntType{Bits: 32}
	I64 = IntType{Bits: 64}
)

// PointerType is a pointer to Elem residing in AddrSpace.
type PointerType struct {
	Elem     Type
	AddrSpace AddressSpace
}

func (t PointerType) String() string {
	return fmt.Sprintf("%s addrspace(%s)*", t.Elem, t.AddrSpace)
}
func (PointerType) isType() {}

// ArrayType is a statically sized array of Elem with Count elements.
type ArrayType struct {
	Elem  Type
	Count int
}

func (t ArrayType) String() string { return fmt.Sprintf("[%d x %s]", t.Count, t.Elem) }
func (ArrayType) isType()          {}

// Predicate is an integer comparison predicate.
type Predicate int

const (
	PredULT Predicate = iota // unsigned less-than
	PredEQ                   // equal
)

func (p Predicate) String() string {
	switch p {
	case PredULT:
		return "ult"
	case PredEQ:
		return "eq"
	default:
		return "?"
	}
}

// BinOpKind is a scalar arithmetic opcode.
type BinOpKind int

const (
	BinAdd BinOpKind = iota
	BinSub
)

func (k BinOpKind) String() string {
	if k == BinAdd {
		return "add"
	}
	return "sub"
}
