package ir

// The functions in this file are small, stateless instruction constructors —
// the Go equivalent of LLVM's IRBuilder::Create* helpers, minus an implicit
// insertion point. Callers append the result to a block themselves (via
// BasicBlock.Append or SetTerminator); keeping insertion explicit keeps the
// rewriters in package sanitizer easy to read top to bottom.

// NewICmp builds an integer comparison instruction.
func NewICmp(name string, pred Predicate, lhs, rhs Value) *ICmp {
	return &ICmp{base: base{Name: name}, Pred: pred, LHS: lhs, RHS: rhs}
}

// NewCondBr builds a conditional branch terminator.
func NewCondBr(cond Value, trueBlock, falseBlock *BasicBlock) *CondBr {
	return &CondBr{Cond: cond, True: trueBlock, False: falseBlock}
}

// NewBr builds an unconditional branch terminator.
func NewBr(target *BasicBlock) *Br {
	return &Br{Target: target}
}

// NewRetVoid builds a void return terminator.
func NewRetVoid() *Ret {
	return &Ret{}
}

// NewCall builds a call to callee (normally an *ExternFunc runtime symbol or
// intrinsic). resultTy should be VoidType{} for the report functions.
func NewCall(name string, callee Value, args []Value, resultTy Type) *Call {
	return &Call{base: base{Name: name}, Callee: callee, Args: args, ResultTy: resultTy}
}

// NewBinOp builds a scalar binary arithmetic instruction.
func NewBinOp(name string, op BinOpKind, lhs, rhs Value, ty Type) *BinOp {
	return &BinOp{base: base{Name: name}, Op: op, LHS: lhs, RHS: rhs, Ty: ty}
}

// NewAtomicExchange builds a sequentially-consistent atomic exchange of *ptr
// with val, producing the previous value.
func NewAtomicExchange(name string, ptr, val Value, ty Type) *AtomicExchange {
	return &AtomicExchange{base: base{Name: name}, Ptr: ptr, Val: val, Ty: ty}
}

// NewAddrSpaceCast builds a pointer address-space cast.
func NewAddrSpaceCast(name string, val Value, toAS AddressSpace, ty Type) *AddrSpaceCast {
	return &AddrSpaceCast{base: base{Name: name}, Val: val, ToAS: toAS, Ty: ty}
}

// NewIndex builds a two-operand indexing instruction (base + index, no
// extra operands — the only shape §4.7 instruments).
func NewIndex(name string, base_ Value, index Value, resultTy Type) *Index {
	return &Index{base: base{Name: name}, Base: base_, IndexVal: index, ResultTy: resultTy}
}

// NewLoad builds a load through ptr.
func NewLoad(name string, ptr Value, addrSpace AddressSpace, resultTy Type) *Load {
	return &Load{base: base{Name: name}, Ptr: ptr, AddrSpace: addrSpace, ResultTy: resultTy}
}

// NewStore builds a store of val through ptr.
func NewStore(val, ptr Value, addrSpace AddressSpace) *Store {
	return &Store{Val: val, Ptr: ptr, AddrSpace: addrSpace}
}

// NewAlloca builds a stack-slot allocation of elemTy.
func NewAlloca(name string, elemTy Type) *Alloca {
	return &Alloca{base: base{Name: name}, ElemTy: elemTy}
}
