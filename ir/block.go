package ir

// GuardKind marks a BasicBlock that was synthesized by the sanitizer pass as
// the guarded continuation of a rewrite, and records which rewriter created
// it. The traversal driver (C6, §4.6) uses this to recognize that a block's
// leading instruction has already been instrumented, which is what makes
// re-running the pass on its own output a no-op (§8 invariant 7) without
// needing a general dominance computation.
type GuardKind int

const (
	GuardNone GuardKind = iota
	GuardBounds
	GuardRace
)

// BasicBlock is an ordered list of instructions ending in exactly one
// Terminator once construction is complete.
type BasicBlock struct {
	Name   string
	Insts  []Instruction
	Parent *Function

	// SyntheticGuard is GuardNone for blocks that existed in the original
	// program, and GuardBounds/GuardRace for continuation blocks the pass
	// created (the "then"/"then2" blocks of §4.7/§4.8).
	SyntheticGuard GuardKind
}

func (b *BasicBlock) Type() Type        { return VoidType{} }
func (b *BasicBlock) valueName() string { return b.Name }

// Append adds a non-terminating instruction to the end of the block.
func (b *BasicBlock) Append(inst Instruction) {
	b.Insts = append(b.Insts, inst)
}

// SetTerminator appends t as the block's terminator. The caller is
// responsible for only calling this once per block (invariant: "every block
// has exactly one terminator", §3).
func (b *BasicBlock) SetTerminator(t Terminator) {
	b.Insts = append(b.Insts, t)
}

// Terminator returns the block's terminating instruction, or nil if the
// block is still terminator-free (mid-rewrite).
func (b *BasicBlock) Terminator() Terminator {
	if len(b.Insts) == 0 {
		return nil
	}
	if t, ok := b.Insts[len(b.Insts)-1].(Terminator); ok {
		return t
	}
	return nil
}

// indexOf returns the position of inst in b.Insts, or -1.
func (b *BasicBlock) indexOf(inst Instruction) int {
	for i, cur := range b.Insts {
		if cur == inst {
			return i
		}
	}
	return -1
}

// SpliceFrom moves every instruction of b starting at (and including) from
// into dst, in order, and removes them from b. b is left without those
// instructions — typically terminator-free, ready for the caller to attach a
// new terminator (the guard's conditional branch). This is the Go analogue
// of LLVM's BasicBlock::splice used by the original pass (§4.7 step 2, §4.8
// step 6).
func (b *BasicBlock) SpliceFrom(from Instruction, dst *BasicBlock) bool {
	idx := b.indexOf(from)
	if idx < 0 {
		return false
	}
	dst.Insts = append(dst.Insts, b.Insts[idx:]...)
	b.Insts = b.Insts[:idx]
	dst.Parent = b.Parent
	return true
}
