package ir

// Function is a top-level function in the module. A Function with IsKernel
// true is invoked per work-item on the device (§3 "Kernel function").
type Function struct {
	Name       string
	Args       []*Argument
	Blocks     []*BasicBlock
	IsKernel   bool
	CC         CallingConv
	Parent     *Module
}

// Entry returns the function's entry block, i.e. the first block in
// declaration order. Panics if the function has no blocks, which would mean
// it is a declaration, not a definition — callers only call this on kernel
// definitions.
func (f *Function) Entry() *BasicBlock {
	return f.Blocks[0]
}

// NewBlock creates a new basic block owned by f and appends it to f's block
// list. Used by the rewriters (C7, C8) to create guard/continuation blocks.
func (f *Function) NewBlock(name string) *BasicBlock {
	b := &BasicBlock{Name: name, Parent: f}
	f.Blocks = append(f.Blocks, b)
	return b
}

// Arg returns the argument at index i, matching LLVM's Function::getArg.
func (f *Function) Arg(i int) *Argument {
	return f.Args[i]
}
