package interp

import "github.com/kolkov/scsan/ir"

// Ptr is the interpreter's runtime representation of a pointer value: an
// offset into one of the Machine's named memory arrays. Machine resolves
// every buffer argument and module-scope global to one such array, keyed by
// name, so a Ptr never needs to carry an address space — only which array
// and which element.
type Ptr struct {
	Array  string
	Offset int64
}

// frame is the work-item's current position in the function: the block it
// is executing and the index of the next instruction to run.
type frame struct {
	block *ir.BasicBlock
	pc    int
}

// WorkItem is one simulated invocation of a kernel function, analogous to
// the teacher's goroutine.RaceContext: a single thread of execution that the
// Machine steps forward one instruction at a time. Unlike RaceContext it
// carries no vector clock — ordering here comes from the schedule the
// caller feeds to Machine.Run, not from happens-before tracking, since the
// sanitizer's race check is a slot-owner token, not an epoch comparison.
type WorkItem struct {
	LocalID int

	values map[string]any // SSA name -> int64 or Ptr
	frame  frame

	Terminated bool
}

func newWorkItem(localID int, entry *ir.BasicBlock) *WorkItem {
	return &WorkItem{
		LocalID: localID,
		values:  make(map[string]any),
		frame:   frame{block: entry, pc: 0},
	}
}

func (w *WorkItem) set(name string, v any) {
	if name == "" {
		return
	}
	w.values[name] = v
}

func (w *WorkItem) lookupInt(v ir.Value) int64 {
	switch val := v.(type) {
	case ir.ConstInt:
		return val.Val
	default:
		name := ir.Name(v)
		switch r := w.values[name].(type) {
		case int64:
			return r
		case Ptr:
			panic("interp: expected an integer operand, got a pointer for " + name)
		default:
			panic("interp: undefined operand " + name)
		}
	}
}

func (w *WorkItem) lookupPtr(v ir.Value) Ptr {
	if g, ok := v.(*ir.GlobalVariable); ok {
		return Ptr{Array: g.Name}
	}
	name := ir.Name(v)
	r, ok := w.values[name]
	if !ok {
		panic("interp: undefined pointer operand " + name)
	}
	p, ok := r.(Ptr)
	if !ok {
		panic("interp: expected a pointer operand for " + name)
	}
	return p
}
