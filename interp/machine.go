package interp

import (
	"fmt"

	"github.com/kolkov/scsan/ir"
)

// Machine executes one kernel function (already instrumented, or not, the
// interpreter doesn't care) across a fixed population of work-items, one
// instruction at a time, in whatever order Run's schedule names. This plays
// the role the teacher's detector.Detector plays — a small piece of state
// a test drives directly — but there is no shadow memory or vector clock
// here: the interpreter only executes the function's own instructions,
// including whatever shadow-array bookkeeping the sanitizer pass already
// wove into them.
type Machine struct {
	fn      *ir.Function
	runtime *RuntimeDouble

	memory  map[string][]any // named arrays: buffer args and module globals
	scalars map[string]int64 // scalar kernel-launch arguments, shared by every work-item

	items []*WorkItem

	allocSeq int
}

// NewMachine creates a Machine for fn. Every module-scope global fn can see
// is pre-allocated (zeroed) so that a shadow_memset call or a direct access
// has somewhere to land; buffer arguments and scalar arguments must be
// bound explicitly before Spawn, since their sizes and values come from the
// caller, not from the IR.
func NewMachine(fn *ir.Function, runtime *RuntimeDouble) *Machine {
	m := &Machine{
		fn:      fn,
		runtime: runtime,
		memory:  make(map[string][]any),
		scalars: make(map[string]int64),
	}
	for _, g := range fn.Parent.Globals {
		n := g.ArrayLen()
		if n == 0 {
			n = 1
		}
		cells := make([]any, n)
		for i := range cells {
			cells[i] = int64(0)
		}
		m.memory[g.Name] = cells
	}
	return m
}

// BindBuffer gives the buffer argument named argName its backing storage,
// initialized from a copy of data. data itself is not written; the caller
// reads what the kernel wrote through Buffer after Run returns.
func (m *Machine) BindBuffer(argName string, data []int64) {
	cells := make([]any, len(data))
	for i, v := range data {
		cells[i] = v
	}
	m.memory[argName] = cells
}

// Buffer returns the current contents of a bound buffer, for assertions
// after Run returns.
func (m *Machine) Buffer(argName string) []int64 {
	cells := m.memory[argName]
	out := make([]int64, len(cells))
	for i, c := range cells {
		out[i], _ = c.(int64)
	}
	return out
}

// BindScalar gives the scalar argument named argName its value, visible to
// every work-item the Machine spawns.
func (m *Machine) BindScalar(argName string, v int64) {
	m.scalars[argName] = v
}

// Spawn creates numWorkItems fresh work-items at the function's entry
// block, local ids 0..numWorkItems-1, with every argument already resolved
// into the work-item's value scope.
func (m *Machine) Spawn(numWorkItems int) {
	m.items = m.items[:0]
	for lid := 0; lid < numWorkItems; lid++ {
		wi := newWorkItem(lid, m.fn.Entry())
		for _, arg := range m.fn.Args {
			if arg.IsPointer() {
				wi.set(arg.Name, Ptr{Array: arg.Name})
				continue
			}
			wi.set(arg.Name, m.scalars[arg.Name])
		}
		m.items = append(m.items, wi)
	}
}

// Live reports whether work-item id has not yet reached its terminator.
func (m *Machine) Live(id int) bool {
	return id >= 0 && id < len(m.items) && !m.items[id].Terminated
}

// AllTerminated reports whether every spawned work-item has finished.
func (m *Machine) AllTerminated() bool {
	for _, wi := range m.items {
		if !wi.Terminated {
			return false
		}
	}
	return true
}

// Step executes exactly one instruction of work-item id. It is the unit the
// caller's schedule is built from; interleaving Step calls across different
// work-item ids is how a scheduling scenario is expressed without any real
// concurrency.
func (m *Machine) Step(id int) {
	wi := m.items[id]
	if wi.Terminated {
		return
	}
	inst := wi.frame.block.Insts[wi.frame.pc]
	wi.frame.pc++
	m.exec(wi, inst)
}

// Run drives every work-item named in schedule, in order, one instruction
// each time its id appears, until the schedule is exhausted. A schedule
// entry for an already-terminated work-item is a no-op, which lets callers
// build a schedule by simple round-robin without tracking per-item length.
func (m *Machine) Run(schedule []int) {
	for _, id := range schedule {
		if m.Live(id) {
			m.Step(id)
		}
	}
}

// RunToCompletion steps every work-item round-robin, one instruction each,
// until all have reached their terminator. Since no work-item ever blocks,
// this always terminates for a well-formed function (every block structure
// the pass produces is acyclic: straight-line code plus the guard diamonds
// it inserts, §3).
func (m *Machine) RunToCompletion() {
	for !m.AllTerminated() {
		for id := range m.items {
			if m.Live(id) {
				m.Step(id)
			}
		}
	}
}

func (m *Machine) exec(wi *WorkItem, inst ir.Instruction) {
	switch v := inst.(type) {
	case *ir.Alloca:
		key := fmt.Sprintf("%%alloc.%d.%s", wi.LocalID, ir.Name(v))
		m.memory[key] = []any{nil}
		wi.set(ir.Name(v), Ptr{Array: key})
	case *ir.Load:
		ptr := wi.lookupPtr(v.Ptr)
		wi.set(ir.Name(v), m.memory[ptr.Array][ptr.Offset])
	case *ir.Store:
		ptr := wi.lookupPtr(v.Ptr)
		m.memory[ptr.Array][ptr.Offset] = m.operand(wi, v.Val)
	case *ir.Index:
		base := wi.lookupPtr(v.Base)
		idx := wi.lookupInt(v.IndexVal)
		wi.set(ir.Name(v), Ptr{Array: base.Array, Offset: base.Offset + idx})
	case *ir.AddrSpaceCast:
		wi.set(ir.Name(v), wi.lookupPtr(v.Val))
	case *ir.BinOp:
		lhs, rhs := wi.lookupInt(v.LHS), wi.lookupInt(v.RHS)
		var result int64
		if v.Op == ir.BinAdd {
			result = lhs + rhs
		} else {
			result = lhs - rhs
		}
		wi.set(ir.Name(v), result)
	case *ir.ICmp:
		lhs, rhs := wi.lookupInt(v.LHS), wi.lookupInt(v.RHS)
		var result bool
		if v.Pred == ir.PredEQ {
			result = lhs == rhs
		} else {
			result = uint64(lhs) < uint64(rhs)
		}
		wi.set(ir.Name(v), boolToInt(result))
	case *ir.AtomicExchange:
		ptr := wi.lookupPtr(v.Ptr)
		old := m.memory[ptr.Array][ptr.Offset]
		m.memory[ptr.Array][ptr.Offset] = m.operand(wi, v.Val)
		wi.set(ir.Name(v), old)
	case *ir.Call:
		m.execCall(wi, v)
	case *ir.Br:
		wi.frame = frame{block: v.Target, pc: 0}
	case *ir.CondBr:
		if wi.lookupInt(v.Cond) != 0 {
			wi.frame = frame{block: v.True, pc: 0}
		} else {
			wi.frame = frame{block: v.False, pc: 0}
		}
	case *ir.Ret:
		wi.Terminated = true
	default:
		panic(fmt.Sprintf("interp: unhandled instruction %T", inst))
	}
}

// operand resolves v to whatever the work-item currently holds for it — an
// int64 for a scalar, a Ptr for a reloaded pointer. Unlike lookupInt/
// lookupPtr it doesn't assume which kind the caller expects, since a Store
// or AtomicExchange's value operand can be either.
func (m *Machine) operand(wi *WorkItem, v ir.Value) any {
	if c, ok := v.(ir.ConstInt); ok {
		return c.Val
	}
	return wi.values[ir.Name(v)]
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (m *Machine) execCall(wi *WorkItem, call *ir.Call) {
	callee, ok := call.Callee.(*ir.ExternFunc)
	if !ok {
		panic("interp: calls to anything but a declared extern are not supported")
	}
	switch callee.Name {
	case "get_local_id":
		wi.set(ir.Name(call), int64(wi.LocalID))
	case "report_index_out_of_bounds":
		m.runtime.reportOutOfBounds(wi.LocalID)
	case "report_local_memory_conflict":
		owner := wi.lookupInt(call.Args[0])
		m.runtime.reportLocalConflict(wi.LocalID, owner)
	case "shadow_memset":
		ptr := wi.lookupPtr(call.Args[0])
		count := wi.lookupInt(call.Args[1])
		value := wi.lookupInt(call.Args[2])
		cells := m.memory[ptr.Array]
		for i := int64(0); i < count; i++ {
			cells[ptr.Offset+i] = value
		}
	default:
		panic("interp: unrecognized runtime symbol " + callee.Name)
	}
}
