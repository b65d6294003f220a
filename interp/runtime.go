package interp

// OutOfBoundsEvent records one call the interpreter observed to
// report_index_out_of_bounds: which work-item triggered it.
//
// This plays the role the teacher's detector.RaceReport plays for a real
// FastTrack detector — a structured record of a caught violation a test can
// assert against — but it carries only what the sanitizer runtime ABI
// actually passes across this call: nothing here, since
// report_index_out_of_bounds takes no arguments (§4.2).
type OutOfBoundsEvent struct {
	WorkItem int
}

// LocalConflictEvent records one call the interpreter observed to
// report_local_memory_conflict: which work-item made the call, and which
// prior owner (by local id) it was told about.
type LocalConflictEvent struct {
	WorkItem int
	OwnerLID int64
}

// RuntimeDouble is a reference implementation of the three sanitizer-runtime
// entry points (§4.2), standing in for whatever the real device runtime
// would do so the interpreter can run an instrumented kernel start to
// finish. It records every call instead of aborting the dispatch, so a test
// can run a whole scenario and then inspect what was reported.
type RuntimeDouble struct {
	OutOfBounds []OutOfBoundsEvent
	Conflicts   []LocalConflictEvent
}

// NewRuntimeDouble returns a RuntimeDouble with empty event logs.
func NewRuntimeDouble() *RuntimeDouble {
	return &RuntimeDouble{}
}

func (r *RuntimeDouble) reportOutOfBounds(workItem int) {
	r.OutOfBounds = append(r.OutOfBounds, OutOfBoundsEvent{WorkItem: workItem})
}

func (r *RuntimeDouble) reportLocalConflict(workItem int, ownerLID int64) {
	r.Conflicts = append(r.Conflicts, LocalConflictEvent{WorkItem: workItem, OwnerLID: ownerLID})
}

// Clean reports whether the double observed no violations at all.
func (r *RuntimeDouble) Clean() bool {
	return len(r.OutOfBounds) == 0 && len(r.Conflicts) == 0
}
