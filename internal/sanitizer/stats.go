package sanitizer

// Stats summarizes one Run invocation: how many kernels were touched, how
// many sites were instrumented, and how many were skipped (with a
// diagnostic explaining why).
type Stats struct {
	KernelsVisited int
	ShadowArrays   int
	BoundsChecks   int
	RaceGuards     int
	Skipped        int
}
