package scheme

import "math"

// ReduceOp is the commutative-associative combinator a reduction uses to
// merge thread-local partials with each other and with the target field.
type ReduceOp int

const (
	ReduceSum ReduceOp = iota
	ReduceMin
	ReduceMax
)

func identity(op ReduceOp) float64 {
	switch op {
	case ReduceSum:
		return 0
	case ReduceMin:
		return math.Inf(1)
	case ReduceMax:
		return math.Inf(-1)
	}
	return 0
}

func combine2(op ReduceOp, a, b float64) float64 {
	switch op {
	case ReduceSum:
		return a + b
	case ReduceMin:
		return math.Min(a, b)
	case ReduceMax:
		return math.Max(a, b)
	}
	return a
}

// Reduction holds one accumulator per worker thread, as sized at
// parallel-region entry, and merges them under a single combine step at
// region exit per spec §4.E/§5.
type Reduction struct {
	op       ReduceOp
	partials []float64
}

// NewReduction allocates a reduction with one accumulator per worker,
// initialised to the operation's identity element.
func NewReduction(op ReduceOp, workers int) *Reduction {
	r := &Reduction{op: op, partials: make([]float64, workers)}
	for i := range r.partials {
		r.partials[i] = identity(op)
	}
	return r
}

// Accumulate folds v into worker id's thread-local partial. Safe to call
// concurrently across distinct worker ids (distinct slots); never safe
// for the same id from two goroutines.
func (r *Reduction) Accumulate(worker int, v float64) {
	r.partials[worker] = combine2(r.op, r.partials[worker], v)
}

// Combine merges all per-thread partials into a single value under the
// reduction's op. This is the "mutual exclusion" combine step of spec
// §4.E; since it runs after ParallelFor's barrier, no locking is needed
// here — the barrier already serializes it against Accumulate.
func (r *Reduction) Combine() float64 {
	acc := identity(r.op)
	for _, p := range r.partials {
		acc = combine2(r.op, acc, p)
	}
	return acc
}

// MergeInto folds Combine()'s result into *target using the reduction's
// op (the "merges the combined value into the target, accumulating with
// the same op" step of spec §4.E).
func (r *Reduction) MergeInto(target *float64) {
	*target = combine2(r.op, *target, r.Combine())
}
