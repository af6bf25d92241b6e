package scheme

import "github.com/cpmech/gofem-sph/nhood"

// neighborListCapacity is the small reserved capacity per per-group
// inner list (spec §9 "Neighbor-list storage"), amortising growth across
// the typical SPH neighborhood size (a few dozen particles).
const neighborListCapacity = 100

// Scratch is one worker's reusable neighbor-gathering buffer: a list of
// neighbor item indices per candidate group, cleared but not
// reallocated between particles.
type Scratch struct {
	perGroup map[int][]int
	order    []int // every group gathered so far, in first-seen order
}

// NewScratch returns an empty per-worker scratch buffer.
func NewScratch() *Scratch {
	return &Scratch{perGroup: make(map[int][]int)}
}

// Gather queries idx for neighbors of (group, item) and buckets them by
// neighbor group index, reusing previously allocated slices.
func (s *Scratch) Gather(idx *nhood.Index, group, item int) error {
	s.Reset()
	return idx.Neighbors(group, item, func(ng, ni int) {
		lst, ok := s.perGroup[ng]
		if !ok {
			lst = make([]int, 0, neighborListCapacity)
			s.order = append(s.order, ng)
		}
		s.perGroup[ng] = append(lst, ni)
	})
}

// Reset clears every inner list's length (not its capacity) ahead of the
// next particle's gather.
func (s *Scratch) Reset() {
	for _, g := range s.order {
		s.perGroup[g] = s.perGroup[g][:0]
	}
}

// Items returns the buffered neighbor item indices in candidate group g
// (empty if none were gathered).
func (s *Scratch) Items(g int) []int { return s.perGroup[g] }

// Groups returns every candidate group index gathered since the scratch
// was created, in first-seen order; groups the last Gather did not reach
// have empty Items.
func (s *Scratch) Groups() []int { return s.order }

// ScratchPool hands out one Scratch per worker id, sized at parallel
// region entry (spec §9).
type ScratchPool struct {
	scratches []*Scratch
}

// NewScratchPool allocates workers Scratch buffers.
func NewScratchPool(workers int) *ScratchPool {
	p := &ScratchPool{scratches: make([]*Scratch, workers)}
	for i := range p.scratches {
		p.scratches[i] = NewScratch()
	}
	return p
}

// For returns the Scratch belonging to worker id.
func (p *ScratchPool) For(worker int) *Scratch { return p.scratches[worker] }
