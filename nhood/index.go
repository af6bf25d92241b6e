package nhood

import (
	"math"

	"github.com/cpmech/gofem-sph/field"
	"github.com/cpmech/gofem-sph/model"
	"github.com/cpmech/gofem-sph/tensor"
)

// ParticleRef identifies a particle by its owning group's stable
// group_index and its item index within that group.
type ParticleRef struct {
	Group int
	Item  int
}

// cellKey is an integer grid-cell coordinate.
type cellKey struct{ I, J, K int64 }

// bucket pairs the exact cell coordinate with its residents, so that
// hash collisions (different cellKey, same hashed bucket id) never merge
// unrelated cells' particle lists.
type bucket struct {
	cell  cellKey
	items []ParticleRef
}

// Large-prime mixing constants for hashing a 3D cell coordinate, the
// classic choice from spatial-hash SPH literature (Teschner et al.).
const (
	prime1 int64 = 73856093
	prime2 int64 = 19349663
	prime3 int64 = 83492791
)

func hashCell(c cellKey, tableSize int64) int64 {
	h := (c.I*prime1 ^ c.J*prime2 ^ c.K*prime3) % tableSize
	if h < 0 {
		h += tableSize
	}
	return h
}

type groupEntry struct {
	name        string
	pos         field.RealView
	hasPosition bool
	isNeighbor  bool // participates as a candidate neighbor
}

// Index is a uniform 3D spatial hash over the positions of all groups
// loaded from a Model, used to answer radius-bounded neighbor queries.
type Index struct {
	radius    float64
	cellSize  float64
	tableSize int64

	m      *model.Model
	groups []groupEntry // indexed by group_index

	table map[int64][]bucket

	// activation[(query,candidate)] — default true for every pair that
	// isn't explicitly disabled.
	disabled map[[2]int]bool
}

// NewIndex returns an unloaded Index; call SetRadius then Load before
// Update/Neighbors.
func NewIndex() *Index {
	return &Index{disabled: make(map[[2]int]bool)}
}

// SetRadius sets the query radius and derives a cell edge >= r. Fails
// with BadRadiusError if r is non-positive.
func (x *Index) SetRadius(r float64) error {
	if r <= 0 {
		return errBadRadius(r)
	}
	x.radius = r
	x.cellSize = r
	return nil
}

// Radius returns the currently configured query radius.
func (x *Index) Radius() float64 { return x.radius }

// SetActive enables or disables consideration of the (queryGroupIdx,
// candidateGroupIdx) pair during Neighbors. All pairs default to active.
func (x *Index) SetActive(queryGroupIdx, candidateGroupIdx int, active bool) {
	key := [2]int{queryGroupIdx, candidateGroupIdx}
	if active {
		delete(x.disabled, key)
	} else {
		x.disabled[key] = true
	}
}

func (x *Index) isActive(query, candidate int) bool {
	return !x.disabled[[2]int{query, candidate}]
}

// Load records, for every group in m, its position view (if any) and
// whether it participates as a neighbor candidate (skipped if tagged
// "cannot_be_neighbor" or lacking a "position" field).
func (x *Index) Load(m *model.Model) error {
	x.m = m
	n := m.GroupIndexCount()
	x.groups = make([]groupEntry, n)
	for idx := 0; idx < n; idx++ {
		g, err := m.GetGroupByIndex(idx)
		if err != nil || g == nil {
			continue
		}
		entry := groupEntry{name: g.Name()}
		pf, ferr := g.GetVarying("position")
		if ferr == nil && pf.ComponentType() == tensor.Real && pf.Shape().Rank == tensor.Rank1 {
			view, verr := field.AsRealView(pf)
			if verr == nil {
				entry.pos = view
				entry.hasPosition = true
				entry.isNeighbor = !g.HasTag("cannot_be_neighbor")
			}
		}
		x.groups[idx] = entry
	}
	return nil
}

// bucketCount picks a hash-table size comfortably larger than the total
// particle count, so collisions stay rare without being load-bearing for
// correctness (exact cellKey comparison handles collisions regardless).
func (x *Index) bucketCount() int64 {
	total := 0
	for _, ge := range x.groups {
		if ge.hasPosition {
			total += ge.pos.Len()
		}
	}
	n := int64(total)*2 + 17
	if n < 1024 {
		n = 1024
	}
	return n
}

func (x *Index) cellOf(p []float64) cellKey {
	return cellKey{
		I: int64(math.Floor(p[0] / x.cellSize)),
		J: int64(math.Floor(p[1] / x.cellSize)),
		K: int64(math.Floor(p[2] / x.cellSize)),
	}
}

// to3 pads a lower-dimensional position out to 3 components with zeros,
// so 1D/2D simulations still hash into the same 3D grid.
func to3(p []float64) []float64 {
	if len(p) == 3 {
		return p
	}
	out := make([]float64, 3)
	copy(out, p)
	return out
}

// Update rebuilds the hash table from current positions. Must be called
// after every step where positions moved or particles were created or
// destroyed.
func (x *Index) Update() error {
	x.tableSize = x.bucketCount()
	x.table = make(map[int64][]bucket, x.tableSize/2)
	for gi, ge := range x.groups {
		if !ge.hasPosition || !ge.isNeighbor {
			continue
		}
		for i := 0; i < ge.pos.Len(); i++ {
			p, err := ge.pos.GetVector(i)
			if err != nil {
				return err
			}
			cell := x.cellOf(to3(p))
			x.insert(cell, ParticleRef{Group: gi, Item: i})
		}
	}
	return nil
}

func (x *Index) insert(cell cellKey, ref ParticleRef) {
	h := hashCell(cell, x.tableSize)
	buckets := x.table[h]
	for i := range buckets {
		if buckets[i].cell == cell {
			buckets[i].items = append(buckets[i].items, ref)
			x.table[h] = buckets
			return
		}
	}
	x.table[h] = append(buckets, bucket{cell: cell, items: []ParticleRef{ref}})
}

func (x *Index) bucketAt(cell cellKey) []ParticleRef {
	h := hashCell(cell, x.tableSize)
	for _, b := range x.table[h] {
		if b.cell == cell {
			return b.items
		}
	}
	return nil
}

// Visitor is called once per neighbor found (including the query
// particle itself, if within radius of its own position).
type Visitor func(neighborGroup, neighborItem int)

// Neighbors enumerates all particles within the configured radius of
// particle (group, item). Fails with MissingPositionError if the group
// has no usable position field.
func (x *Index) Neighbors(group, item int, visit Visitor) error {
	if group < 0 || group >= len(x.groups) || !x.groups[group].hasPosition {
		return errMissingPosition(groupNameOrIndex(x, group))
	}
	p, err := x.groups[group].pos.GetVector(item)
	if err != nil {
		return err
	}
	return x.NeighborsOfPoint(p, group, visit)
}

// NeighborsOfPoint enumerates all neighbor-eligible particles within
// radius of a free-standing point x0. queryGroup selects which
// activation-table row governs the search (pass -1 to consider every
// candidate group active).
func (x *Index) NeighborsOfPoint(x0 []float64, queryGroup int, visit Visitor) error {
	p3 := to3(x0)
	center := x.cellOf(p3)
	r2 := x.radius * x.radius
	for di := int64(-1); di <= 1; di++ {
		for dj := int64(-1); dj <= 1; dj++ {
			for dk := int64(-1); dk <= 1; dk++ {
				cell := cellKey{center.I + di, center.J + dj, center.K + dk}
				for _, ref := range x.bucketAt(cell) {
					if queryGroup >= 0 && !x.isActive(queryGroup, ref.Group) {
						continue
					}
					q, err := x.groups[ref.Group].pos.GetVector(ref.Item)
					if err != nil {
						return err
					}
					d2 := squaredDist(p3, to3(q))
					if d2 <= r2 {
						visit(ref.Group, ref.Item)
					}
				}
			}
		}
	}
	return nil
}

// PositionOf returns the current position of particle (group, item), for
// callers that need the actual distance behind a neighbor hit (e.g. an
// anti-pileup check using a radius smaller than the index's own).
func (x *Index) PositionOf(group, item int) ([]float64, error) {
	if group < 0 || group >= len(x.groups) || !x.groups[group].hasPosition {
		return nil, errMissingPosition(groupNameOrIndex(x, group))
	}
	return x.groups[group].pos.GetVector(item)
}

func squaredDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func groupNameOrIndex(x *Index, idx int) string {
	if idx >= 0 && idx < len(x.groups) && x.groups[idx].name != "" {
		return x.groups[idx].name
	}
	return "<unknown>"
}

// Permute computes a locality-improving Z-order (Morton) permutation per
// group and applies it via Group.Permute, then re-runs Update.
func (x *Index) Permute(m *model.Model) error {
	n := m.GroupIndexCount()
	for idx := 0; idx < n; idx++ {
		g, err := m.GetGroupByIndex(idx)
		if err != nil || g == nil {
			continue
		}
		pf, ferr := g.GetVarying("position")
		if ferr != nil {
			continue
		}
		view, verr := field.AsRealView(pf)
		if verr != nil {
			continue
		}
		perm, err := x.zorderPermutation(view)
		if err != nil {
			return err
		}
		if err := g.Permute(perm); err != nil {
			return err
		}
	}
	return x.Update()
}

// zorderPermutation returns a permutation of [0,n) that sorts particles
// by the Morton code of their cell coordinate, improving spatial locality
// for subsequent neighbor queries.
func (x *Index) zorderPermutation(pos field.RealView) ([]int, error) {
	n := pos.Len()
	type keyed = struct {
		morton uint64
		idx    int
	}
	ks := make([]keyed, n)
	for i := 0; i < n; i++ {
		p, err := pos.GetVector(i)
		if err != nil {
			return nil, err
		}
		cell := x.cellOf(to3(p))
		ks[i] = keyed{morton: mortonCode(cell), idx: i}
	}
	sortKeyed(ks)
	perm := make([]int, n)
	for i, k := range ks {
		perm[i] = k.idx
	}
	return perm, nil
}

func sortKeyed(ks []struct {
	morton uint64
	idx    int
}) {
	// simple in-place insertion sort, keeping this file free of a sort import
	for i := 1; i < len(ks); i++ {
		for j := i; j > 0 && ks[j].morton < ks[j-1].morton; j-- {
			ks[j], ks[j-1] = ks[j-1], ks[j]
		}
	}
}

// mortonCode interleaves the bits of three (shifted-to-unsigned) cell
// coordinates into a Z-order curve key.
func mortonCode(c cellKey) uint64 {
	bias := int64(1 << 20)
	return spread(uint64(c.I+bias))<<2 | spread(uint64(c.J+bias))<<1 | spread(uint64(c.K+bias))
}

func spread(v uint64) uint64 {
	v &= 0x1fffff
	v = (v | v<<32) & 0x1f00000000ffff
	v = (v | v<<16) & 0x1f0000ff0000ff
	v = (v | v<<8) & 0x100f00f00f00f00f
	v = (v | v<<4) & 0x10c30c30c30c30c3
	v = (v | v<<2) & 0x1249249249249249
	return v
}
