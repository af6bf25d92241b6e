package model

import (
	"sort"

	"github.com/cpmech/gofem-sph/field"
	"github.com/cpmech/gofem-sph/tensor"
)

// Group is a named, typed, tagged collection of particles plus its
// uniform fields. Varying field storage is owned exclusively by the
// Group; fields handed out by GetUniform/GetVarying are non-owning
// references to that storage, and resize/permute/create/destroy update
// them in place.
//
// Sources are not stored on Group itself (unlike the original C++
// design note in spec §9) to avoid a model<->driver import cycle; the
// driver package owns the list of sources targeting a group, each
// holding a non-owning *Group reference, per spec §9's guidance on
// back-references.
type Group struct {
	name  string
	typ   string
	tags  map[string]bool
	items int

	uniformNames []string
	varyingNames []string
	uniforms     map[string]field.Field
	varyings     map[string]field.Field

	dirty bool
}

func newGroup(name, typ string) *Group {
	return &Group{
		name:     name,
		typ:      typ,
		tags:     make(map[string]bool),
		uniforms: make(map[string]field.Field),
		varyings: make(map[string]field.Field),
	}
}

// Name returns the group's unique-within-model name.
func (g *Group) Name() string { return g.name }

// Type returns the group's type classification (e.g. "fluid", "boundary").
func (g *Group) Type() string { return g.typ }

// ItemCount returns the current number of particles in the group.
func (g *Group) ItemCount() int { return g.items }

// Dirty reports whether items have been created, destroyed or permuted
// since the flag was last cleared.
func (g *Group) Dirty() bool { return g.dirty }

// ClearDirty resets the dirty flag; called by the driver after it has
// reloaded the neighbor index and schemes.
func (g *Group) ClearDirty() { g.dirty = false }

// AddTag adds a free-form label to the group.
func (g *Group) AddTag(tag string) { g.tags[tag] = true }

// RemoveTag removes a label from the group.
func (g *Group) RemoveTag(tag string) { delete(g.tags, tag) }

// HasTag reports whether the group carries the given label.
func (g *Group) HasTag(tag string) bool { return g.tags[tag] }

// Tags returns a sorted snapshot of the group's tags.
func (g *Group) Tags() []string {
	out := make([]string, 0, len(g.tags))
	for t := range g.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (g *Group) fieldExists(name string) (field.Field, bool) {
	if f, ok := g.uniforms[name]; ok {
		return f, true
	}
	if f, ok := g.varyings[name]; ok {
		return f, true
	}
	return nil, false
}

func sameType(f field.Field, ttype tensor.TensorType) bool {
	return f.ComponentType() == ttype.Ctype && f.Shape() == ttype.Shape
}

// AddUniform declares a group-scoped uniform field (length 1). If a
// field with the same name already exists with the same type/shape it is
// returned unchanged (idempotent); a mismatched existing field fails
// with FieldExistsError.
func (g *Group) AddUniform(name string, ttype tensor.TensorType) (field.Field, error) {
	if !validIdentifier(name) {
		return nil, errInvalidIdentifier(name)
	}
	if existing, ok := g.fieldExists(name); ok {
		if sameType(existing, ttype) {
			if _, isUniform := g.uniforms[name]; isUniform {
				return existing, nil
			}
		}
		return nil, errFieldExists(name)
	}
	f := field.NewField(ttype, 1)
	g.uniforms[name] = f
	g.uniformNames = append(g.uniformNames, name)
	return f, nil
}

// AddVarying declares a per-particle varying field, sized to the
// group's current item count. Idempotent the same way as AddUniform.
func (g *Group) AddVarying(name string, ttype tensor.TensorType) (field.Field, error) {
	if !validIdentifier(name) {
		return nil, errInvalidIdentifier(name)
	}
	if existing, ok := g.fieldExists(name); ok {
		if sameType(existing, ttype) {
			if _, isVarying := g.varyings[name]; isVarying {
				return existing, nil
			}
		}
		return nil, errFieldExists(name)
	}
	f := field.NewField(ttype, g.items)
	g.varyings[name] = f
	g.varyingNames = append(g.varyingNames, name)
	return f, nil
}

// GetUniform returns the named uniform field view, or an error if it
// does not exist.
func (g *Group) GetUniform(name string) (field.Field, error) {
	if f, ok := g.uniforms[name]; ok {
		return f, nil
	}
	return nil, errUnknownField(name)
}

// GetVarying returns the named varying field view, or an error if it
// does not exist.
func (g *Group) GetVarying(name string) (field.Field, error) {
	if f, ok := g.varyings[name]; ok {
		return f, nil
	}
	return nil, errUnknownField(name)
}

// HasVarying reports whether a varying field of the given name and
// tensor type exists.
func (g *Group) HasVarying(name string, ttype tensor.TensorType) bool {
	f, ok := g.varyings[name]
	return ok && sameType(f, ttype)
}

// RemoveField removes a field (uniform or varying) by name.
func (g *Group) RemoveField(name string) error {
	if _, ok := g.uniforms[name]; ok {
		delete(g.uniforms, name)
		g.uniformNames = removeName(g.uniformNames, name)
		return nil
	}
	if _, ok := g.varyings[name]; ok {
		delete(g.varyings, name)
		g.varyingNames = removeName(g.varyingNames, name)
		return nil
	}
	return errUnknownField(name)
}

func removeName(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// UniformNames returns field-iteration order for uniform fields.
func (g *Group) UniformNames() []string { return append([]string(nil), g.uniformNames...) }

// VaryingNames returns field-iteration order for varying fields.
func (g *Group) VaryingNames() []string { return append([]string(nil), g.varyingNames...) }

// CreateItems appends n particles, returning their (contiguous,
// monotonically assigned) index range [first, first+n).
func (g *Group) CreateItems(n int) (first, count int, err error) {
	if n < 0 {
		return 0, 0, errBadArgument("cannot create a negative number of items: %d", n)
	}
	first = g.items
	if n == 0 {
		return first, 0, nil
	}
	newSize := g.items + n
	for name, f := range g.varyings {
		if rerr := f.Resize(newSize); rerr != nil {
			return 0, 0, rerr
		}
		_ = name
	}
	g.items = newSize
	g.dirty = true
	return first, n, nil
}

// DestroyItems removes the given indices, compacting every varying
// field. It returns the permutation applied to surviving items (indexed
// by new position, giving the old index) so external state (e.g. a
// neighbor index) can follow along.
func (g *Group) DestroyItems(indices []int) (survivorsOldIndex []int, err error) {
	remove := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= g.items {
			return nil, errBadArgument("index %d out of range [0,%d)", idx, g.items)
		}
		remove[idx] = true
	}
	perm := make([]int, 0, g.items-len(remove))
	for i := 0; i < g.items; i++ {
		if !remove[i] {
			perm = append(perm, i)
		}
	}
	newSize := len(perm)
	for _, f := range g.varyings {
		compacted, cerr := compactField(f, perm)
		if cerr != nil {
			return nil, cerr
		}
		_ = compacted
	}
	g.items = newSize
	g.dirty = true
	return perm, nil
}

// compactField rebuilds f to contain only the tensors named by keep
// (in order). Since Permute requires a full permutation of the current
// size, it permutes with keep followed by the remaining (destroyed)
// indices, then truncates to len(keep); this relies on Resize keeping
// the prefix (see storage.Resize: it copies the first n entries).
func compactField(f field.Field, keep []int) (field.Field, error) {
	oldSize := f.Size()
	full := make([]int, 0, oldSize)
	kept := make(map[int]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}
	full = append(full, keep...)
	for i := 0; i < oldSize; i++ {
		if !kept[i] {
			full = append(full, i)
		}
	}
	if err := f.Permute(full); err != nil {
		return nil, err
	}
	if err := f.Resize(len(keep)); err != nil {
		return nil, err
	}
	return f, nil
}

// Resize resizes every varying field to n, without regard to item
// provenance (exposed for bulk pre-allocation; CreateItems/DestroyItems
// resize the fields themselves).
func (g *Group) Resize(n int) error {
	if n < 0 {
		return errBadArgument("cannot resize to negative length %d", n)
	}
	for _, f := range g.varyings {
		if err := f.Resize(n); err != nil {
			return err
		}
	}
	g.items = n
	g.dirty = true
	return nil
}

// Permute applies perm (new[i] = old[perm[i]]) to every varying field
// and sets the dirty flag.
func (g *Group) Permute(perm []int) error {
	if len(perm) != g.items {
		return errBadArgument("permutation length %d does not match item count %d", len(perm), g.items)
	}
	for _, f := range g.varyings {
		if err := f.Permute(perm); err != nil {
			return err
		}
	}
	g.dirty = true
	return nil
}
