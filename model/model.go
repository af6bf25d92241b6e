package model

import (
	"github.com/cpmech/gofem-sph/field"
	"github.com/cpmech/gofem-sph/tensor"
)

// Model owns a Model-wide ordered set of Groups plus global
// (uniform-like) fields. Group insertion order defines group_index, a
// stable integer used throughout the core as a fast key — mirroring
// gofem's Domain, which indexes Nodes/Elements by insertion-stable
// integer ids (fem/domain.go).
type Model struct {
	groupNames []string
	groupByIdx []*Group
	groupIndex map[string]int

	globalNames []string
	globals     map[string]field.Field
}

// NewModel returns an empty Model.
func NewModel() *Model {
	return &Model{
		groupIndex: make(map[string]int),
		globals:    make(map[string]field.Field),
	}
}

// AddGroup creates and registers a new Group, failing with
// GroupExistsError if the name is taken.
func (m *Model) AddGroup(name, typ string) (*Group, error) {
	if !validIdentifier(name) {
		return nil, errInvalidIdentifier(name)
	}
	if _, ok := m.groupIndex[name]; ok {
		return nil, errGroupExists(name)
	}
	g := newGroup(name, typ)
	idx := len(m.groupByIdx)
	m.groupIndex[name] = idx
	m.groupByIdx = append(m.groupByIdx, g)
	m.groupNames = append(m.groupNames, name)
	return g, nil
}

// GetGroup returns the group with the given name.
func (m *Model) GetGroup(name string) (*Group, error) {
	idx, ok := m.groupIndex[name]
	if !ok {
		return nil, errUnknownGroup(name)
	}
	return m.groupByIdx[idx], nil
}

// GetGroupByIndex returns the group at the given stable group_index.
func (m *Model) GetGroupByIndex(idx int) (*Group, error) {
	if idx < 0 || idx >= len(m.groupByIdx) {
		return nil, errUnknownGroup(idx)
	}
	if m.groupByIdx[idx] == nil {
		return nil, errUnknownGroup(idx)
	}
	return m.groupByIdx[idx], nil
}

// GroupIndex returns the stable integer index of the named group.
func (m *Model) GroupIndex(name string) (int, error) {
	idx, ok := m.groupIndex[name]
	if !ok {
		return 0, errUnknownGroup(name)
	}
	return idx, nil
}

// RemoveGroup deletes the named group. Its group_index slot is left as
// a nil tombstone so existing indices held elsewhere (e.g. the neighbor
// index) are never silently repointed at a different group.
func (m *Model) RemoveGroup(name string) error {
	idx, ok := m.groupIndex[name]
	if !ok {
		return errUnknownGroup(name)
	}
	m.groupByIdx[idx] = nil
	delete(m.groupIndex, name)
	for i, n := range m.groupNames {
		if n == name {
			m.groupNames = append(m.groupNames[:i], m.groupNames[i+1:]...)
			break
		}
	}
	return nil
}

// GetGroupCount returns the number of live (non-removed) groups.
func (m *Model) GetGroupCount() int { return len(m.groupNames) }

// GroupNames returns group names in insertion order, skipping removed
// groups.
func (m *Model) GroupNames() []string { return append([]string(nil), m.groupNames...) }

// GroupIndexCount returns the number of group_index slots ever allocated
// (including tombstoned/removed ones); callers that iterate by index
// should range over [0, GroupIndexCount) and skip nil results from
// GetGroupByIndex.
func (m *Model) GroupIndexCount() int { return len(m.groupByIdx) }

// AddGlobal declares a Model-wide global field (length 1), idempotent
// like Group.AddUniform.
func (m *Model) AddGlobal(name string, ttype tensor.TensorType) (field.Field, error) {
	if !validIdentifier(name) {
		return nil, errInvalidIdentifier(name)
	}
	if existing, ok := m.globals[name]; ok {
		if sameType(existing, ttype) {
			return existing, nil
		}
		return nil, errFieldExists(name)
	}
	f := field.NewField(ttype, 1)
	m.globals[name] = f
	m.globalNames = append(m.globalNames, name)
	return f, nil
}

// GetGlobal returns the named global field.
func (m *Model) GetGlobal(name string) (field.Field, error) {
	if f, ok := m.globals[name]; ok {
		return f, nil
	}
	return nil, errUnknownField(name)
}

// GlobalNames returns global field names in declaration order.
func (m *Model) GlobalNames() []string { return append([]string(nil), m.globalNames...) }

// PermuteGroup computes nothing itself; it is a convenience wrapper that
// permutes a single group's varying fields by name.
func (m *Model) PermuteGroup(name string, perm []int) error {
	g, err := m.GetGroup(name)
	if err != nil {
		return err
	}
	return g.Permute(perm)
}
