// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package scheme implements the stateful "scheme" runtime contract of
// spec §4.E: field requirement declaration, group selection/loading, and
// the fork/join parallel-for used by every procedure.
//
// Grounded on the fan-out-over-a-channel worker pool pattern from
// other_examples' particle-swarm optimizer (pso/swarm.go), generalized
// from "one flat population" to "serial over active groups, parallel
// over particles within a group" per spec §5.
package scheme

import (
	"runtime"
	"sort"
	"sync"

	"github.com/cpmech/gofem-sph/model"
)

// Scheme is the interface every concrete scheme (e.g. scheme/sesph)
// implements.
type Scheme interface {
	// Require declares every global/uniform/varying field the scheme
	// will touch. Must be idempotent.
	Require(m *model.Model) error
	// Load snapshots typed views into required fields and recomputes the
	// set of active groups per selector. Must be called whenever group
	// membership or field storage may have changed.
	Load(m *model.Model) error
}

// Selector picks groups by type and a required superset of tags.
type Selector struct {
	Type string
	Tags []string
}

// GroupHandle is a resolved (group_index, *Group) pair produced by
// SelectGroups, stable until the next Load.
type GroupHandle struct {
	Index int
	Group *model.Group
}

// SelectGroups returns, in ascending group_index order (serial iteration
// order per spec §5), every group matching sel.
func SelectGroups(m *model.Model, sel Selector) []GroupHandle {
	var out []GroupHandle
	n := m.GroupIndexCount()
	for idx := 0; idx < n; idx++ {
		g, err := m.GetGroupByIndex(idx)
		if err != nil || g == nil {
			continue
		}
		if g.Type() != sel.Type {
			continue
		}
		if !hasAllTags(g, sel.Tags) {
			continue
		}
		out = append(out, GroupHandle{Index: idx, Group: g})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func hasAllTags(g *model.Group, tags []string) bool {
	for _, t := range tags {
		if !g.HasTag(t) {
			return false
		}
	}
	return true
}

// NumWorkers is the process-wide worker-pool size, chosen once at
// process start the way gofem sizes MPI-free, single-process runs off
// runtime.NumCPU. Per spec §5 it is fixed for the duration of a parallel
// region and used to size per-thread scratch.
var NumWorkers = runtime.NumCPU()

// ParallelFor runs body(workerID, i) for i in [0,n) across a fixed pool
// of NumWorkers goroutines, blocking until every index has been
// processed (the fork/join barrier of spec §5). body must write only to
// its own particle's slot and to thread-local accumulators indexed by
// workerID.
func ParallelFor(n int, body func(workerID, i int)) {
	if n == 0 {
		return
	}
	workers := NumWorkers
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	work := make(chan int, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := range work {
				body(id, i)
			}
		}(w)
	}
	for i := 0; i < n; i++ {
		work <- i
	}
	close(work)
	wg.Wait()
}
