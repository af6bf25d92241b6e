package scheme

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gofem-sph/model"
)

func Test_runtime01(tst *testing.T) {

	chk.PrintTitle("runtime01: select groups by type and tags")

	m := model.NewModel()
	f1, _ := m.AddGroup("f1", "fluid")
	f1.AddTag("visible")
	_, _ = m.AddGroup("b1", "boundary")
	f2, _ := m.AddGroup("f2", "fluid")
	_ = f2

	handles := SelectGroups(m, Selector{Type: "fluid"})
	chk.IntAssert(len(handles), 2)

	handles = SelectGroups(m, Selector{Type: "fluid", Tags: []string{"visible"}})
	chk.IntAssert(len(handles), 1)
	if handles[0].Group.Name() != "f1" {
		tst.Fatalf("expected f1, got %s", handles[0].Group.Name())
	}
}

func Test_runtime02(tst *testing.T) {

	chk.PrintTitle("runtime02: parallel-for writes only its own slot")

	n := 1000
	out := make([]int, n)
	ParallelFor(n, func(_ int, i int) {
		out[i] = i * 2
	})
	for i := 0; i < n; i++ {
		chk.IntAssert(out[i], i*2)
	}
}

func Test_runtime03(tst *testing.T) {

	chk.PrintTitle("runtime03: sum reduction across workers matches serial sum")

	n := 500
	red := NewReduction(ReduceSum, NumWorkers)
	ParallelFor(n, func(worker, i int) {
		red.Accumulate(worker, float64(i))
	})
	var want float64
	for i := 0; i < n; i++ {
		want += float64(i)
	}
	chk.Scalar(tst, "sum reduction", 1e-9, red.Combine(), want)
}

func Test_runtime04(tst *testing.T) {

	chk.PrintTitle("runtime04: min/max reductions")

	n := 200
	min := NewReduction(ReduceMin, NumWorkers)
	max := NewReduction(ReduceMax, NumWorkers)
	ParallelFor(n, func(worker, i int) {
		v := float64(i) - 100
		min.Accumulate(worker, v)
		max.Accumulate(worker, v)
	})
	chk.Scalar(tst, "min", 1e-9, min.Combine(), -100)
	chk.Scalar(tst, "max", 1e-9, max.Combine(), 99)
}
