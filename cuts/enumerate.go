//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

package cuts

import (
	"github.com/okarvonen/techmap/network"
	"github.com/okarvonen/techmap/tt"
)

// Params configures cut enumeration.
type Params struct {
	// CutSize is the maximum number of leaves for a cut.
	CutSize int

	// CutLimit is the maximum number of priority cuts per node.
	CutLimit int

	// MinimizeTruth drops leaves the cut function does not depend on.
	MinimizeTruth bool
}

// NewParams returns enumeration parameters with default values.
func NewParams() Params {
	return Params{
		CutSize:       5,
		CutLimit:      32,
		MinimizeTruth: true,
	}
}

// Stats collects enumeration counters.
type Stats struct {
	// TotalTuples is the number of fanin cut combinations tried.
	TotalTuples uint64
	// TotalCuts is the number of cuts kept over all nodes.
	TotalCuts uint64
}

// NetworkCuts holds the enumerated cut sets of every network node and
// the shared truth table cache the cut functions live in.
type NetworkCuts struct {
	sets  []*Set
	cache *tt.Cache
}

// Cuts returns the cut set of the node.
func (nc *NetworkCuts) Cuts(node int) *Set {
	return nc.sets[node]
}

// Cache returns the shared truth table cache.
func (nc *NetworkCuts) Cache() *tt.Cache {
	return nc.cache
}

// TruthTable returns the function of the cut over its leaves.
func (nc *NetworkCuts) TruthTable(c *Cut) tt.TT {
	return nc.cache.Lookup(c.Func)
}

type enumerator struct {
	ntk   *network.Network
	ps    Params
	st    *Stats
	nc    *NetworkCuts
	lcuts []*Set
}

// Enumerate computes the priority cuts of every node in one
// topological pass. Constants get a zero cut, primary inputs a unit
// cut; internal nodes merge one cut per fanin, bounded by the cut
// size, filtered by dominance and truncated to the cut limit, with
// the trivial unit cut appended last.
func Enumerate(ntk *network.Network, ps Params, st *Stats) *NetworkCuts {
	if st == nil {
		st = &Stats{}
	}
	e := &enumerator{
		ntk: ntk,
		ps:  ps,
		st:  st,
		nc: &NetworkCuts{
			sets:  make([]*Set, ntk.Size()),
			cache: tt.NewCache(),
		},
	}

	for n := 0; n < ntk.Size(); n++ {
		e.nc.sets[n] = NewSet(ps.CutLimit)
		switch {
		case ntk.IsConstant(n):
			e.addZeroCut(n)
		case ntk.IsPI(n):
			e.addUnitCut(n)
		case ntk.FaninCount(n) == 2:
			e.mergeCuts2(n)
		default:
			e.mergeCuts(n)
		}
		st.TotalCuts += uint64(e.nc.sets[n].Size())
	}
	return e.nc
}

func (e *enumerator) addZeroCut(n int) {
	var c Cut
	c.SetLeaves(nil)
	c.Func = tt.LitConst0
	c.Data = Data{Ignore: true, Match: -1}
	e.nc.sets[n].Add(&c)
}

func (e *enumerator) addUnitCut(n int) {
	var c Cut
	c.SetLeaves([]uint32{uint32(n)})
	c.Func = tt.LitVar0
	c.Data = Data{Match: -1}
	e.nc.sets[n].Add(&c)
}

// mergeCuts2 is the fast path for 2-input nodes: a plain nested loop
// over the two fanin cut sets, functionally identical to the general
// mixed-radix path.
func (e *enumerator) mergeCuts2(n int) {
	c0 := e.nc.sets[e.ntk.Fanin(n, 0).Node()]
	c1 := e.nc.sets[e.ntk.Fanin(n, 1).Node()]
	rcuts := e.nc.sets[n]

	e.st.TotalTuples += uint64(c0.Size()) * uint64(c1.Size())

	var newCut Cut
	vcuts := make([]*Cut, 2)
	for i := 0; i < c0.Size(); i++ {
		for j := 0; j < c1.Size(); j++ {
			if !c0.At(i).Merge(c1.At(j), &newCut, e.ps.CutSize) {
				continue
			}
			if rcuts.IsDominated(&newCut) {
				continue
			}
			vcuts[0] = c0.At(i)
			vcuts[1] = c1.At(j)
			newCut.Func = e.computeTruthTable(n, vcuts, &newCut)
			e.computeCutData(n, &newCut)

			rcuts.Insert(&newCut, SortDelay)
		}
	}

	rcuts.Limit(e.ps.CutLimit - 1)

	if rcuts.Size() == 0 || rcuts.Size() > 1 || rcuts.Best().Size() > 1 {
		e.addUnitCut(n)
	}
}

// mergeCuts is the general path for k-input nodes, enumerating the
// k-ary Cartesian product of fanin cut sets with a mixed-radix
// counter.
func (e *enumerator) mergeCuts(n int) {
	fanin := e.ntk.FaninCount(n)
	rcuts := e.nc.sets[n]

	sizes := make([]int, fanin)
	sets := make([]*Set, fanin)
	pairs := uint64(1)
	for i := 0; i < fanin; i++ {
		sets[i] = e.nc.sets[e.ntk.Fanin(n, i).Node()]
		sizes[i] = sets[i].Size()
		pairs *= uint64(sizes[i])
	}
	e.st.TotalTuples += pairs

	if fanin == 1 {
		// Single-fanin nodes copy the fanin cuts with the node's own
		// function composed on top.
		src := sets[0]
		var newCut Cut
		for i := 0; i < src.Size(); i++ {
			newCut = *src.At(i)
			newCut.Func = e.computeTruthTable(n, []*Cut{src.At(i)}, &newCut)
			newCut.Data = Data{Match: -1}
			e.computeCutData(n, &newCut)
			rcuts.Insert(&newCut, SortDelay)
		}
		rcuts.Limit(e.ps.CutLimit - 1)
		e.addUnitCut(n)
		return
	}

	var newCut, tmpCut Cut
	vcuts := make([]*Cut, fanin)

	foreachMixedRadixTuple(sizes, func(idx []int) {
		for i := 0; i < fanin; i++ {
			vcuts[i] = sets[i].At(idx[i])
		}
		if !vcuts[0].Merge(vcuts[1], &newCut, e.ps.CutSize) {
			return
		}
		for i := 2; i < fanin; i++ {
			tmpCut = newCut
			if !vcuts[i].Merge(&tmpCut, &newCut, e.ps.CutSize) {
				return
			}
		}
		if rcuts.IsDominated(&newCut) {
			return
		}
		newCut.Func = e.computeTruthTable(n, vcuts, &newCut)
		e.computeCutData(n, &newCut)

		rcuts.Insert(&newCut, SortDelay)
	})

	rcuts.Limit(e.ps.CutLimit - 1)
	e.addUnitCut(n)
}

// computeTruthTable composes the node function over the fanin cut
// functions expanded to the merged leaf support. With MinimizeTruth
// the cut's leaf set is shrunken to the function's true support.
func (e *enumerator) computeTruthTable(n int, vcuts []*Cut, res *Cut) uint32 {
	fanins := make([]tt.TT, len(vcuts))
	for i, c := range vcuts {
		positions := leafPositions(c, res)
		fanins[i] = e.nc.cache.Lookup(c.Func).Expand(positions, res.Size())
	}
	f := e.ntk.Compute(n, fanins)

	if e.ps.MinimizeTruth {
		shrunk, support := f.MinBase()
		if len(support) != res.Size() {
			leaves := make([]uint32, len(support))
			for i, v := range support {
				leaves[i] = res.Leaves()[v]
			}
			res.SetLeaves(leaves)
			return e.nc.cache.Insert(shrunk)
		}
	}
	return e.nc.cache.Insert(f)
}

// leafPositions returns the positions of sub's leaves within sup's
// leaves. sub's leaf set must be a subset of sup's.
func leafPositions(sub, sup *Cut) []int {
	positions := make([]int, 0, sub.Size())
	j := 0
	for _, l := range sub.Leaves() {
		for sup.Leaves()[j] != l {
			j++
		}
		positions = append(positions, j)
		j++
	}
	return positions
}

// computeCutData estimates the cut's arrival depth and area flow used
// to order cuts during enumeration. The mapper recomputes real costs
// from library matches; these estimates only prioritize which cuts
// survive the capacity bound.
func (e *enumerator) computeCutData(n int, c *Cut) {
	var delay float64
	flow := 1.0
	for _, l := range c.Leaves() {
		best := e.nc.sets[l].Best()
		if best.Data.Delay > delay {
			delay = best.Data.Delay
		}
		flow += best.Data.Flow
	}
	c.Data.Delay = 1 + delay
	fanout := e.ntk.FanoutSize(n)
	if fanout < 1 {
		fanout = 1
	}
	c.Data.Flow = flow / float64(fanout)
	c.Data.Match = -1
}

// foreachMixedRadixTuple enumerates all index tuples with the given
// radices without materializing the product.
func foreachMixedRadixTuple(sizes []int, fn func(idx []int)) {
	idx := make([]int, len(sizes))
	for {
		fn(idx)
		i := 0
		for i < len(sizes) {
			idx[i]++
			if idx[i] < sizes[i] {
				break
			}
			idx[i] = 0
			i++
		}
		if i == len(sizes) {
			return
		}
	}
}
