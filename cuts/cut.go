//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

// Package cuts implements priority cuts: bounded-size subsets of a
// node's transitive fanin sufficient to reconstruct the node's
// function, stored per node in capacity-bounded, dominance-filtered
// sets.
package cuts

import (
	"fmt"
	"math/bits"
)

// MaxLeaves is the hard bound on the number of leaves per cut.
const MaxLeaves = 16

// Data is the algorithm payload carried by every cut.
type Data struct {
	// Delay and Flow order cuts during enumeration.
	Delay float64
	Flow  float64

	// Ignore excludes the cut from gate matching: trivial cuts, cuts
	// wider than the library fanin, and unmatched cuts.
	Ignore bool

	// Match indexes the owning node's match list, -1 when unmatched.
	Match int32
}

// Cut is a set of leaf node indices stored in ascending order in a
// fixed-capacity inline array, together with the function literal of
// the node's function restricted to the leaves.
type Cut struct {
	leaves [MaxLeaves]uint32
	size   int
	sign   uint64

	// Func is the truth table cache literal of the cut function.
	Func uint32

	Data Data
}

// SetLeaves initializes the cut from an ascending leaf index slice.
func (c *Cut) SetLeaves(leaves []uint32) {
	if len(leaves) > MaxLeaves {
		panic(fmt.Sprintf("cuts: %d leaves exceed the cut bound", len(leaves)))
	}
	c.size = copy(c.leaves[:], leaves)
	c.sign = 0
	for _, l := range leaves {
		c.sign |= 1 << (l & 63)
	}
}

// Size returns the number of leaves.
func (c *Cut) Size() int {
	return c.size
}

// Leaves returns the leaf indices in ascending order. The slice
// aliases the cut and must not be modified.
func (c *Cut) Leaves() []uint32 {
	return c.leaves[:c.size]
}

// Signature returns the 64-bit leaf-set signature used for fast
// subset filtering.
func (c *Cut) Signature() uint64 {
	return c.sign
}

// Dominates reports whether the cut's leaves are a subset of the
// other cut's leaves.
func (c *Cut) Dominates(o *Cut) bool {
	if c.size > o.size || c.sign&^o.sign != 0 {
		return false
	}
	j := 0
	for i := 0; i < c.size; i++ {
		for j < o.size && o.leaves[j] < c.leaves[i] {
			j++
		}
		if j == o.size || o.leaves[j] != c.leaves[i] {
			return false
		}
		j++
	}
	return true
}

// Merge computes the leaf-set union of c and o into out. It fails
// when the union exceeds limit leaves. The payload of out is reset.
func (c *Cut) Merge(o *Cut, out *Cut, limit int) bool {
	// Cheap signature-based reject before the full union.
	if c.size+o.size > limit && bits.OnesCount64(c.sign|o.sign) > limit {
		return false
	}

	var leaves [MaxLeaves]uint32
	i, j, n := 0, 0, 0
	for i < c.size && j < o.size {
		if n == limit {
			return false
		}
		switch {
		case c.leaves[i] < o.leaves[j]:
			leaves[n] = c.leaves[i]
			i++
		case c.leaves[i] > o.leaves[j]:
			leaves[n] = o.leaves[j]
			j++
		default:
			leaves[n] = c.leaves[i]
			i++
			j++
		}
		n++
	}
	for ; i < c.size; i++ {
		if n == limit {
			return false
		}
		leaves[n] = c.leaves[i]
		n++
	}
	for ; j < o.size; j++ {
		if n == limit {
			return false
		}
		leaves[n] = o.leaves[j]
		n++
	}

	out.SetLeaves(leaves[:n])
	out.Func = 0
	out.Data = Data{Match: -1}
	return true
}

func (c *Cut) String() string {
	return fmt.Sprintf("{%v}", c.Leaves())
}
