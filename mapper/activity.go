//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

package mapper

import (
	"math/bits"
	"math/rand"

	"github.com/okarvonen/techmap/network"
)

// switchingActivity estimates the per-node switching activity with
// bit-parallel random-pattern simulation: the activity of a node with
// signal probability p is 2*p*(1-p), the chance of a toggle between
// two independent patterns. The generator is seeded deterministically
// so repeated mappings of the same network agree.
func switchingActivity(ntk *network.Network, patterns int) []float64 {
	if patterns < 64 {
		patterns = 64
	}
	words := (patterns + 63) / 64
	rng := rand.New(rand.NewSource(0x6d617070))

	values := make([][]uint64, ntk.Size())
	fanins := make([][]uint64, 0, 8)

	for n := 0; n < ntk.Size(); n++ {
		values[n] = make([]uint64, words)
		switch {
		case ntk.IsConstant(n):
			// all zeros
		case ntk.IsPI(n):
			for w := 0; w < words; w++ {
				values[n][w] = rng.Uint64()
			}
		default:
			fanins = fanins[:0]
			for i := 0; i < ntk.FaninCount(n); i++ {
				fanins = append(fanins, values[ntk.Fanin(n, i).Node()])
			}
			simulateNode(ntk, n, fanins, values[n])
		}
	}

	activity := make([]float64, ntk.Size())
	total := float64(words * 64)
	for n := 0; n < ntk.Size(); n++ {
		var ones int
		for _, w := range values[n] {
			ones += bits.OnesCount64(w)
		}
		p := float64(ones) / total
		activity[n] = 2 * p * (1 - p)
	}
	return activity
}

// simulateNode evaluates the node function over the fanin pattern
// words as a sum of the function's true minterms, applying the edge
// complements.
func simulateNode(ntk *network.Network, n int, fanins [][]uint64,
	out []uint64) {

	fn := ntk.Function(n)
	k := ntk.FaninCount(n)

	for w := range out {
		var result uint64
		for mt := 0; mt < 1<<k; mt++ {
			if !fn.Bit(mt) {
				continue
			}
			word := ^uint64(0)
			for i := 0; i < k; i++ {
				v := fanins[i][w]
				if ntk.Fanin(n, i).Compl() {
					v = ^v
				}
				if (mt>>i)&1 == 0 {
					v = ^v
				}
				word &= v
			}
			result |= word
		}
		out[w] = result
	}
}
