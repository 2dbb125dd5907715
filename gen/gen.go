//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

// Package gen builds benchmark logic networks for the technology
// mapper: arithmetic and selection circuits over network.Network.
package gen

import (
	"fmt"

	"github.com/okarvonen/techmap/network"
)

// Adder creates a width-bit ripple-carry adder network with inputs
// a0..aN-1, b0..bN-1 and outputs s0..sN (the last output is the
// carry).
func Adder(width int) *network.Network {
	ntk := network.New()

	a := make([]network.Signal, width)
	b := make([]network.Signal, width)
	for i := 0; i < width; i++ {
		a[i] = ntk.AddInput(fmt.Sprintf("a%d", i))
	}
	for i := 0; i < width; i++ {
		b[i] = ntk.AddInput(fmt.Sprintf("b%d", i))
	}

	// s = a XOR b XOR cin
	// cout = (a AND b) OR (cin AND (a XOR b))
	var cin network.Signal
	for i := 0; i < width; i++ {
		axb := ntk.AddXor(a[i], b[i])
		if i == 0 {
			ntk.AddOutput(axb, fmt.Sprintf("s%d", i))
			cin = ntk.AddAnd(a[i], b[i])
			continue
		}
		s := ntk.AddXor(axb, cin)
		ntk.AddOutput(s, fmt.Sprintf("s%d", i))
		cin = ntk.AddOr(ntk.AddAnd(a[i], b[i]), ntk.AddAnd(cin, axb))
	}
	ntk.AddOutput(cin, fmt.Sprintf("s%d", width))

	return ntk
}

// Comparator creates a width-bit unsigned greater-than comparator
// with one output gt = (a > b).
func Comparator(width int) *network.Network {
	ntk := network.New()

	a := make([]network.Signal, width)
	b := make([]network.Signal, width)
	for i := 0; i < width; i++ {
		a[i] = ntk.AddInput(fmt.Sprintf("a%d", i))
	}
	for i := 0; i < width; i++ {
		b[i] = ntk.AddInput(fmt.Sprintf("b%d", i))
	}

	// gt = a[i] AND !b[i] OR eq[i] AND gt[i-1], from the LSB up.
	gt := ntk.AddAnd(a[0], b[0].Not())
	for i := 1; i < width; i++ {
		bitGT := ntk.AddAnd(a[i], b[i].Not())
		eq := ntk.AddXor(a[i], b[i]).Not()
		gt = ntk.AddOr(bitGT, ntk.AddAnd(eq, gt))
	}
	ntk.AddOutput(gt, "gt")

	return ntk
}

// MuxTree creates a 2^selBits-way one-bit multiplexer: data inputs
// d0..dM-1, select inputs s0..sK-1 and one output y.
func MuxTree(selBits int) *network.Network {
	ntk := network.New()

	data := make([]network.Signal, 1<<selBits)
	for i := range data {
		data[i] = ntk.AddInput(fmt.Sprintf("d%d", i))
	}
	sel := make([]network.Signal, selBits)
	for i := range sel {
		sel[i] = ntk.AddInput(fmt.Sprintf("s%d", i))
	}

	// y = !s AND d0 OR s AND d1, level by level.
	level := data
	for k := 0; k < selBits; k++ {
		next := make([]network.Signal, len(level)/2)
		for i := range next {
			d0 := ntk.AddAnd(sel[k].Not(), level[2*i])
			d1 := ntk.AddAnd(sel[k], level[2*i+1])
			next[i] = ntk.AddOr(d0, d1)
		}
		level = next
	}
	ntk.AddOutput(level[0], "y")

	return ntk
}

// MajorityChain creates a chain of depth 3-input majority nodes over
// three inputs, exercising wide-fanin matching.
func MajorityChain(depth int) *network.Network {
	ntk := network.New()

	a := ntk.AddInput("a")
	b := ntk.AddInput("b")
	c := ntk.AddInput("c")

	m := ntk.AddMaj(a, b, c)
	for i := 1; i < depth; i++ {
		m = ntk.AddMaj(a, m, c.Not())
	}
	ntk.AddOutput(m, "maj")

	return ntk
}
