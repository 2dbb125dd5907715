//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

package cell

import (
	"github.com/okarvonen/techmap/tt"
)

// MiniLibrary returns a small built-in standard-cell set for tests
// and demos: inverters, a buffer, 2-input NAND/NOR/AND/OR/XOR/XNOR,
// AND-OR-invert and OR-AND-invert cells, and constant cells.
func MiniLibrary() []*Gate {
	a2, b2 := tt.NthVar(2, 0), tt.NthVar(2, 1)
	a3, b3, c3 := tt.NthVar(3, 0), tt.NthVar(3, 1), tt.NthVar(3, 2)
	a4, b4 := tt.NthVar(4, 0), tt.NthVar(4, 1)
	c4, d4 := tt.NthVar(4, 2), tt.NthVar(4, 3)

	return []*Gate{
		NewGate("inv1", tt.NthVar(1, 0).Not(), 1, 0.9),
		NewGate("inv2", tt.NthVar(1, 0).Not(), 2, 1.0),
		NewGate("buf", tt.NthVar(1, 0), 2, 1.0),
		NewGate("nand2", a2.And(b2).Not(), 2, 1.0),
		NewGate("nor2", a2.Or(b2).Not(), 2, 1.4),
		NewGate("and2", a2.And(b2), 3, 1.9),
		NewGate("or2", a2.Or(b2), 3, 2.4),
		NewGate("xor2", a2.Xor(b2), 5, 1.9),
		NewGate("xnor2", a2.Xor(b2).Not(), 5, 2.1),
		NewGate("aoi21", a3.And(b3).Or(c3).Not(), 3, 1.6),
		NewGate("oai21", a3.Or(b3).And(c3).Not(), 3, 1.6),
		NewGate("aoi22", a4.And(b4).Or(c4.And(d4)).Not(), 4, 2.0),
		NewGate("oai22", a4.Or(b4).And(c4.Or(d4)).Not(), 4, 2.0),
		NewGate("zero", tt.Const0(0), 0, 0),
		NewGate("one", tt.Const1(0), 0, 0),
	}
}
