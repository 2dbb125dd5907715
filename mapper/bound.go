//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

package mapper

import (
	"fmt"
	"sort"

	"github.com/okarvonen/techmap/cell"
	"github.com/okarvonen/techmap/tt"
)

// BoundNode is one node of a mapped network: an instance of a library
// gate over explicit, non-complemented fanin nodes. Inversions are
// separate inverter nodes.
type BoundNode struct {
	// Fanins in gate pin order.
	Fanins []int

	// Fn is the node function over the fanins.
	Fn tt.TT

	// GateID is the bound library gate, or cell.NoGate for constants
	// and primary inputs.
	GateID int

	// Name of a primary input node, empty otherwise.
	Name string
}

// BoundNetwork is the result of technology mapping: a DAG of library
// gate instances. Nodes 0 and 1 are the constant-0 and constant-1
// nodes; primary inputs and gates follow in topological order.
type BoundNetwork struct {
	lib     *cell.Library
	nodes   []BoundNode
	pis     []int
	pos     []int
	poNames []string
}

// NewBoundNetwork creates an empty mapped network over the library,
// holding only the two constant nodes.
func NewBoundNetwork(lib *cell.Library) *BoundNetwork {
	return &BoundNetwork{
		lib: lib,
		nodes: []BoundNode{
			{Fn: tt.Const0(0), GateID: cell.NoGate},
			{Fn: tt.Const1(0), GateID: cell.NoGate},
		},
	}
}

// Library returns the library the network is bound to.
func (bn *BoundNetwork) Library() *cell.Library {
	return bn.lib
}

// AddInput creates a new primary input node.
func (bn *BoundNetwork) AddInput(name string) int {
	idx := len(bn.nodes)
	bn.nodes = append(bn.nodes, BoundNode{
		Fn:     tt.NthVar(1, 0),
		GateID: cell.NoGate,
		Name:   name,
	})
	bn.pis = append(bn.pis, idx)
	return idx
}

// AddGate creates a gate instance over the fanins. The fanins are
// given in gate pin order and must already exist.
func (bn *BoundNetwork) AddGate(fanins []int, fn tt.TT, gateID int) int {
	if fn.Vars != len(fanins) {
		panic(fmt.Sprintf("mapper: gate function arity %d for %d fanins",
			fn.Vars, len(fanins)))
	}
	idx := len(bn.nodes)
	for _, f := range fanins {
		if f >= idx {
			panic(fmt.Sprintf("mapper: fanin %d of node %d not yet created",
				f, idx))
		}
	}
	bn.nodes = append(bn.nodes, BoundNode{
		Fanins: append([]int(nil), fanins...),
		Fn:     fn,
		GateID: gateID,
	})
	return idx
}

// AddOutput registers a primary output.
func (bn *BoundNetwork) AddOutput(node int, name string) {
	bn.pos = append(bn.pos, node)
	bn.poNames = append(bn.poNames, name)
}

// Size returns the number of nodes, constants and inputs included.
func (bn *BoundNetwork) Size() int {
	return len(bn.nodes)
}

// NumPIs returns the number of primary inputs.
func (bn *BoundNetwork) NumPIs() int {
	return len(bn.pis)
}

// NumPOs returns the number of primary outputs.
func (bn *BoundNetwork) NumPOs() int {
	return len(bn.pos)
}

// PO returns the i'th primary output node and name.
func (bn *BoundNetwork) PO(i int) (int, string) {
	return bn.pos[i], bn.poNames[i]
}

// Node returns the node at the index.
func (bn *BoundNetwork) Node(i int) *BoundNode {
	return &bn.nodes[i]
}

// NumGates returns the number of gate instances.
func (bn *BoundNetwork) NumGates() int {
	var count int
	for i := range bn.nodes {
		if bn.nodes[i].GateID != cell.NoGate {
			count++
		}
	}
	return count
}

// Area returns the total area of the gate instances.
func (bn *BoundNetwork) Area() float64 {
	var area float64
	for i := range bn.nodes {
		if id := bn.nodes[i].GateID; id != cell.NoGate {
			area += bn.lib.Gate(id).Area
		}
	}
	return area
}

// GateUsage returns the per-gate instance counts, indexed by gate id.
func (bn *BoundNetwork) GateUsage() map[int]int {
	usage := make(map[int]int)
	for i := range bn.nodes {
		if id := bn.nodes[i].GateID; id != cell.NoGate {
			usage[id]++
		}
	}
	return usage
}

// gateUsageTable renders the usage histogram sorted by descending
// area contribution.
func (bn *BoundNetwork) gateUsageTable() string {
	usage := bn.GateUsage()
	total := bn.Area()

	var rows []usageRow
	var instances int
	for id, count := range usage {
		g := bn.lib.Gate(id)
		area := float64(count) * g.Area
		share := 0.0
		if total > 0 {
			share = area / total
		}
		rows = append(rows, usageRow{
			name:      g.Name,
			instances: count,
			area:      area,
			share:     share,
		})
		instances += count
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].area != rows[j].area {
			return rows[i].area > rows[j].area
		}
		return rows[i].name < rows[j].name
	})
	return usageTable(rows, total, instances)
}

// Simulate evaluates the mapped network for the given primary input
// values and returns the primary output values.
func (bn *BoundNetwork) Simulate(inputs []bool) []bool {
	if len(inputs) != len(bn.pis) {
		panic("mapper: Simulate input count mismatch")
	}
	values := make([]bool, len(bn.nodes))
	values[1] = true
	for i, pi := range bn.pis {
		values[pi] = inputs[i]
	}
	for i := range bn.nodes {
		nd := &bn.nodes[i]
		if nd.GateID == cell.NoGate && len(nd.Fanins) == 0 {
			continue
		}
		var m int
		for j, f := range nd.Fanins {
			if values[f] {
				m |= 1 << j
			}
		}
		values[i] = nd.Fn.Bit(m)
	}
	outs := make([]bool, len(bn.pos))
	for i, po := range bn.pos {
		outs[i] = values[po]
	}
	return outs
}
