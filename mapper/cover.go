//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

package mapper

import (
	"fmt"

	"github.com/okarvonen/techmap/cell"
	"github.com/okarvonen/techmap/tt"
)

// insertBuffers accounts for the buffer cells required by primary
// outputs driven directly by a primary input in positive polarity.
// Without the buffers the reported delay and area would miss the
// mandatory output cell.
func (m *mapping) insertBuffers() {
	if m.bufID == cell.NoGate {
		return
	}
	areaOld := m.area
	var buffers bool

	for i := 0; i < m.ntk.NumPOs(); i++ {
		s, _ := m.ntk.PO(i)
		n := s.Node()
		if !m.ntk.IsConstant(n) && m.ntk.IsPI(n) && !s.Compl() {
			m.area += m.bufArea
			arrival := m.nodes[n].arrival[0] + m.bufDelay
			if arrival > m.delay {
				m.delay = arrival
			}
			buffers = true
		}
	}

	if m.ps.Verbose && buffers {
		m.roundStats("Buffering", areaOld)
	}
}

// finalizeCover materializes the selected cover into a mapped
// network: one gate instance per referenced match, with explicit
// inverter instances where a polarity is derived by negation, and
// buffer instances for outputs driven directly by inputs.
func (m *mapping) finalizeCover() *BoundNetwork {
	res := NewBoundNetwork(m.lib)

	// old2new maps a source node and polarity to the mapped node.
	old2new := make([][2]int, m.ntk.Size())
	for i := range old2new {
		old2new[i] = [2]int{-1, -1}
	}

	for n := 0; n < m.ntk.Size(); n++ {
		nd := &m.nodes[n]

		if m.ntk.IsConstant(n) {
			old2new[n] = [2]int{0, 1}
			continue
		}
		if m.ntk.IsPI(n) {
			old2new[n][0] = res.AddInput(m.ntk.Name(n))
			if nd.mapRefs[1] > 0 {
				old2new[n][1] = res.AddGate([]int{old2new[n][0]},
					tt.NthVar(1, 0).Not(), m.invID)
			}
			continue
		}

		if nd.mapRefs[2] == 0 {
			continue
		}

		phase := 0
		if nd.bestGate[0] == nil {
			phase = 1
		}

		if nd.sameMatch || nd.mapRefs[phase] > 0 {
			old2new[n][phase] = m.createGateNode(res, old2new, n, phase)

			// The derived polarity is an inverter over the gate.
			if nd.sameMatch && nd.mapRefs[phase^1] > 0 {
				old2new[n][phase^1] = res.AddGate(
					[]int{old2new[n][phase]},
					tt.NthVar(1, 0).Not(), m.invID)
			}
		}

		phase ^= 1
		if !nd.sameMatch && nd.mapRefs[phase] > 0 {
			old2new[n][phase] = m.createGateNode(res, old2new, n, phase)
		}
	}

	for i := 0; i < m.ntk.NumPOs(); i++ {
		s, name := m.ntk.PO(i)
		n := s.Node()
		switch {
		case s.Compl():
			res.AddOutput(old2new[n][1], name)
		case !m.ntk.IsConstant(n) && m.ntk.IsPI(n) && m.bufID != cell.NoGate:
			buf := res.AddGate([]int{old2new[n][0]},
				tt.NthVar(1, 0), m.bufID)
			res.AddOutput(buf, name)
		default:
			res.AddOutput(old2new[n][0], name)
		}
	}

	m.st.Area = m.area
	m.st.Delay = m.delay
	if m.ps.SwitchingRounds > 0 {
		m.st.Power = m.computeSwitchingPower()
	}
	m.st.GateUsage = res.gateUsageTable()

	return res
}

// createGateNode instantiates the node's selected gate: the cut
// leaves are routed to the gate pins through the match permutation,
// each at the polarity the match negates it in.
func (m *mapping) createGateNode(res *BoundNetwork, old2new [][2]int,
	n, phase int) int {

	nd := &m.nodes[n]
	cut := m.nc.Cuts(n).At(nd.bestCut[phase])
	gate := nd.bestGate[phase].Root

	children := make([]int, gate.NumVars())
	for i, l := range cut.Leaves() {
		child := old2new[l][(nd.phase[phase]>>i)&1]
		if child < 0 {
			panic(fmt.Sprintf(
				"mapper: leaf %d of node %d not materialized", l, n))
		}
		children[nd.bestGate[phase].Permutation[i]] = child
	}
	return res.AddGate(children, gate.Function, gate.ID)
}

// computeSwitchingPower sums the switching activity of every gate
// instance in the cover.
func (m *mapping) computeSwitchingPower() float64 {
	var power float64

	for n := 0; n < m.ntk.Size(); n++ {
		nd := &m.nodes[n]

		if m.ntk.IsConstant(n) {
			continue
		}
		if m.ntk.IsPI(n) {
			if nd.mapRefs[1] > 0 {
				power += m.activity[n]
			}
			continue
		}
		if nd.mapRefs[2] == 0 {
			continue
		}

		phase := 0
		if nd.bestGate[0] == nil {
			phase = 1
		}

		if nd.sameMatch || nd.mapRefs[phase] > 0 {
			power += m.activity[n]
			if nd.sameMatch && nd.mapRefs[phase^1] > 0 {
				power += m.activity[n]
			}
		}

		phase ^= 1
		if !nd.sameMatch && nd.mapRefs[phase] > 0 {
			power += m.activity[n]
		}
	}
	return power
}
