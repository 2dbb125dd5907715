//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

package mapper

import (
	"github.com/okarvonen/techmap/cuts"
)

// setMappingRefs recomputes the cover from the primary outputs: the
// per-polarity reference counts, the total area and the worst delay.
// In exact-area rounds (ela) the counts are maintained incrementally
// by cutRef/cutDeref and only the totals are recomputed. The blended
// reference estimates are updated and the iteration advances.
func (m *mapping) setMappingRefs(ela bool) error {
	coef := 1.0 / (2.0 + float64(m.iteration+1)*float64(m.iteration+1))

	if !ela {
		for i := range m.nodes {
			m.nodes[i].mapRefs[0] = 0
			m.nodes[i].mapRefs[1] = 0
			m.nodes[i].mapRefs[2] = 0
		}
	}

	// Worst delay over the primary outputs; reference the drivers.
	m.delay = 0
	for i := 0; i < m.ntk.NumPOs(); i++ {
		s, _ := m.ntk.PO(i)
		nd := &m.nodes[s.Node()]
		if s.Compl() {
			if nd.arrival[1] > m.delay {
				m.delay = nd.arrival[1]
			}
		} else {
			if nd.arrival[0] > m.delay {
				m.delay = nd.arrival[0]
			}
		}
		if !ela {
			nd.mapRefs[2]++
			if s.Compl() {
				nd.mapRefs[1]++
			} else {
				nd.mapRefs[0]++
			}
		}
	}

	// Cover area and leaf references, top-down.
	m.area = 0
	for n := m.ntk.Size() - 1; n >= 0; n-- {
		nd := &m.nodes[n]

		if m.ntk.IsConstant(n) {
			if nd.mapRefs[2] > 0 &&
				nd.bestGate[0] == nil && nd.bestGate[1] == nil {
				m.log.Errorf("mapping: %v", ErrNoConstants)
				return ErrNoConstants
			}
			continue
		} else if m.ntk.IsPI(n) {
			if nd.mapRefs[1] > 0 {
				// Negated input: one inverter.
				m.area += m.invArea
			}
			continue
		}

		if nd.mapRefs[2] == 0 {
			continue
		}

		usePhase := 0
		if nd.bestGate[0] == nil {
			usePhase = 1
		}
		if nd.bestGate[usePhase] == nil {
			m.log.Errorf("mapping: %v", ErrIncompleteLibrary)
			return ErrIncompleteLibrary
		}

		if nd.sameMatch || nd.mapRefs[usePhase] > 0 {
			if !ela {
				m.refLeaves(n, usePhase)
			}
			m.area += nd.area[usePhase]
			if nd.sameMatch && nd.mapRefs[usePhase^1] > 0 {
				m.area += m.invArea
			}
		}

		usePhase ^= 1
		if !nd.sameMatch && nd.mapRefs[usePhase] > 0 {
			if !ela {
				m.refLeaves(n, usePhase)
			}
			m.area += nd.area[usePhase]
		}
	}

	// Blend the reference estimates towards the observed counts.
	for i := range m.nodes {
		nd := &m.nodes[i]
		for p := 0; p < 3; p++ {
			refs := float64(nd.mapRefs[p])
			if refs < 1 {
				refs = 1
			}
			nd.estRefs[p] = coef*nd.estRefs[p] + (1.0-coef)*refs
		}
	}

	m.iteration++
	return nil
}

// refLeaves increments the reference counts of the best cut's leaves
// at the polarities the selected gate drives them in.
func (m *mapping) refLeaves(n, phase int) {
	nd := &m.nodes[n]
	cut := m.nc.Cuts(n).At(nd.bestCut[phase])
	for i, leaf := range cut.Leaves() {
		m.nodes[leaf].mapRefs[2]++
		if (nd.phase[phase]>>i)&1 == 1 {
			m.nodes[leaf].mapRefs[1]++
		} else {
			m.nodes[leaf].mapRefs[0]++
		}
	}
}

// computeRequiredTime back-propagates the required times from the
// primary outputs through the selected matches.
func (m *mapping) computeRequiredTime() {
	for i := range m.nodes {
		m.nodes[i].required[0] = infinity
		m.nodes[i].required[1] = infinity
	}

	// No cover yet when the delay round was skipped.
	if m.iteration == 0 {
		return
	}

	required := m.delay

	if m.ps.RequiredTime != 0 {
		if m.ps.RequiredTime < m.delay-epsilon {
			if !m.ps.SkipDelayRound && m.iteration == 1 {
				m.log.Warnf(
					"mapping: cannot meet the target required time of %.2f",
					m.ps.RequiredTime)
			}
		} else {
			required = m.ps.RequiredTime
		}
	}

	for i := 0; i < m.ntk.NumPOs(); i++ {
		s, _ := m.ntk.PO(i)
		if s.Compl() {
			m.nodes[s.Node()].required[1] = required
		} else {
			m.nodes[s.Node()].required[0] = required
		}
	}

	for n := m.ntk.Size() - 1; n >= 0; n-- {
		if m.ntk.IsPI(n) || m.ntk.IsConstant(n) {
			continue
		}
		nd := &m.nodes[n]
		if nd.mapRefs[2] == 0 {
			continue
		}

		usePhase := 0
		if nd.bestGate[0] == nil {
			usePhase = 1
		}
		otherPhase := usePhase ^ 1

		// Tighten over the output inverter if the other polarity is
		// derived from this one.
		if nd.sameMatch && nd.mapRefs[otherPhase] > 0 {
			r := nd.required[otherPhase] - m.invDelay
			if r < nd.required[usePhase] {
				nd.required[usePhase] = r
			}
		}

		if nd.sameMatch || nd.mapRefs[usePhase] > 0 {
			m.propagateRequired(n, usePhase)
		}
		if !nd.sameMatch && nd.mapRefs[otherPhase] > 0 {
			m.propagateRequired(n, otherPhase)
		}
	}
}

// propagateRequired lowers the leaf required times below the node's
// required time minus the matched gate's pin delays.
func (m *mapping) propagateRequired(n, phase int) {
	nd := &m.nodes[n]
	cut := m.nc.Cuts(n).At(nd.bestCut[phase])
	gate := nd.bestGate[phase]
	for i, leaf := range cut.Leaves() {
		leafPhase := (nd.phase[phase] >> i) & 1
		r := nd.required[phase] - gate.TDelay[i]
		if r < m.nodes[leaf].required[leafPhase] {
			m.nodes[leaf].required[leafPhase] = r
		}
	}
}

// cutRef references the cut into the cover and returns its exact
// cost: the node's own cost plus the cost of the leaf subtrees and
// inverters that become referenced. With switching the per-node cost
// is the switching activity instead of the gate area.
func (m *mapping) cutRef(cut *cuts.Cut, n, phase int, switching bool) float64 {
	nd := &m.nodes[n]
	count := nd.area[phase]
	if switching {
		count = m.activity[n]
	}

	for i, l := range cut.Leaves() {
		leaf := int(l)
		leafPhase := int((nd.phase[phase] >> i) & 1)

		if m.ntk.IsConstant(leaf) {
			continue
		} else if m.ntk.IsPI(leaf) {
			// Negated inputs cost one inverter.
			if leafPhase == 1 {
				if m.nodes[leaf].mapRefs[1] == 0 {
					if switching {
						count += m.activity[leaf]
					} else {
						count += m.invArea
					}
				}
				m.nodes[leaf].mapRefs[1]++
			} else {
				m.nodes[leaf].mapRefs[0]++
			}
			continue
		}

		ld := &m.nodes[leaf]
		if ld.sameMatch {
			// The opposite polarity is an inverter over this one.
			if ld.mapRefs[leafPhase] == 0 && ld.bestGate[leafPhase] == nil {
				if switching {
					count += m.activity[leaf]
				} else {
					count += m.invArea
				}
			}
			ld.mapRefs[leafPhase]++
			if ld.mapRefs[2] == 0 {
				count += m.cutRef(m.nc.Cuts(leaf).At(ld.bestCut[leafPhase]),
					leaf, leafPhase, switching)
			}
			ld.mapRefs[2]++
		} else {
			ld.mapRefs[2]++
			if ld.mapRefs[leafPhase] == 0 {
				count += m.cutRef(m.nc.Cuts(leaf).At(ld.bestCut[leafPhase]),
					leaf, leafPhase, switching)
			}
			ld.mapRefs[leafPhase]++
		}
	}
	return count
}

// cutDeref removes the cut from the cover, returning the cost that
// was released. It is the exact inverse of cutRef.
func (m *mapping) cutDeref(cut *cuts.Cut, n, phase int, switching bool) float64 {
	nd := &m.nodes[n]
	count := nd.area[phase]
	if switching {
		count = m.activity[n]
	}

	for i, l := range cut.Leaves() {
		leaf := int(l)
		leafPhase := int((nd.phase[phase] >> i) & 1)

		if m.ntk.IsConstant(leaf) {
			continue
		} else if m.ntk.IsPI(leaf) {
			if leafPhase == 1 {
				m.nodes[leaf].mapRefs[1]--
				if m.nodes[leaf].mapRefs[1] == 0 {
					if switching {
						count += m.activity[leaf]
					} else {
						count += m.invArea
					}
				}
			} else {
				m.nodes[leaf].mapRefs[0]--
			}
			continue
		}

		ld := &m.nodes[leaf]
		if ld.sameMatch {
			ld.mapRefs[leafPhase]--
			if ld.mapRefs[leafPhase] == 0 && ld.bestGate[leafPhase] == nil {
				if switching {
					count += m.activity[leaf]
				} else {
					count += m.invArea
				}
			}
			ld.mapRefs[2]--
			if ld.mapRefs[2] == 0 {
				count += m.cutDeref(m.nc.Cuts(leaf).At(ld.bestCut[leafPhase]),
					leaf, leafPhase, switching)
			}
		} else {
			ld.mapRefs[2]--
			ld.mapRefs[leafPhase]--
			if ld.mapRefs[leafPhase] == 0 {
				count += m.cutDeref(m.nc.Cuts(leaf).At(ld.bestCut[leafPhase]),
					leaf, leafPhase, switching)
			}
		}
	}
	return count
}
