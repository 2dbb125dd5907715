//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

package mapper

import (
	"github.com/okarvonen/techmap/cuts"
)

// matchPhase selects the best cut and gate realizing the node in the
// given polarity. With doArea the cost is the area flow of the match
// under the node's required time; otherwise the worst arrival time.
func (m *mapping) matchPhase(n int, phase int, doArea bool) {
	bestArrival := infinity
	bestAreaFlow := infinity
	bestArea := infinity
	bestSize := int(^uint(0) >> 1)
	bestCut := 0
	var bestPhase uint8

	nd := &m.nodes[n]
	cutMatches := m.matches[n]
	bestGate := nd.bestGate[phase]

	// Recompute the figures of the surviving best match; leaf arrivals
	// and flows have changed since the previous round.
	if bestGate != nil {
		cut := m.nc.Cuts(n).At(nd.bestCut[phase])

		bestPhase = nd.phase[phase]
		bestArrival = 0
		bestAreaFlow = bestGate.Area + m.cutLeavesFlow(cut, bestPhase)
		bestArea = bestGate.Area
		bestCut = nd.bestCut[phase]
		bestSize = cut.Size()

		for i, l := range cut.Leaves() {
			arrivalPin := m.nodes[l].arrival[(bestPhase>>i)&1] +
				bestGate.TDelay[i]
			if arrivalPin > bestArrival {
				bestArrival = arrivalPin
			}
		}
	}

	set := m.nc.Cuts(n)
	for ci := 0; ci < set.Size(); ci++ {
		cut := set.At(ci)
		if cut.Data.Ignore {
			continue
		}
		supergates := cutMatches[cut.Data.Match]
		if supergates[phase] == nil {
			continue
		}

		for _, gate := range supergates[phase] {
			areaLocal := gate.Area + m.cutLeavesFlow(cut, gate.Polarity)

			var worstArrival float64
			for i, l := range cut.Leaves() {
				arrivalPin := m.nodes[l].arrival[(gate.Polarity>>i)&1] +
					gate.TDelay[i]
				if arrivalPin > worstArrival {
					worstArrival = arrivalPin
				}
			}

			if doArea && worstArrival > nd.required[phase]+epsilon {
				continue
			}

			if compareMap(doArea, worstArrival, bestArrival,
				areaLocal, bestAreaFlow, cut.Size(), bestSize) {
				bestArrival = worstArrival
				bestAreaFlow = areaLocal
				bestSize = cut.Size()
				bestCut = ci
				bestArea = gate.Area
				bestPhase = gate.Polarity
				bestGate = gate
			}
		}
	}

	nd.flows[phase] = bestAreaFlow
	nd.arrival[phase] = bestArrival
	nd.area[phase] = bestArea
	nd.bestCut[phase] = bestCut
	nd.phase[phase] = bestPhase
	nd.bestGate[phase] = bestGate
}

// matchPhaseExact reselects the best cut and gate using the exact
// area of the match, computed by referencing the candidate into the
// current cover and dereferencing it again. With switching the cost
// is switching activity instead of area.
func (m *mapping) matchPhaseExact(n int, phase int, switching bool) {
	bestArrival := infinity
	bestExactArea := infinity
	bestArea := infinity
	bestSize := int(^uint(0) >> 1)
	bestCut := 0
	var bestPhase uint8

	nd := &m.nodes[n]
	cutMatches := m.matches[n]
	bestGate := nd.bestGate[phase]

	// Recompute the figures of the surviving best match.
	if bestGate != nil {
		cut := m.nc.Cuts(n).At(nd.bestCut[phase])

		bestPhase = nd.phase[phase]
		bestArrival = 0
		bestArea = bestGate.Area
		bestCut = nd.bestCut[phase]
		bestSize = cut.Size()

		for i, l := range cut.Leaves() {
			arrivalPin := m.nodes[l].arrival[(bestPhase>>i)&1] +
				bestGate.TDelay[i]
			if arrivalPin > bestArrival {
				bestArrival = arrivalPin
			}
		}

		// Take the cut out of the cover while rematching.
		if !nd.sameMatch && nd.mapRefs[phase] > 0 {
			bestExactArea = m.cutDeref(m.nc.Cuts(n).At(bestCut), n,
				phase, switching)
		} else {
			bestExactArea = m.cutRef(m.nc.Cuts(n).At(bestCut), n,
				phase, switching)
			m.cutDeref(m.nc.Cuts(n).At(bestCut), n, phase, switching)
		}
	}

	set := m.nc.Cuts(n)
	for ci := 0; ci < set.Size(); ci++ {
		cut := set.At(ci)
		if cut.Data.Ignore {
			continue
		}
		supergates := cutMatches[cut.Data.Match]
		if supergates[phase] == nil {
			continue
		}

		for _, gate := range supergates[phase] {
			// cutRef reads the candidate's polarity and area through
			// the node state.
			nd.phase[phase] = gate.Polarity
			nd.area[phase] = gate.Area
			areaExact := m.cutRef(cut, n, phase, switching)
			m.cutDeref(cut, n, phase, switching)

			var worstArrival float64
			for i, l := range cut.Leaves() {
				arrivalPin := m.nodes[l].arrival[(gate.Polarity>>i)&1] +
					gate.TDelay[i]
				if arrivalPin > worstArrival {
					worstArrival = arrivalPin
				}
			}

			if worstArrival > nd.required[phase]+epsilon {
				continue
			}

			if compareMap(true, worstArrival, bestArrival,
				areaExact, bestExactArea, cut.Size(), bestSize) {
				bestArrival = worstArrival
				bestExactArea = areaExact
				bestArea = gate.Area
				bestSize = cut.Size()
				bestCut = ci
				bestPhase = gate.Polarity
				bestGate = gate
			}
		}
	}

	nd.flows[phase] = bestExactArea
	nd.arrival[phase] = bestArrival
	nd.area[phase] = bestArea
	nd.bestCut[phase] = bestCut
	nd.phase[phase] = bestPhase
	nd.bestGate[phase] = bestGate

	// Restore the cover reference of an exclusively used polarity.
	if !nd.sameMatch && nd.mapRefs[phase] > 0 {
		m.cutRef(m.nc.Cuts(n).At(bestCut), n, phase, switching)
	}
}

// matchDropPhase decides whether one gate can serve both polarities
// of the node through an output inverter, or whether both polarities
// keep their own gate.
func (m *mapping) matchDropPhase(n int, doArea, ela bool) {
	nd := &m.nodes[n]

	// Arrivals realizing each polarity by inverting the other one.
	worstArrivalNpos := nd.arrival[1] + m.invDelay
	worstArrivalNneg := nd.arrival[0] + m.invDelay

	var useZero, useOne bool

	// Only one polarity has a match.
	if nd.bestGate[0] == nil {
		m.setMatchComplementedPhase(n, 1, worstArrivalNpos)
		if ela && nd.mapRefs[2] != 0 {
			m.cutRef(m.nc.Cuts(n).At(nd.bestCut[1]), n, 1, false)
		}
		return
	} else if nd.bestGate[1] == nil {
		m.setMatchComplementedPhase(n, 0, worstArrivalNneg)
		if ela && nd.mapRefs[2] != 0 {
			m.cutRef(m.nc.Cuts(n).At(nd.bestCut[0]), n, 0, false)
		}
		return
	}

	if !doArea {
		// Drop a polarity when matching the other one plus an
		// inverter does not degrade the arrival.
		if worstArrivalNpos < nd.arrival[0]+epsilon {
			useOne = true
		}
		if worstArrivalNneg < nd.arrival[1]+epsilon {
			useZero = true
		}
	} else {
		// Drop a polarity when the inverted match meets the required
		// time.
		useZero = worstArrivalNneg < nd.required[1]+epsilon
		useOne = worstArrivalNpos < nd.required[0]+epsilon
	}

	// During exact area recovery, try substituting an unused polarity
	// match for the used one when it improves the cost.
	if ela && m.iteration != 0 &&
		(nd.mapRefs[0] == 0 || nd.mapRefs[1] == 0) {
		phase, nphase := 0, 0
		if nd.mapRefs[0] == 0 {
			phase = 1
			useOne = true
			useZero = false
		} else {
			nphase = 1
			useOne = false
			useZero = true
		}
		if nd.arrival[nphase]+m.invDelay < nd.required[phase]+epsilon {
			sizePhase := m.nc.Cuts(n).At(nd.bestCut[phase]).Size()
			sizeNphase := m.nc.Cuts(n).At(nd.bestCut[nphase]).Size()

			if compareMap(doArea, nd.arrival[nphase]+m.invDelay,
				nd.arrival[phase], nd.flows[nphase]+m.invArea,
				nd.flows[phase], sizeNphase, sizePhase) {
				useZero = !useZero
				useOne = !useOne
			}
		}
	}

	if !useZero && !useOne {
		// Keep both polarities.
		nd.flows[0] = nd.flows[0] / nd.estRefs[0]
		nd.flows[1] = nd.flows[1] / nd.estRefs[1]
		nd.flows[2] = nd.flows[0] + nd.flows[1]
		nd.sameMatch = false
		return
	}

	// Both could be dropped: area flow breaks the tie.
	if useZero && useOne {
		sizeZero := m.nc.Cuts(n).At(nd.bestCut[0]).Size()
		sizeOne := m.nc.Cuts(n).At(nd.bestCut[1]).Size()
		if compareMap(doArea, worstArrivalNneg, worstArrivalNpos,
			nd.flows[0], nd.flows[1], sizeZero, sizeOne) {
			useOne = false
		} else {
			useZero = false
		}
	}

	if useZero {
		if ela {
			if !nd.sameMatch {
				if nd.mapRefs[1] > 0 {
					m.cutDeref(m.nc.Cuts(n).At(nd.bestCut[1]), n, 1, false)
				}
				if nd.mapRefs[0] == 0 && nd.mapRefs[2] != 0 {
					m.cutRef(m.nc.Cuts(n).At(nd.bestCut[0]), n, 0, false)
				}
			} else if nd.mapRefs[2] != 0 {
				m.cutRef(m.nc.Cuts(n).At(nd.bestCut[0]), n, 0, false)
			}
		}
		m.setMatchComplementedPhase(n, 0, worstArrivalNneg)
	} else {
		if ela {
			if !nd.sameMatch {
				if nd.mapRefs[0] > 0 {
					m.cutDeref(m.nc.Cuts(n).At(nd.bestCut[0]), n, 0, false)
				}
				if nd.mapRefs[1] == 0 && nd.mapRefs[2] != 0 {
					m.cutRef(m.nc.Cuts(n).At(nd.bestCut[1]), n, 1, false)
				}
			} else if nd.mapRefs[2] != 0 {
				m.cutRef(m.nc.Cuts(n).At(nd.bestCut[1]), n, 1, false)
			}
		}
		m.setMatchComplementedPhase(n, 1, worstArrivalNpos)
	}
}

// setMatchComplementedPhase realizes the other polarity of the node
// with an inverter over the matched one.
func (m *mapping) setMatchComplementedPhase(n int, phase int,
	worstArrivalN float64) {

	nd := &m.nodes[n]
	phaseN := phase ^ 1
	nd.sameMatch = true
	nd.bestGate[phaseN] = nil
	nd.bestCut[phaseN] = nd.bestCut[phase]
	nd.phase[phaseN] = nd.phase[phase]
	nd.arrival[phaseN] = worstArrivalN
	nd.area[phaseN] = nd.area[phase]
	nd.flows[phase] = nd.flows[phase] / nd.estRefs[2]
	nd.flows[phaseN] = nd.flows[phase]
	nd.flows[2] = nd.flows[phase]
}

// cutLeavesFlow sums the leaf area flows at the polarities the gate
// configuration drives them in.
func (m *mapping) cutLeavesFlow(cut *cuts.Cut, polarity uint8) float64 {
	var flow float64
	for i, l := range cut.Leaves() {
		flow += m.nodes[l].flows[(polarity>>i)&1]
	}
	return flow
}

// compareMap orders two matches: with doArea by area flow, arrival
// and cut size; otherwise by arrival, area flow and cut size.
func compareMap(doArea bool, arrival, bestArrival, areaFlow,
	bestAreaFlow float64, size, bestSize int) bool {

	if doArea {
		if areaFlow < bestAreaFlow-epsilon {
			return true
		}
		if areaFlow > bestAreaFlow+epsilon {
			return false
		}
		if arrival < bestArrival-epsilon {
			return true
		}
		if arrival > bestArrival+epsilon {
			return false
		}
	} else {
		if arrival < bestArrival-epsilon {
			return true
		}
		if arrival > bestArrival+epsilon {
			return false
		}
		if areaFlow < bestAreaFlow-epsilon {
			return true
		}
		if areaFlow > bestAreaFlow+epsilon {
			return false
		}
	}
	return size < bestSize
}
