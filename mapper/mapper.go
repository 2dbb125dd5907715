//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

package mapper

import (
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/okarvonen/techmap/cell"
	"github.com/okarvonen/techmap/cuts"
	"github.com/okarvonen/techmap/network"
	"github.com/okarvonen/techmap/tt"
)

const (
	epsilon  = 0.005
	infinity = math.MaxFloat64
)

// Mapping errors for an insufficient library.
var (
	// ErrNoConstants is returned when the cover needs constant cells
	// the library does not have.
	ErrNoConstants = errors.New(
		"library does not contain constant gates, unable to map")

	// ErrIncompleteLibrary is returned when some node function cannot
	// be realized with the library in either polarity.
	ErrIncompleteLibrary = errors.New(
		"library is not complete, unable to map")
)

// nodeMatch is the per-node mapping state. Indices 0 and 1 select the
// positive and negative polarity of the node; index 2 aggregates both.
type nodeMatch struct {
	// bestGate is the selected supergate per polarity, nil when the
	// polarity has no own gate.
	bestGate [2]*cell.Supergate
	// phase holds the input negation mask per cut-leaf position.
	phase [2]uint8
	// bestCut indexes the node's cut set per polarity.
	bestCut [2]int
	// sameMatch marks that one gate serves both polarities through an
	// output inverter.
	sameMatch bool

	arrival  [2]float64
	required [2]float64
	area     [2]float64

	// mapRefs counts the uses of each polarity in the current cover.
	mapRefs [3]int
	// estRefs is the fanout estimate blended over the rounds.
	estRefs [3]float64
	// flows is the area flow per polarity.
	flows [3]float64
}

type mapping struct {
	ntk *network.Network
	lib *cell.Library
	ps  Params
	st  *Stats
	log *logrus.Logger

	nc *cuts.NetworkCuts

	// matches holds, per node and per cut match index, the candidate
	// supergates for the positive and negative polarity.
	matches [][][2][]*cell.Supergate
	nodes   []nodeMatch

	iteration int
	delay     float64
	area      float64

	invArea  float64
	invDelay float64
	invID    int

	bufArea  float64
	bufDelay float64
	bufID    int

	// activity holds the per-node switching activity estimate, filled
	// lazily before the first switching round.
	activity []float64
}

// Map computes a technology mapping of the network over the library
// and returns the mapped network. On a mapping error the partial
// statistics are still filled in and Stats.MappingError is set.
func Map(ntk *network.Network, lib *cell.Library, ps Params,
	st *Stats) (*BoundNetwork, error) {

	if st == nil {
		st = &Stats{}
	}
	start := time.Now()
	defer func() {
		st.MappingTime = time.Since(start)
	}()

	if err := ntk.Validate(); err != nil {
		return nil, errors.Wrap(err, "mapping")
	}

	log := ps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	m := &mapping{
		ntk:     ntk,
		lib:     lib,
		ps:      ps,
		st:      st,
		log:     log,
		matches: make([][][2][]*cell.Supergate, ntk.Size()),
		nodes:   make([]nodeMatch, ntk.Size()),
	}
	m.invArea, m.invDelay, m.invID = lib.InverterInfo()
	m.bufArea, m.bufDelay, m.bufID = lib.BufferInfo()

	m.nc = cuts.Enumerate(ntk, cuts.Params{
		CutSize:       ps.CutSize,
		CutLimit:      ps.CutLimit,
		MinimizeTruth: ps.MinimizeTruth,
	}, nil)

	m.computeMatches()
	m.initNodes()

	if err := m.executeMapping(); err != nil {
		st.MappingError = true
		st.Area = m.area
		st.Delay = m.delay
		return nil, err
	}

	m.insertBuffers()
	res := m.finalizeCover()
	return res, nil
}

// executeMapping runs the mapping rounds: one delay-oriented round,
// the area-flow rounds, the exact-area rounds and finally the
// switching-power rounds.
func (m *mapping) executeMapping() error {
	if !m.ps.SkipDelayRound {
		if err := m.computeMapping(false); err != nil {
			return err
		}
	}

	for m.iteration < m.ps.AreaFlowRounds+1 {
		areaOld, delayOld := m.area, m.delay
		m.computeRequiredTime()
		if err := m.computeMapping(true); err != nil {
			return err
		}
		if m.converged(areaOld, delayOld) {
			break
		}
	}

	for m.iteration < m.ps.ExactAreaRounds+m.ps.AreaFlowRounds+1 {
		areaOld, delayOld := m.area, m.delay
		m.computeRequiredTime()
		if err := m.computeMappingExact(false); err != nil {
			return err
		}
		if m.converged(areaOld, delayOld) {
			break
		}
	}

	if m.ps.SwitchingRounds > 0 {
		m.activity = switchingActivity(m.ntk, m.ps.SwitchingPatterns)
	}
	for m.iteration <
		m.ps.SwitchingRounds+m.ps.ExactAreaRounds+m.ps.AreaFlowRounds+1 {
		m.computeRequiredTime()
		if err := m.computeMappingExact(true); err != nil {
			return err
		}
	}
	return nil
}

// converged reports whether the early-exit condition holds: area and
// delay unchanged over the last round.
func (m *mapping) converged(areaOld, delayOld float64) bool {
	return m.ps.EarlyExit && m.iteration > 1 &&
		math.Abs(areaOld-m.area) < epsilon &&
		math.Abs(delayOld-m.delay) < epsilon
}

// computeMatches resolves, for every cut of every node, the library
// candidates realizing the cut function in both polarities. Trivial,
// over-wide and unmatched cuts are flagged to be ignored.
func (m *mapping) computeMatches() {
	for n := 0; n < m.ntk.Size(); n++ {
		if m.ntk.IsConstant(n) || m.ntk.IsPI(n) {
			continue
		}
		var nodeMatches [][2][]*cell.Supergate

		set := m.nc.Cuts(n)
		for i := 0; i < set.Size(); i++ {
			cut := set.At(i)
			if cut.Size() == 1 && cut.Leaves()[0] == uint32(n) {
				cut.Data.Ignore = true
				continue
			}
			if cut.Size() > m.lib.MaxFanin() {
				cut.Data.Ignore = true
				continue
			}
			f := m.nc.TruthTable(cut)
			pos := m.lib.Supergates(f)
			neg := m.lib.Supergates(f.Not())
			if pos == nil && neg == nil {
				cut.Data.Ignore = true
				continue
			}
			cut.Data.Match = int32(len(nodeMatches))
			nodeMatches = append(nodeMatches,
				[2][]*cell.Supergate{pos, neg})
		}
		m.matches[n] = nodeMatches
	}
}

// initNodes seeds the per-node state: fanout counts as the initial
// reference estimate, zero arrivals for the terminals with the
// inverter delay on the negative polarity of the inputs, and constant
// cell matches for the constant node.
func (m *mapping) initNodes() {
	for n := 0; n < m.ntk.Size(); n++ {
		nd := &m.nodes[n]

		fanout := float64(m.ntk.FanoutSize(n))
		nd.estRefs[0], nd.estRefs[1], nd.estRefs[2] = fanout, fanout, fanout

		switch {
		case m.ntk.IsConstant(n):
			nd.arrival[0], nd.arrival[1] = 0, 0
			m.matchConstants(n)
		case m.ntk.IsPI(n):
			nd.arrival[0] = 0
			nd.arrival[1] = m.invDelay
		}
	}
}

// matchConstants binds the constant node to the library's constant
// cells. A missing polarity is derived from the other one with an
// inverter; when neither cell exists the node stays unmatched and is
// reported only if the cover actually needs it.
func (m *mapping) matchConstants(n int) {
	nd := &m.nodes[n]

	zero := m.lib.Supergates(tt.Const0(0))
	one := m.lib.Supergates(tt.Const1(0))

	if zero == nil && one == nil {
		return
	}
	if zero != nil {
		nd.bestGate[0] = zero[0]
		nd.arrival[0] = zero[0].WorstDelay
		nd.area[0] = zero[0].Area
		nd.phase[0] = 0
	}
	if one != nil {
		nd.bestGate[1] = one[0]
		nd.arrival[1] = one[0].WorstDelay
		nd.area[1] = one[0].Area
		nd.phase[1] = 0
	} else {
		nd.sameMatch = true
		nd.arrival[1] = nd.arrival[0] + m.invDelay
		nd.area[1] = nd.area[0] + m.invArea
		nd.phase[1] = 1
	}
	if zero == nil {
		nd.sameMatch = true
		nd.arrival[0] = nd.arrival[1] + m.invDelay
		nd.area[0] = nd.area[1] + m.invArea
		nd.phase[0] = 1
	}
}

// computeMapping performs one global matching round over all nodes in
// topological order. With doArea the round optimizes area flow under
// the required times; otherwise it optimizes arrival times.
func (m *mapping) computeMapping(doArea bool) error {
	for n := 0; n < m.ntk.Size(); n++ {
		if m.ntk.IsConstant(n) || m.ntk.IsPI(n) {
			continue
		}
		m.matchPhase(n, 0, doArea)
		m.matchPhase(n, 1, doArea)
		m.matchDropPhase(n, doArea, false)
	}

	areaOld := m.area
	err := m.setMappingRefs(false)

	if m.ps.Verbose {
		name := "Delay"
		if doArea {
			name = "AreaFlow"
		}
		m.roundStats(name, areaOld)
	}
	return err
}

// computeMappingExact performs one exact-area (or exact switching
// power) round: every node is dereferenced from the cover, rematched
// with the recursively computed exact cost and referenced back.
func (m *mapping) computeMappingExact(switching bool) error {
	for n := 0; n < m.ntk.Size(); n++ {
		if m.ntk.IsConstant(n) || m.ntk.IsPI(n) {
			continue
		}
		nd := &m.nodes[n]

		// Deselect the cut shared between the two polarities if in
		// use in the cover.
		if nd.sameMatch && nd.mapRefs[2] != 0 {
			if nd.bestGate[0] != nil {
				m.cutDeref(m.nc.Cuts(n).At(nd.bestCut[0]), n, 0, switching)
			} else {
				m.cutDeref(m.nc.Cuts(n).At(nd.bestCut[1]), n, 1, switching)
			}
		}

		m.matchPhaseExact(n, 0, switching)
		m.matchPhaseExact(n, 1, switching)
		m.matchDropPhase(n, true, true)
	}

	areaOld := m.area
	err := m.setMappingRefs(true)

	if m.ps.Verbose {
		name := "Area"
		if switching {
			name = "Switching"
		}
		m.roundStats(name, areaOld)
	}
	return err
}

func (m *mapping) roundStats(name string, areaOld float64) {
	var gain float64
	if m.iteration != 1 && areaOld > 0 {
		gain = (areaOld - m.area) / areaOld * 100
	}
	line := fmt.Sprintf("%-9s: Delay = %8.2f  Area = %8.2f  %5.2f %%",
		name, m.delay, m.area, gain)
	m.st.RoundStats = append(m.st.RoundStats, line)
	m.log.Info(line)
}
