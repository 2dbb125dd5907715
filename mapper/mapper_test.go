//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

package mapper

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/okarvonen/techmap/cell"
	"github.com/okarvonen/techmap/cuts"
	"github.com/okarvonen/techmap/gen"
	"github.com/okarvonen/techmap/network"
	"github.com/okarvonen/techmap/tt"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func quietParams() Params {
	ps := NewParams()
	ps.Logger = quietLogger()
	return ps
}

func newLibrary(gates []*cell.Gate) *cell.Library {
	ps := cell.NewParams()
	ps.Logger = quietLogger()
	return cell.NewLibrary(gates, ps)
}

// nandLibrary holds only a 2-input NAND and an inverter.
func nandLibrary() *cell.Library {
	nand := tt.NthVar(2, 0).And(tt.NthVar(2, 1)).Not()
	return newLibrary([]*cell.Gate{
		cell.NewGate("inv", tt.NthVar(1, 0).Not(), 1, 0.9),
		cell.NewGate("nand2", nand, 2, 1.0),
	})
}

// andLibrary holds only a 2-input AND of area and delay 1.
func andLibrary() *cell.Library {
	and := tt.NthVar(2, 0).And(tt.NthVar(2, 1))
	return newLibrary([]*cell.Gate{
		cell.NewGate("and2", and, 1, 1),
	})
}

func miniLibrary() *cell.Library {
	return newLibrary(cell.MiniLibrary())
}

func TestMapAndToNandInv(t *testing.T) {
	ntk := network.New()
	a := ntk.AddInput("a")
	b := ntk.AddInput("b")
	ntk.AddOutput(ntk.AddAnd(a, b), "f")

	var st Stats
	res, err := Map(ntk, nandLibrary(), quietParams(), &st)
	require.NoError(t, err)
	require.False(t, st.MappingError)

	// AND is only realizable as NAND plus an inverter.
	require.InDelta(t, 3.0, st.Area, 0.01)
	require.InDelta(t, 1.9, st.Delay, 0.01)
	require.Equal(t, 2, res.NumGates())

	for m := 0; m < 4; m++ {
		in := []bool{m&1 == 1, m&2 == 2}
		require.Equal(t, ntk.Simulate(in), res.Simulate(in),
			"minterm %d", m)
	}
}

func TestMapAndChain(t *testing.T) {
	ntk := network.New()
	a := ntk.AddInput("a")
	b := ntk.AddInput("b")
	c := ntk.AddInput("c")
	ntk.AddOutput(ntk.AddAnd(ntk.AddAnd(a, b), c), "f")

	var st Stats
	res, err := Map(ntk, andLibrary(), quietParams(), &st)
	require.NoError(t, err)

	require.Equal(t, 2, res.NumGates())
	require.InDelta(t, 2.0, st.Area, 0.01)
	require.InDelta(t, 2.0, st.Delay, 0.01)
}

func TestMapIncompleteLibrary(t *testing.T) {
	// A single 8-input conjunction has no cut the library can match.
	wide := tt.Const1(8)
	for i := 0; i < 8; i++ {
		wide = wide.And(tt.NthVar(8, i))
	}

	ntk := network.New()
	fanins := make([]network.Signal, 8)
	for i := range fanins {
		fanins[i] = ntk.AddInput("i")
	}
	ntk.AddOutput(ntk.AddNode(fanins, wide), "f")

	var st Stats
	_, err := Map(ntk, nandLibrary(), quietParams(), &st)
	require.ErrorIs(t, err, ErrIncompleteLibrary)
	require.True(t, st.MappingError)
}

func TestMapMissingConstants(t *testing.T) {
	ntk := network.New()
	a := ntk.AddInput("a")
	b := ntk.AddInput("b")
	ntk.AddOutput(ntk.AddAnd(a, b), "f")
	ntk.AddOutput(ntk.Const1(), "k")

	var st Stats
	_, err := Map(ntk, andLibrary(), quietParams(), &st)
	require.ErrorIs(t, err, ErrNoConstants)
	require.True(t, st.MappingError)
}

func TestMapConstantOutput(t *testing.T) {
	ntk := network.New()
	ntk.AddInput("a")
	ntk.AddOutput(ntk.Const1(), "one")
	ntk.AddOutput(ntk.Const0(), "zero")

	var st Stats
	res, err := Map(ntk, miniLibrary(), quietParams(), &st)
	require.NoError(t, err)

	outs := res.Simulate([]bool{false})
	require.True(t, outs[0])
	require.False(t, outs[1])
}

func TestMapPOBuffer(t *testing.T) {
	ntk := network.New()
	a := ntk.AddInput("a")
	ntk.AddOutput(a, "f")

	var st Stats
	res, err := Map(ntk, miniLibrary(), quietParams(), &st)
	require.NoError(t, err)

	// A PO driven directly by a PI needs an explicit buffer.
	require.Equal(t, 1, res.NumGates())
	require.InDelta(t, 2.0, st.Area, 0.01)
	require.InDelta(t, 1.0, st.Delay, 0.01)

	require.Equal(t, []bool{true}, res.Simulate([]bool{true}))
	require.Equal(t, []bool{false}, res.Simulate([]bool{false}))
}

func TestMapPOInverter(t *testing.T) {
	ntk := network.New()
	a := ntk.AddInput("a")
	ntk.AddOutput(a.Not(), "f")

	var st Stats
	res, err := Map(ntk, miniLibrary(), quietParams(), &st)
	require.NoError(t, err)

	require.Equal(t, 1, res.NumGates())
	require.InDelta(t, 1.0, st.Area, 0.01)
	require.InDelta(t, 0.9, st.Delay, 0.01)

	require.Equal(t, []bool{false}, res.Simulate([]bool{true}))
	require.Equal(t, []bool{true}, res.Simulate([]bool{false}))
}

func TestMapAdderEquivalence(t *testing.T) {
	width := 3
	ntk := gen.Adder(width)

	var st Stats
	res, err := Map(ntk, miniLibrary(), quietParams(), &st)
	require.NoError(t, err)
	require.Greater(t, st.Area, 0.0)
	require.Greater(t, st.Delay, 0.0)

	// The reported area matches the materialized instances.
	require.InDelta(t, st.Area, res.Area(), 0.01)

	inputs := make([]bool, 2*width)
	for m := 0; m < 1<<(2*width); m++ {
		for i := range inputs {
			inputs[i] = (m>>i)&1 == 1
		}
		require.Equal(t, ntk.Simulate(inputs), res.Simulate(inputs),
			"pattern %d", m)
	}
}

func TestMapComparatorEquivalence(t *testing.T) {
	width := 4
	ntk := gen.Comparator(width)

	var st Stats
	res, err := Map(ntk, miniLibrary(), quietParams(), &st)
	require.NoError(t, err)

	inputs := make([]bool, 2*width)
	for m := 0; m < 1<<(2*width); m++ {
		for i := range inputs {
			inputs[i] = (m>>i)&1 == 1
		}
		require.Equal(t, ntk.Simulate(inputs), res.Simulate(inputs),
			"pattern %d", m)
	}
}

func TestMapDeterministic(t *testing.T) {
	ntk := gen.Comparator(6)

	var st1, st2 Stats
	_, err := Map(ntk, miniLibrary(), quietParams(), &st1)
	require.NoError(t, err)
	_, err = Map(ntk, miniLibrary(), quietParams(), &st2)
	require.NoError(t, err)

	require.Equal(t, st1.Area, st2.Area)
	require.Equal(t, st1.Delay, st2.Delay)
}

func TestMapAreaRecovery(t *testing.T) {
	ntk := gen.Adder(6)
	lib := miniLibrary()

	psNone := quietParams()
	psNone.AreaFlowRounds = 0
	psNone.ExactAreaRounds = 0

	psFull := quietParams()

	var stNone, stFull Stats
	_, err := Map(ntk, lib, psNone, &stNone)
	require.NoError(t, err)
	_, err = Map(ntk, lib, psFull, &stFull)
	require.NoError(t, err)

	// Area recovery never regresses area.
	require.LessOrEqual(t, stFull.Area, stNone.Area+epsilon)
	// Delay stays at the best achievable value.
	require.InDelta(t, stNone.Delay, stFull.Delay, epsilon)
}

func TestMapRequiredTimeInfeasible(t *testing.T) {
	ntk := gen.Adder(4)

	ps := quietParams()
	ps.RequiredTime = 0.5

	var st Stats
	_, err := Map(ntk, miniLibrary(), ps, &st)
	require.NoError(t, err)
	require.Greater(t, st.Delay, 0.5)
}

func TestMapSwitchingRounds(t *testing.T) {
	width := 3
	ntk := gen.Adder(width)

	ps := quietParams()
	ps.SwitchingRounds = 2

	var st Stats
	res, err := Map(ntk, miniLibrary(), ps, &st)
	require.NoError(t, err)
	require.Greater(t, st.Power, 0.0)

	inputs := make([]bool, 2*width)
	for m := 0; m < 1<<(2*width); m++ {
		for i := range inputs {
			inputs[i] = (m>>i)&1 == 1
		}
		require.Equal(t, ntk.Simulate(inputs), res.Simulate(inputs),
			"pattern %d", m)
	}
}

func TestMapRoundStats(t *testing.T) {
	ps := quietParams()
	ps.Verbose = true

	var st Stats
	_, err := Map(gen.Comparator(4), miniLibrary(), ps, &st)
	require.NoError(t, err)

	// One delay round, one area-flow round, two exact-area rounds.
	require.Len(t, st.RoundStats, 4)
	require.NotEmpty(t, st.GateUsage)
}

// newTestMapping builds the internal mapping state without running
// the rounds.
func newTestMapping(ntk *network.Network, lib *cell.Library,
	ps Params) *mapping {

	m := &mapping{
		ntk:     ntk,
		lib:     lib,
		ps:      ps,
		st:      &Stats{},
		log:     quietLogger(),
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
	return m
}

func TestCutRefDerefPairing(t *testing.T) {
	// One shared node with three consumers.
	ntk := network.New()
	a := ntk.AddInput("a")
	b := ntk.AddInput("b")
	c := ntk.AddInput("c")
	d := ntk.AddInput("d")
	e := ntk.AddInput("e")
	shared := ntk.AddAnd(a, b)
	x := ntk.AddAnd(shared, c)
	y := ntk.AddAnd(shared, d)
	z := ntk.AddAnd(shared, e)
	ntk.AddOutput(x, "x")
	ntk.AddOutput(y, "y")
	ntk.AddOutput(z, "z")

	m := newTestMapping(ntk, andLibrary(), quietParams())
	require.NoError(t, m.executeMapping())

	sn := shared.Node()
	require.Equal(t, 3, m.nodes[sn].mapRefs[2])
	require.Equal(t, 3, m.nodes[sn].mapRefs[0])

	snapshot := make([]nodeMatch, len(m.nodes))
	copy(snapshot, m.nodes)

	// Dereferencing and re-referencing a consumer's cut restores the
	// state and returns the same exact cost.
	xn := x.Node()
	cut := m.nc.Cuts(xn).At(m.nodes[xn].bestCut[0])
	released := m.cutDeref(cut, xn, 0, false)
	acquired := m.cutRef(cut, xn, 0, false)
	require.InDelta(t, released, acquired, 1e-9)
	for i := range m.nodes {
		require.Equal(t, snapshot[i].mapRefs, m.nodes[i].mapRefs,
			"node %d refs changed", i)
	}

	// Dereferencing all consumers cascades through the shared node to
	// its leaves.
	for _, s := range []network.Signal{x, y, z} {
		n := s.Node()
		m.cutDeref(m.nc.Cuts(n).At(m.nodes[n].bestCut[0]), n, 0, false)
	}
	require.Equal(t, 0, m.nodes[sn].mapRefs[2])
	require.Equal(t, 0, m.nodes[a.Node()].mapRefs[0])
	require.Equal(t, 0, m.nodes[b.Node()].mapRefs[0])

	// Re-referencing restores the cover.
	for _, s := range []network.Signal{x, y, z} {
		n := s.Node()
		m.cutRef(m.nc.Cuts(n).At(m.nodes[n].bestCut[0]), n, 0, false)
	}
	for i := range m.nodes {
		require.Equal(t, snapshot[i].mapRefs, m.nodes[i].mapRefs,
			"node %d refs not restored", i)
	}
}
