//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

// Package mapper implements cut-based technology mapping: an
// iterative covering algorithm that selects, for every network node,
// a cut and a library gate realizing it, jointly optimizing delay and
// area with area-flow estimation, exact-area recovery and optional
// switching-power rounds.
package mapper

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/markkurossi/tabulate"
	"github.com/sirupsen/logrus"
)

// Params specify mapper parameters.
type Params struct {
	// CutSize is the maximum number of leaves for a cut.
	CutSize int
	// CutLimit is the maximum number of priority cuts per node.
	CutLimit int
	// MinimizeTruth shrinks cut leaf sets to the true support.
	MinimizeTruth bool

	// RequiredTime is the global delay target; 0 means the best
	// achievable delay.
	RequiredTime float64

	// SkipDelayRound skips the initial delay-oriented round.
	SkipDelayRound bool

	// AreaFlowRounds is the number of area-flow optimization rounds.
	AreaFlowRounds int

	// ExactAreaRounds is the number of exact-area recovery rounds.
	ExactAreaRounds int

	// SwitchingRounds is the number of exact switching-power rounds.
	SwitchingRounds int

	// SwitchingPatterns is the number of random simulation patterns
	// used for switching-activity estimation.
	SwitchingPatterns int

	// EarlyExit stops area recovery when a round leaves both area and
	// delay unchanged. Purely an efficiency option; round counts stay
	// the upper bound.
	EarlyExit bool

	// Verbose logs per-round statistics.
	Verbose bool

	Logger *logrus.Logger
}

// NewParams returns mapper parameters with default values.
func NewParams() Params {
	return Params{
		CutSize:           5,
		CutLimit:          32,
		MinimizeTruth:     true,
		AreaFlowRounds:    1,
		ExactAreaRounds:   2,
		SwitchingRounds:   0,
		SwitchingPatterns: 2048,
		Logger:            logrus.StandardLogger(),
	}
}

// Stats holds the results and diagnostics of a mapping run.
type Stats struct {
	// Area and Delay of the final cover.
	Area  float64
	Delay float64

	// Power is the switching-weighted cost of the cover, computed
	// only when switching rounds are enabled.
	Power float64

	// RoundStats holds one line per mapping round.
	RoundStats []string

	// GateUsage is the per-gate instance histogram, rendered as a
	// table.
	GateUsage string

	// MappingError is set when the library cannot cover the network.
	MappingError bool

	// Time spent in mapping.
	MappingTime time.Duration
}

// Report writes the round statistics and final results.
func (st *Stats) Report(w io.Writer) {
	for _, round := range st.RoundStats {
		fmt.Fprintln(w, round)
	}
	fmt.Fprintf(w, "Area = %.2f; Delay = %.2f", st.Area, st.Delay)
	if st.Power != 0 {
		fmt.Fprintf(w, "; Power = %.2f", st.Power)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Mapping runtime = %s\n", st.MappingTime)
	if len(st.GateUsage) > 0 {
		fmt.Fprintf(w, "Gate usage:\n%s", st.GateUsage)
	}
}

// usageTable renders the gate usage histogram with one row per used
// gate plus a total row.
func usageTable(rows []usageRow, totalArea float64, totalInstances int) string {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Gate").SetAlign(tabulate.ML)
	tab.Header("Instances").SetAlign(tabulate.MR)
	tab.Header("Area").SetAlign(tabulate.MR)
	tab.Header("%").SetAlign(tabulate.MR)

	for _, r := range rows {
		row := tab.Row()
		row.Column(r.name)
		row.Column(fmt.Sprintf("%d", r.instances))
		row.Column(fmt.Sprintf("%.2f", r.area))
		row.Column(fmt.Sprintf("%.2f%%", r.share*100))
	}
	row := tab.Row()
	row.Column("TOTAL").SetFormat(tabulate.FmtBold)
	row.Column(fmt.Sprintf("%d", totalInstances)).SetFormat(tabulate.FmtBold)
	row.Column(fmt.Sprintf("%.2f", totalArea)).SetFormat(tabulate.FmtBold)
	row.Column("100.00%").SetFormat(tabulate.FmtBold)

	var buf bytes.Buffer
	tab.Print(&buf)
	return buf.String()
}

type usageRow struct {
	name      string
	instances int
	area      float64
	share     float64
}
