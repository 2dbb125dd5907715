//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

// Package cell implements the standard-cell library used by the
// technology mapper: gates with Boolean functions, areas and pin
// delays, NP-enumerated into a lookup table from function to
// candidate supergates.
package cell

import (
	"fmt"
	"math"

	"github.com/okarvonen/techmap/tt"
)

// NoGate marks a missing library gate identifier.
const NoGate = -1

// Pin holds the timing figures of one gate input.
type Pin struct {
	Name      string
	RiseBlock float64
	FallBlock float64
}

// Delay returns the worst-case pin-to-pin delay of the pin.
func (p Pin) Delay() float64 {
	return math.Max(p.RiseBlock, p.FallBlock)
}

// Gate is one library cell: a single-output Boolean function with an
// area cost and per-input pin delays. Gates are immutable once the
// library is constructed.
type Gate struct {
	ID       int
	Name     string
	Function tt.TT
	Area     float64
	Pins     []Pin
}

// NumVars returns the number of gate inputs.
func (g *Gate) NumVars() int {
	return g.Function.Vars
}

// PinDelay returns the worst-case delay of input pin i.
func (g *Gate) PinDelay(i int) float64 {
	return g.Pins[i].Delay()
}

// WorstDelay returns the worst pin-to-pin delay over all inputs.
func (g *Gate) WorstDelay() float64 {
	var worst float64
	for _, p := range g.Pins {
		worst = math.Max(worst, p.Delay())
	}
	return worst
}

func (g *Gate) String() string {
	return fmt.Sprintf("%s(a:%.2f)", g.Name, g.Area)
}

// NewGate creates a gate with uniform pin delay figures.
func NewGate(name string, fn tt.TT, area, delay float64) *Gate {
	pins := make([]Pin, fn.Vars)
	for i := range pins {
		pins[i] = Pin{
			Name:      fmt.Sprintf("%c", 'a'+i),
			RiseBlock: delay,
			FallBlock: delay,
		}
	}
	return &Gate{
		ID:       NoGate,
		Name:     name,
		Function: fn,
		Area:     area,
		Pins:     pins,
	}
}

// Supergate is one NP configuration of a library gate: the
// permutation and input-polarity witness needed to realize a specific
// function with the gate, together with its timing viewed from that
// configuration.
type Supergate struct {
	Root *Gate

	// Area of the root gate.
	Area float64
	// Worst pin-to-pin delay.
	WorstDelay float64
	// Pin-to-pin delay per cut-leaf position.
	TDelay []float64
	// Permutation from cut-leaf position to gate pin.
	Permutation []int
	// Input negation mask per cut-leaf position.
	Polarity uint8
}
