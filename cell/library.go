//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

package cell

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/okarvonen/techmap/tt"
)

// Params configures library construction.
type Params struct {
	// MaxFanin is the largest gate fanin the library supports. Gates
	// with more inputs are skipped with a warning.
	MaxFanin int

	Verbose bool
	Logger  *logrus.Logger
}

// NewParams returns library parameters with default values.
func NewParams() Params {
	return Params{
		MaxFanin: 6,
		Logger:   logrus.StandardLogger(),
	}
}

// Library holds the NP-enumerated gate configurations hashed by
// function. The library is immutable and read-only after
// construction and may be shared across mapping runs.
type Library struct {
	gates    []*Gate
	maxFanin int
	entries  map[string][]*Supergate

	invArea  float64
	invDelay float64
	invID    int

	bufArea  float64
	bufDelay float64
	bufID    int
}

// NewLibrary creates a technology library from the gate list. Every
// NP configuration (input permutation and input negations) of every
// gate is enumerated and inserted into the function lookup table,
// each candidate list pre-sorted by ascending area, pin count and
// gate id.
func NewLibrary(gates []*Gate, params Params) *Library {
	log := params.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	lib := &Library{
		maxFanin: params.MaxFanin,
		entries:  make(map[string][]*Supergate),
		invID:    NoGate,
		bufID:    NoGate,
	}

	for _, g := range gates {
		if g.NumVars() > lib.maxFanin {
			log.Warnf("library: gate %s ignored, too many inputs (%d > %d)",
				g.Name, g.NumVars(), lib.maxFanin)
			continue
		}
		gate := &Gate{
			ID:       len(lib.gates),
			Name:     g.Name,
			Function: g.Function.Clone(),
			Area:     g.Area,
			Pins:     g.Pins,
		}
		lib.gates = append(lib.gates, gate)

		lib.checkUnary(gate)

		count := lib.enumerateNP(gate)
		if params.Verbose {
			log.Infof("library: gate %s, %d inputs, %d np entries",
				gate.Name, gate.NumVars(), count)
		}
	}

	if lib.invID == NoGate {
		log.Warnf("library: no inverter gate detected")
	}
	return lib
}

// checkUnary records the designated inverter and buffer gates: the
// smallest-area single-input complementing and non-complementing
// gates.
func (lib *Library) checkUnary(g *Gate) {
	if g.NumVars() != 1 {
		return
	}
	delay := g.WorstDelay()
	if g.Function.Equal(tt.NthVar(1, 0).Not()) {
		if lib.invID == NoGate || g.Area < lib.invArea {
			lib.invArea = g.Area
			lib.invDelay = delay
			lib.invID = g.ID
		}
	} else if g.Function.Equal(tt.NthVar(1, 0)) {
		if lib.bufID == NoGate || g.Area < lib.bufArea {
			lib.bufArea = g.Area
			lib.bufDelay = delay
			lib.bufID = g.ID
		}
	}
}

// enumerateNP inserts every NP configuration of the gate into the
// lookup table and returns the number of distinct entries added.
func (lib *Library) enumerateNP(g *Gate) int {
	k := g.NumVars()
	var count int

	forEachPermutation(k, func(perm []int) {
		args := make([]tt.TT, k)
		for neg := 0; neg < 1<<k; neg++ {
			for i := 0; i < k; i++ {
				v := tt.NthVar(k, i)
				if (neg>>i)&1 == 1 {
					v = v.Not()
				}
				args[perm[i]] = v
			}
			key := tt.Compose(g.Function, args)

			sg := &Supergate{
				Root:        g,
				Area:        g.Area,
				WorstDelay:  g.WorstDelay(),
				TDelay:      make([]float64, k),
				Permutation: append([]int(nil), perm...),
				Polarity:    uint8(neg),
			}
			for i := 0; i < k; i++ {
				sg.TDelay[i] = g.PinDelay(perm[i])
			}
			if lib.insert(key, sg) {
				count++
			}
		}
	})
	return count
}

// insert adds the supergate under the function key, keeping the
// candidate list ordered by ascending area, pin count and gate id.
// Duplicated configurations with identical polarity and pin delays
// are skipped.
func (lib *Library) insert(key tt.TT, sg *Supergate) bool {
	id := key.ExtendTo(lib.maxFanin).Key()
	v := lib.entries[id]

	pos := sort.Search(len(v), func(i int) bool {
		return !supergateLess(v[i], sg)
	})

	// Skip symmetric duplicates of the same gate.
	for i := pos; i < len(v); i++ {
		if v[i].Root.ID != sg.Root.ID {
			break
		}
		if v[i].Polarity == sg.Polarity && sameDelays(v[i].TDelay, sg.TDelay) {
			return false
		}
	}

	v = append(v, nil)
	copy(v[pos+1:], v[pos:])
	v[pos] = sg
	lib.entries[id] = v
	return true
}

func supergateLess(a, b *Supergate) bool {
	if a.Area != b.Area {
		return a.Area < b.Area
	}
	if a.Root.NumVars() != b.Root.NumVars() {
		return a.Root.NumVars() < b.Root.NumVars()
	}
	return a.Root.ID < b.Root.ID
}

func sameDelays(a, b []float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

// Supergates returns the candidate gates realizing the function, or
// nil if the library contains no match. The function is padded to the
// library's maximum fanin before lookup.
func (lib *Library) Supergates(f tt.TT) []*Supergate {
	if f.Vars > lib.maxFanin {
		return nil
	}
	return lib.entries[f.ExtendTo(lib.maxFanin).Key()]
}

// InverterInfo returns the area, delay and gate id of the designated
// inverter. The id is NoGate when the library has no inverter.
func (lib *Library) InverterInfo() (area, delay float64, id int) {
	return lib.invArea, lib.invDelay, lib.invID
}

// BufferInfo returns the area, delay and gate id of the designated
// buffer. The id is NoGate when the library has no buffer.
func (lib *Library) BufferInfo() (area, delay float64, id int) {
	return lib.bufArea, lib.bufDelay, lib.bufID
}

// MaxFanin returns the largest supported gate fanin.
func (lib *Library) MaxFanin() int {
	return lib.maxFanin
}

// Gates returns the library gates in id order.
func (lib *Library) Gates() []*Gate {
	return lib.gates
}

// Gate returns the gate with the given id.
func (lib *Library) Gate(id int) *Gate {
	return lib.gates[id]
}

// forEachPermutation calls fn for every permutation of 0..n-1 using
// Heap's algorithm. fn must not retain the slice.
func forEachPermutation(n int, fn func(perm []int)) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	var generate func(k int)
	generate = func(k int) {
		if k <= 1 {
			fn(perm)
			return
		}
		for i := 0; i < k; i++ {
			generate(k - 1)
			if k%2 == 0 {
				perm[i], perm[k-1] = perm[k-1], perm[i]
			} else {
				perm[0], perm[k-1] = perm[k-1], perm[0]
			}
		}
	}
	generate(n)
}
