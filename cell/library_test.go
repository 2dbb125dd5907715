//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

package cell

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/okarvonen/techmap/tt"
)

func newTestParams() Params {
	ps := NewParams()
	ps.Logger = logrus.New()
	return ps
}

func TestUnaryDetection(t *testing.T) {
	lib := NewLibrary(MiniLibrary(), newTestParams())

	area, delay, id := lib.InverterInfo()
	if id == NoGate {
		t.Fatalf("no inverter detected")
	}
	if lib.Gate(id).Name != "inv1" || area != 1 || delay != 0.9 {
		t.Errorf("inverter: %s area=%v delay=%v", lib.Gate(id).Name,
			area, delay)
	}

	area, delay, id = lib.BufferInfo()
	if id == NoGate {
		t.Fatalf("no buffer detected")
	}
	if lib.Gate(id).Name != "buf" || area != 2 || delay != 1 {
		t.Errorf("buffer: %s area=%v delay=%v", lib.Gate(id).Name,
			area, delay)
	}
}

func TestSupergateLookup(t *testing.T) {
	lib := NewLibrary(MiniLibrary(), newTestParams())

	and := tt.NthVar(2, 0).And(tt.NthVar(2, 1))

	// AND is realized by NOR over negated inputs; NAND only matches
	// the complement.
	pos := lib.Supergates(and)
	if pos == nil {
		t.Fatalf("no match for AND")
	}
	if pos[0].Root.Name != "nor2" || pos[0].Polarity != 3 {
		t.Errorf("best AND match: %s polarity=%d",
			pos[0].Root.Name, pos[0].Polarity)
	}

	neg := lib.Supergates(and.Not())
	if neg == nil {
		t.Fatalf("no match for NAND")
	}
	if neg[0].Root.Name != "nand2" || neg[0].Polarity != 0 {
		t.Errorf("best NAND match: %s polarity=%d",
			neg[0].Root.Name, neg[0].Polarity)
	}

	// Candidates are sorted by ascending area.
	for i := 1; i < len(pos); i++ {
		if pos[i].Area < pos[i-1].Area {
			t.Errorf("candidates not sorted by area")
		}
	}
}

func TestSupergateWitness(t *testing.T) {
	lib := NewLibrary(MiniLibrary(), newTestParams())

	f := tt.NthVar(3, 0).And(tt.NthVar(3, 1)).Or(tt.NthVar(3, 2)).Not()

	// Every candidate's permutation and polarity witness must
	// reconstruct the queried function from the gate function.
	for _, sg := range lib.Supergates(f) {
		k := sg.Root.NumVars()
		args := make([]tt.TT, k)
		for i := 0; i < k; i++ {
			v := tt.NthVar(k, i)
			if (sg.Polarity>>i)&1 == 1 {
				v = v.Not()
			}
			args[sg.Permutation[i]] = v
		}
		composed := tt.Compose(sg.Root.Function, args)
		if !composed.Equal(f) {
			t.Errorf("witness of %s does not reconstruct the function",
				sg.Root.Name)
		}
	}
}

func TestSymmetricPermutations(t *testing.T) {
	a, b, c := tt.NthVar(3, 0), tt.NthVar(3, 1), tt.NthVar(3, 2)
	maj := a.And(b).Or(a.And(c)).Or(b.And(c))

	gates := []*Gate{
		NewGate("inv", tt.NthVar(1, 0).Not(), 1, 1),
		NewGate("maj3", maj, 4, 2),
	}
	lib := NewLibrary(gates, newTestParams())

	// All input permutations of the fully symmetric gate collapse to
	// one entry with identical area and delay.
	sgs := lib.Supergates(maj)
	if len(sgs) != 1 {
		t.Fatalf("majority entries: got %d, expected 1", len(sgs))
	}
	if sgs[0].Root.Name != "maj3" || sgs[0].Polarity != 0 {
		t.Errorf("majority match: %s polarity=%d",
			sgs[0].Root.Name, sgs[0].Polarity)
	}
	if sgs[0].Area != 4 || sgs[0].WorstDelay != 2 {
		t.Errorf("majority figures: area=%v delay=%v",
			sgs[0].Area, sgs[0].WorstDelay)
	}
}

func TestConstantGates(t *testing.T) {
	lib := NewLibrary(MiniLibrary(), newTestParams())

	zero := lib.Supergates(tt.Const0(0))
	if zero == nil || zero[0].Root.Name != "zero" {
		t.Errorf("constant 0 lookup")
	}
	one := lib.Supergates(tt.Const1(0))
	if one == nil || one[0].Root.Name != "one" {
		t.Errorf("constant 1 lookup")
	}
}

func TestTooWideGate(t *testing.T) {
	wide := tt.Const1(7)
	for i := 0; i < 7; i++ {
		wide = wide.And(tt.NthVar(7, i))
	}

	gates := []*Gate{
		NewGate("inv", tt.NthVar(1, 0).Not(), 1, 1),
		NewGate("and7", wide, 7, 3),
	}
	lib := NewLibrary(gates, newTestParams())

	if len(lib.Gates()) != 1 {
		t.Errorf("too-wide gate not skipped: %d gates", len(lib.Gates()))
	}
	if lib.Supergates(wide) != nil {
		t.Errorf("too-wide gate matched")
	}
}

func TestMaxFaninGuard(t *testing.T) {
	lib := NewLibrary(MiniLibrary(), newTestParams())

	f := tt.Const1(lib.MaxFanin() + 1)
	if lib.Supergates(f) != nil {
		t.Errorf("lookup beyond the library fanin succeeded")
	}
}
