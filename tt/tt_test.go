//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

package tt

import (
	"testing"
)

func TestBasicOps(t *testing.T) {
	a := NthVar(2, 0)
	b := NthVar(2, 1)

	and := a.And(b)
	if and.CountOnes() != 1 || !and.Bit(3) {
		t.Errorf("AND: got %s", and)
	}
	or := a.Or(b)
	if or.CountOnes() != 3 || or.Bit(0) {
		t.Errorf("OR: got %s", or)
	}
	xor := a.Xor(b)
	if !xor.Bit(1) || !xor.Bit(2) || xor.Bit(0) || xor.Bit(3) {
		t.Errorf("XOR: got %s", xor)
	}
	if !a.Not().Not().Equal(a) {
		t.Errorf("double complement changed function")
	}
	if !Const0(3).Not().Equal(Const1(3)) {
		t.Errorf("complement of constant 0")
	}
	if !Const1(0).Bit(0) || Const0(0).Bit(0) {
		t.Errorf("0-ary constants")
	}
}

func TestNthVarWide(t *testing.T) {
	// Variable above the word boundary.
	v := NthVar(8, 7)
	for m := 0; m < v.NumBits(); m++ {
		if v.Bit(m) != ((m>>7)&1 == 1) {
			t.Fatalf("NthVar(8, 7) wrong at minterm %d", m)
		}
	}
}

func TestExtendShrink(t *testing.T) {
	and := NthVar(2, 0).And(NthVar(2, 1))

	ext := and.ExtendTo(6)
	if ext.Vars != 6 {
		t.Fatalf("ExtendTo: got %d vars", ext.Vars)
	}
	for m := 0; m < ext.NumBits(); m++ {
		if ext.Bit(m) != and.Bit(m&3) {
			t.Fatalf("ExtendTo wrong at minterm %d", m)
		}
	}
	if !ext.ShrinkTo(2).Equal(and) {
		t.Errorf("ShrinkTo did not restore the function")
	}

	wide := and.ExtendTo(8)
	if !wide.ShrinkTo(2).Equal(and) {
		t.Errorf("multi-word extend-shrink round trip")
	}
}

func TestExpand(t *testing.T) {
	and := NthVar(2, 0).And(NthVar(2, 1))

	// x0 AND x1 over positions {0, 2} becomes x0 AND x2.
	e := and.Expand([]int{0, 2}, 3)
	expected := NthVar(3, 0).And(NthVar(3, 2))
	if !e.Equal(expected) {
		t.Errorf("Expand: got %s, expected %s", e, expected)
	}
}

func TestCofactor(t *testing.T) {
	// mux = s ? b : a, with s = x2.
	a, b, s := NthVar(3, 0), NthVar(3, 1), NthVar(3, 2)
	mux := s.And(b).Or(s.Not().And(a))

	if !mux.Cofactor(2, false).Equal(a) {
		t.Errorf("negative cofactor is not a")
	}
	if !mux.Cofactor(2, true).Equal(b) {
		t.Errorf("positive cofactor is not b")
	}
	if !mux.HasVar(2) || !mux.HasVar(0) {
		t.Errorf("support detection")
	}
}

func TestMinBase(t *testing.T) {
	// Function over 4 vars depending only on x1 and x3.
	f := NthVar(4, 1).And(NthVar(4, 3))

	shrunk, support := f.MinBase()
	if len(support) != 2 || support[0] != 1 || support[1] != 3 {
		t.Fatalf("MinBase support: got %v", support)
	}
	expected := NthVar(2, 0).And(NthVar(2, 1))
	if !shrunk.Equal(expected) {
		t.Errorf("MinBase function: got %s, expected %s", shrunk, expected)
	}

	// Full-support function is returned unchanged.
	g := NthVar(2, 0).Xor(NthVar(2, 1))
	shrunk, support = g.MinBase()
	if len(support) != 2 || !shrunk.Equal(g) {
		t.Errorf("MinBase of full-support function")
	}
}

func TestCompose(t *testing.T) {
	// AND of (x0, NOT x1) over 2 variables.
	and := NthVar(2, 0).And(NthVar(2, 1))
	args := []TT{NthVar(2, 0), NthVar(2, 1).Not()}

	c := Compose(and, args)
	expected := NthVar(2, 0).And(NthVar(2, 1).Not())
	if !c.Equal(expected) {
		t.Errorf("Compose: got %s, expected %s", c, expected)
	}

	// 0-ary composition selects the constant.
	if !Compose(Const1(0), nil).IsConst1() {
		t.Errorf("Compose of constant 1")
	}
}

func TestCache(t *testing.T) {
	c := NewCache()

	if !c.Lookup(LitConst0).IsConst0() {
		t.Fatalf("literal 0 is not constant 0")
	}
	if !c.Lookup(LitConst1).IsConst1() {
		t.Fatalf("literal 1 is not constant 1")
	}
	if !c.Lookup(LitVar0).Equal(NthVar(1, 0)) {
		t.Fatalf("literal 2 is not the first projection")
	}
	if !c.Lookup(LitNVar0).Equal(NthVar(1, 0).Not()) {
		t.Fatalf("literal 3 is not the complemented projection")
	}

	and := NthVar(2, 0).And(NthVar(2, 1))
	lit := c.Insert(and)
	if lit&1 != 0 {
		t.Errorf("fresh insert got complement literal %d", lit)
	}
	if c.Insert(and) != lit {
		t.Errorf("duplicate insert changed literal")
	}

	// The complement folds onto the stored table.
	nlit := c.Insert(and.Not())
	if nlit != lit^1 {
		t.Errorf("complement literal: got %d, expected %d", nlit, lit^1)
	}
	if !c.Lookup(nlit).Equal(and.Not()) {
		t.Errorf("complement lookup")
	}

	size := c.Size()
	c.Insert(and)
	c.Insert(and.Not())
	if c.Size() != size {
		t.Errorf("reinsertion grew the cache")
	}
}
