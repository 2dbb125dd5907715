//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

// Package tt implements bit-parallel truth tables for Boolean
// functions of up to MaxVars variables, plus the composition and
// support-minimization operations needed by cut enumeration and
// cell-library matching.
package tt

import (
	"fmt"
	"math/bits"
)

// MaxVars is the largest supported function arity.
const MaxVars = 16

var projections = [6]uint64{
	0xAAAAAAAAAAAAAAAA,
	0xCCCCCCCCCCCCCCCC,
	0xF0F0F0F0F0F0F0F0,
	0xFF00FF00FF00FF00,
	0xFFFF0000FFFF0000,
	0xFFFFFFFF00000000,
}

// TT is a truth table over Vars variables. Bit m of the table is the
// function value for the input minterm m (variable i is bit i of m).
// Unused high bits of the last word are always zero.
type TT struct {
	Vars  int
	Words []uint64
}

func numWords(vars int) int {
	if vars <= 6 {
		return 1
	}
	return 1 << (vars - 6)
}

func mask(vars int) uint64 {
	if vars >= 6 {
		return ^uint64(0)
	}
	return (uint64(1) << (1 << vars)) - 1
}

// New creates the constant-0 function over vars variables.
func New(vars int) TT {
	if vars < 0 || vars > MaxVars {
		panic(fmt.Sprintf("tt: invalid variable count %d", vars))
	}
	return TT{
		Vars:  vars,
		Words: make([]uint64, numWords(vars)),
	}
}

// Const0 creates the constant-0 function over vars variables.
func Const0(vars int) TT {
	return New(vars)
}

// Const1 creates the constant-1 function over vars variables.
func Const1(vars int) TT {
	t := New(vars)
	for i := range t.Words {
		t.Words[i] = ^uint64(0)
	}
	t.Words[len(t.Words)-1] &= mask(vars)
	if vars < 6 {
		t.Words[0] = mask(vars)
	}
	return t
}

// NthVar creates the projection function of variable i over vars
// variables.
func NthVar(vars, i int) TT {
	if i >= vars {
		panic(fmt.Sprintf("tt: variable %d out of range for %d vars",
			i, vars))
	}
	t := New(vars)
	if i < 6 {
		p := projections[i] & mask(vars)
		for w := range t.Words {
			t.Words[w] = p
		}
	} else {
		for w := range t.Words {
			if (w>>(i-6))&1 == 1 {
				t.Words[w] = ^uint64(0)
			}
		}
	}
	return t
}

// Clone returns a deep copy of the truth table.
func (t TT) Clone() TT {
	r := TT{
		Vars:  t.Vars,
		Words: make([]uint64, len(t.Words)),
	}
	copy(r.Words, t.Words)
	return r
}

// NumBits returns the number of minterms of the function.
func (t TT) NumBits() int {
	return 1 << t.Vars
}

// Bit returns the function value for minterm m.
func (t TT) Bit(m int) bool {
	return (t.Words[m>>6]>>(m&63))&1 == 1
}

// SetBit sets the function value for minterm m to 1.
func (t TT) SetBit(m int) {
	t.Words[m>>6] |= uint64(1) << (m & 63)
}

// Not returns the complement of the function.
func (t TT) Not() TT {
	r := New(t.Vars)
	for i, w := range t.Words {
		r.Words[i] = ^w
	}
	if t.Vars < 6 {
		r.Words[0] &= mask(t.Vars)
	}
	return r
}

// And returns the conjunction of t and o.
func (t TT) And(o TT) TT {
	checkVars(t, o)
	r := New(t.Vars)
	for i := range t.Words {
		r.Words[i] = t.Words[i] & o.Words[i]
	}
	return r
}

// Or returns the disjunction of t and o.
func (t TT) Or(o TT) TT {
	checkVars(t, o)
	r := New(t.Vars)
	for i := range t.Words {
		r.Words[i] = t.Words[i] | o.Words[i]
	}
	return r
}

// Xor returns the exclusive-or of t and o.
func (t TT) Xor(o TT) TT {
	checkVars(t, o)
	r := New(t.Vars)
	for i := range t.Words {
		r.Words[i] = t.Words[i] ^ o.Words[i]
	}
	return r
}

func checkVars(a, b TT) {
	if a.Vars != b.Vars {
		panic(fmt.Sprintf("tt: arity mismatch %d vs %d", a.Vars, b.Vars))
	}
}

// Equal tests t and o for functional equality.
func (t TT) Equal(o TT) bool {
	if t.Vars != o.Vars {
		return false
	}
	for i := range t.Words {
		if t.Words[i] != o.Words[i] {
			return false
		}
	}
	return true
}

// IsConst0 tests whether the function is constant 0.
func (t TT) IsConst0() bool {
	for _, w := range t.Words {
		if w != 0 {
			return false
		}
	}
	return true
}

// IsConst1 tests whether the function is constant 1.
func (t TT) IsConst1() bool {
	return t.Not().IsConst0()
}

// CountOnes returns the number of true minterms.
func (t TT) CountOnes() int {
	var count int
	for _, w := range t.Words {
		count += bits.OnesCount64(w)
	}
	return count
}

// Key returns a map key uniquely identifying the function, including
// its arity.
func (t TT) Key() string {
	buf := make([]byte, 1+8*len(t.Words))
	buf[0] = byte(t.Vars)
	for i, w := range t.Words {
		for j := 0; j < 8; j++ {
			buf[1+i*8+j] = byte(w >> (8 * j))
		}
	}
	return string(buf)
}

func (t TT) String() string {
	str := fmt.Sprintf("%d:", t.Vars)
	digits := (t.NumBits() + 3) / 4
	if digits < 1 {
		digits = 1
	}
	for i := digits - 1; i >= 0; i-- {
		str += fmt.Sprintf("%x", (t.Words[i*4>>6]>>((i*4)&63))&0xf)
	}
	return str
}

// ExtendTo pads the function with don't-care variables up to vars.
func (t TT) ExtendTo(vars int) TT {
	if vars < t.Vars {
		panic("tt: ExtendTo to fewer variables")
	}
	if vars == t.Vars {
		return t.Clone()
	}
	r := New(vars)
	if t.Vars >= 6 {
		for w := range r.Words {
			r.Words[w] = t.Words[w%len(t.Words)]
		}
		return r
	}
	p := t.Words[0]
	for width := 1 << t.Vars; width < 64; width *= 2 {
		p |= p << width
	}
	p &= mask(vars)
	for w := range r.Words {
		r.Words[w] = p
	}
	return r
}

// ShrinkTo drops the don't-care variables above vars. The function
// must not depend on the dropped variables.
func (t TT) ShrinkTo(vars int) TT {
	if vars > t.Vars {
		panic("tt: ShrinkTo to more variables")
	}
	r := New(vars)
	copy(r.Words, t.Words)
	r.Words[len(r.Words)-1] &= mask(vars)
	if vars < 6 {
		r.Words[0] &= mask(vars)
	}
	return r
}

// Expand remaps the function's variables into a larger support: the
// i'th variable of t becomes variable positions[i] of the result,
// which ranges over vars variables. positions must be strictly
// increasing.
func (t TT) Expand(positions []int, vars int) TT {
	if len(positions) != t.Vars {
		panic("tt: Expand position count mismatch")
	}
	r := New(vars)
	for m := 0; m < r.NumBits(); m++ {
		var src int
		for i, pos := range positions {
			if (m>>pos)&1 == 1 {
				src |= 1 << i
			}
		}
		if t.Bit(src) {
			r.SetBit(m)
		}
	}
	return r
}

// HasVar tests whether the function depends on variable i.
func (t TT) HasVar(i int) bool {
	return !t.Cofactor(i, false).Equal(t.Cofactor(i, true))
}

// Cofactor returns the cofactor of the function with variable i fixed
// to value. The result keeps the original arity.
func (t TT) Cofactor(i int, value bool) TT {
	r := New(t.Vars)
	for m := 0; m < t.NumBits(); m++ {
		src := m
		if value {
			src |= 1 << i
		} else {
			src &^= 1 << i
		}
		if t.Bit(src) {
			r.SetBit(m)
		}
	}
	return r
}

// MinBase shrinks the function to its true support. It returns the
// shrunken function and the indices of the variables it depends on.
func (t TT) MinBase() (TT, []int) {
	var support []int
	for i := 0; i < t.Vars; i++ {
		if t.HasVar(i) {
			support = append(support, i)
		}
	}
	if len(support) == t.Vars {
		return t.Clone(), support
	}
	r := New(len(support))
	for m := 0; m < r.NumBits(); m++ {
		var src int
		for j, v := range support {
			if (m>>j)&1 == 1 {
				src |= 1 << v
			}
		}
		if t.Bit(src) {
			r.SetBit(m)
		}
	}
	return r, support
}

// Compose evaluates fn over the argument functions: the result is
// fn(args[0], ..., args[k-1]) expressed over the arguments' common
// support.
func Compose(fn TT, args []TT) TT {
	if len(args) != fn.Vars {
		panic("tt: Compose argument count mismatch")
	}
	if len(args) == 0 {
		if fn.Bit(0) {
			return Const1(0)
		}
		return Const0(0)
	}
	vars := args[0].Vars
	r := New(vars)
	for m := 0; m < fn.NumBits(); m++ {
		if !fn.Bit(m) {
			continue
		}
		term := Const1(vars)
		for i, arg := range args {
			if (m>>i)&1 == 1 {
				term = term.And(arg)
			} else {
				term = term.And(arg.Not())
			}
		}
		r = r.Or(term)
	}
	return r
}
