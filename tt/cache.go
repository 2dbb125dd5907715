//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

package tt

// Cache stores truth tables under dense literal identifiers. A
// function and its complement share one stored table: even literals
// refer to the table as stored, odd literals to its complement.
//
// A new cache is seeded so that literal 0 is the constant-0 function,
// literal 1 its complement, literal 2 the first-variable projection
// and literal 3 its complement.
type Cache struct {
	tts   []TT
	index map[string]uint32
}

// Seed literals of a new cache.
const (
	LitConst0 uint32 = 0
	LitConst1 uint32 = 1
	LitVar0   uint32 = 2
	LitNVar0  uint32 = 3
)

// NewCache creates a truth table cache seeded with the constant-0
// function and the single-variable projection.
func NewCache() *Cache {
	c := &Cache{
		index: make(map[string]uint32),
	}
	c.Insert(Const0(0))
	c.Insert(NthVar(1, 0))
	return c
}

// Insert stores the truth table and returns its literal. If the table
// or its complement is already stored, the existing literal is
// returned.
func (c *Cache) Insert(t TT) uint32 {
	if lit, ok := c.index[t.Key()]; ok {
		return lit
	}
	neg := t.Not()
	if lit, ok := c.index[neg.Key()]; ok {
		return lit ^ 1
	}
	lit := uint32(len(c.tts)) << 1
	c.tts = append(c.tts, t.Clone())
	c.index[t.Key()] = lit
	return lit
}

// Lookup returns the truth table stored under the literal.
func (c *Cache) Lookup(lit uint32) TT {
	t := c.tts[lit>>1]
	if lit&1 == 1 {
		return t.Not()
	}
	return t
}

// Size returns the number of distinct stored tables.
func (c *Cache) Size() int {
	return len(c.tts)
}
