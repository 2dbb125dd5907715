//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

package cuts

const epsilon = 0.005

// SortMode selects the priority order maintained by a cut set.
type SortMode uint8

// Supported sort modes. SortNone appends at the end of the set; this
// replaces the undefined insertion position of the original
// formulation of the algorithm.
const (
	SortNone SortMode = iota
	SortDelay
	SortArea
)

// lessDelay orders cuts by arrival estimate, then flow, then size.
func lessDelay(a, b *Cut) bool {
	if a.Data.Delay < b.Data.Delay-epsilon {
		return true
	}
	if a.Data.Delay > b.Data.Delay+epsilon {
		return false
	}
	if a.Data.Flow < b.Data.Flow-epsilon {
		return true
	}
	if a.Data.Flow > b.Data.Flow+epsilon {
		return false
	}
	return a.Size() < b.Size()
}

// lessArea orders cuts by flow, then size, then arrival estimate.
func lessArea(a, b *Cut) bool {
	if a.Data.Flow < b.Data.Flow-epsilon {
		return true
	}
	if a.Data.Flow > b.Data.Flow+epsilon {
		return false
	}
	if a.Size() != b.Size() {
		return a.Size() < b.Size()
	}
	return a.Data.Delay < b.Data.Delay-epsilon
}

func less(a, b *Cut, mode SortMode) bool {
	switch mode {
	case SortDelay:
		return lessDelay(a, b)
	case SortArea:
		return lessArea(a, b)
	default:
		return false
	}
}

// Set is an ordered, capacity-bounded cut container. The best cut is
// always at index 0.
type Set struct {
	cuts []Cut
	max  int
}

// NewSet creates a cut set with the given capacity bound.
func NewSet(max int) *Set {
	return &Set{
		cuts: make([]Cut, 0, max),
		max:  max,
	}
}

// Clear removes all cuts.
func (s *Set) Clear() {
	s.cuts = s.cuts[:0]
}

// Size returns the number of cuts in the set.
func (s *Set) Size() int {
	return len(s.cuts)
}

// At returns the cut at the index.
func (s *Set) At(i int) *Cut {
	return &s.cuts[i]
}

// Best returns the first cut of the set.
func (s *Set) Best() *Cut {
	return &s.cuts[0]
}

// Add appends a cut to the end of the set without dominance checks.
// It is used to build sets known to be sorted and irredundant.
func (s *Set) Add(c *Cut) *Cut {
	s.cuts = append(s.cuts, *c)
	return &s.cuts[len(s.cuts)-1]
}

// IsDominated reports whether any cut in the set dominates the
// argument cut.
func (s *Set) IsDominated(c *Cut) bool {
	for i := range s.cuts {
		if s.cuts[i].Dominates(c) {
			return true
		}
	}
	return false
}

// SimpleInsert inserts a copy of the cut at its sorted position
// without dominance filtering. With SortNone the cut is appended at
// the end. If the set is full and the cut would be last, it is
// dropped; otherwise the worst cut is evicted.
func (s *Set) SimpleInsert(c *Cut, mode SortMode) {
	pos := len(s.cuts)
	if mode != SortNone {
		for pos = 0; pos < len(s.cuts); pos++ {
			if less(c, &s.cuts[pos], mode) {
				break
			}
		}
	}

	if len(s.cuts) == s.max {
		if pos == len(s.cuts) {
			return
		}
		s.cuts = s.cuts[:len(s.cuts)-1]
	}

	s.cuts = append(s.cuts, Cut{})
	copy(s.cuts[pos+1:], s.cuts[pos:])
	s.cuts[pos] = *c
}

// Insert removes the cuts dominated by the argument cut and inserts
// it at its sorted position. The caller is responsible for rejecting
// cuts that are themselves dominated before calling Insert.
func (s *Set) Insert(c *Cut, mode SortMode) {
	n := 0
	for i := range s.cuts {
		if c.Dominates(&s.cuts[i]) {
			continue
		}
		if n != i {
			s.cuts[n] = s.cuts[i]
		}
		n++
	}
	s.cuts = s.cuts[:n]

	s.SimpleInsert(c, mode)
}

// PromoteBest moves the cut at index to the front of the set,
// shifting the preceding cuts one position down.
func (s *Set) PromoteBest(index int) {
	if index == 0 {
		return
	}
	best := s.cuts[index]
	copy(s.cuts[1:index+1], s.cuts[0:index])
	s.cuts[0] = best
}

// Limit truncates the set to at most n cuts.
func (s *Set) Limit(n int) {
	if len(s.cuts) > n {
		s.cuts = s.cuts[:n]
	}
}
