// Package chapter decides which image variant backs each page of a chapter
// and which neighbouring pages are worth keeping around.
package chapter

import "github.com/pders01/tankobon/internal/catalog"

// DefaultLowCount is how many leading pages are served from the
// bandwidth-saving variant.
const DefaultLowCount = 5

// PageRef names the file that backs one 1-based page position.
type PageRef struct {
	Position int
	Tier     catalog.Fidelity
	FileName string
}

// Plan is an immutable view over the two file lists of a page set.
type Plan struct {
	low      []string
	full     []string
	lowCount int
}

// NewPlan builds a plan. A negative lowCount is treated as zero.
func NewPlan(low, full []string, lowCount int) Plan {
	return Plan{low: low, full: full, lowCount: max(lowCount, 0)}
}

// FromPageSet builds a plan from a fetched page set.
func FromPageSet(set catalog.PageSet, lowCount int) Plan {
	return NewPlan(set.Low, set.Full, lowCount)
}

// Len is the number of pages, the longer of the two lists.
func (p Plan) Len() int { return max(len(p.low), len(p.full)) }

// Empty reports whether there is nothing to read.
func (p Plan) Empty() bool { return p.Len() == 0 }

// Resolve maps a position to its file. Leading pages prefer the low variant
// and the rest prefer full; whichever list lacks the position falls back to
// the other one.
func (p Plan) Resolve(pos int) (PageRef, bool) {
	if pos < 1 || pos > p.Len() {
		return PageRef{}, false
	}
	i := pos - 1
	hasLow := i < len(p.low)
	hasFull := i < len(p.full)

	switch {
	case pos <= p.lowCount && hasLow:
		return PageRef{Position: pos, Tier: catalog.LowFidelity, FileName: p.low[i]}, true
	case hasFull:
		return PageRef{Position: pos, Tier: catalog.FullFidelity, FileName: p.full[i]}, true
	default:
		return PageRef{Position: pos, Tier: catalog.LowFidelity, FileName: p.low[i]}, true
	}
}

// Clamp pins pos into [1, Len]. An empty plan clamps to 1.
func (p Plan) Clamp(pos int) int {
	if pos < 1 || p.Len() == 0 {
		return 1
	}
	return min(pos, p.Len())
}

// Next is the following position, saturating at the last page.
func (p Plan) Next(pos int) int { return p.Clamp(pos + 1) }

// Prev is the preceding position, saturating at the first page.
func (p Plan) Prev(pos int) int { return p.Clamp(pos - 1) }

// Window lists up to k positions after pos that exist in the plan.
func (p Plan) Window(pos, k int) []int {
	var out []int
	for next := pos + 1; next <= pos+k && next <= p.Len(); next++ {
		if next >= 1 {
			out = append(out, next)
		}
	}
	return out
}

// Keep reports whether a loaded page at pos is close enough to current to
// stay in memory.
func Keep(current, pos, radius int) bool {
	d := pos - current
	if d < 0 {
		d = -d
	}
	return d <= radius
}
