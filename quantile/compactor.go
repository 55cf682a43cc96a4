package quantile

import (
	"io"
	"math/rand"
	"slices"

	"github.com/caesiumdb/caesium/codec"
)

// compactor holds one level's retained values: an ordered multiset that
// fills to capacity, then halves itself via compact, promoting every
// other element (chosen by a random phase bit) to the level above at
// double the weight.
//
// Grounded on original_source/caesium-core/src/quantile/compactor.rs.
// The merge-sorted branchless insert from that file is not reproduced
// here: mergeSorted, a plain two-pointer loop with ordinary
// comparisons, is just as fast and a great deal more readable,
// so this port trades the original's CPU-level branch-avoidance trick
// for clarity.
type compactor struct {
	data     []uint32
	isSorted bool
}

func newCompactor() *compactor {
	return &compactor{isSorted: true}
}

func (c *compactor) clone() *compactor {
	cp := &compactor{
		data:     make([]uint32, len(c.data)),
		isSorted: c.isSorted,
	}
	copy(cp.data, c.data)
	return cp
}

func (c *compactor) size() int {
	return len(c.data)
}

func (c *compactor) values() []uint32 {
	c.ensureSorted()
	return c.data
}

// insert appends a single value, leaving the compactor unsorted until
// the next operation that needs sorted order.
func (c *compactor) insert(v uint32) {
	c.data = append(c.data, v)
	c.isSorted = false
}

// insertSorted merges an already-sorted slice into the compactor.
func (c *compactor) insertSorted(sorted []uint32) {
	c.ensureSorted()
	c.data = mergeSorted(c.data, sorted)
}

// insertFromOther absorbs all of other's values into c.
func (c *compactor) insertFromOther(other *compactor) {
	other.ensureSorted()
	c.insertSorted(other.data)
}

// compact halves the compactor's contents. A coin flip picks whether
// even or odd positions (in sorted order) survive; the survivors are
// appended to overflow (which the caller promotes to the level above
// at double weight) and the compactor is left holding only the single
// leftover element when its size was odd.
func (c *compactor) compact(overflow *[]uint32, rng *rand.Rand) {
	c.ensureSorted()
	n := len(c.data)

	var leftover uint32
	hasLeftover := n%2 != 0
	if hasLeftover {
		leftover = c.data[n-1]
	}

	start := 0
	if rng.Intn(2) == 1 {
		start = 1
	}
	limit := n
	if hasLeftover {
		limit = n - 1
	}
	for idx := start; idx < limit; idx += 2 {
		*overflow = append(*overflow, c.data[idx])
	}

	c.data = c.data[:0]
	if hasLeftover {
		c.data = append(c.data, leftover)
	}
	c.isSorted = true
}

func (c *compactor) ensureSorted() {
	if !c.isSorted {
		slices.Sort(c.data)
		c.isSorted = true
	}
}

func mergeSorted(a, b []uint32) []uint32 {
	result := make([]uint32, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			result = append(result, a[i])
			i++
		} else {
			result = append(result, b[j])
			j++
		}
	}
	result = append(result, a[i:]...)
	result = append(result, b[j:]...)
	return result
}

// encode writes the compactor's values in ascending-delta form, always
// sorting first so that encoded output is stable and merge-friendly.
func (c *compactor) encode(w io.Writer) error {
	c.ensureSorted()
	return codec.WriteAscendingDelta(w, c.data)
}

func decodeCompactor(r io.Reader) (*compactor, error) {
	data, err := codec.ReadAscendingDelta(r)
	if err != nil {
		return nil, err
	}
	return &compactor{data: data, isSorted: true}, nil
}
