package quantile

import (
	"math"
	"slices"
)

// epsilon bounds the normalized rank error a query sketch tolerates
// when computing a quantile's lower/upper bound, estimated empirically
// for the sketch's capacity tuning.
//
// Grounded on original_source/caesium-core/src/quantile/query.rs.
const epsilon = 0.015

// WeightedValue pairs a retained sketch value with the weight (implicit
// multiplicity) it represents: compactor values carry weight 2^level,
// the sampler's pending value carries its accumulated window weight.
type WeightedValue struct {
	Weight uint64
	Value  uint32
}

// ApproxQuantile is the result of a rank query: the sketch's total
// insert count, the approximate value at the requested rank, and a
// [lower_bound, upper_bound] interval the true value is expected to
// fall within given the sketch's error bound.
type ApproxQuantile struct {
	Count       uint64
	ApproxValue uint32
	LowerBound  uint32
	UpperBound  uint32
}

type storedValue struct {
	value       uint32
	lowestRank  uint64
	highestRank uint64
}

// WeightedQuerySketch answers rank queries over the weighted values a
// Sketch flattens out via ToWeightedValues. Build one per query batch:
// it is read-only once constructed.
type WeightedQuerySketch struct {
	data        []storedValue
	minmax      minMax
	count       uint64
	totalWeight uint64
}

// NewWeightedQuerySketch builds a query sketch from a sketch's raw
// insert count, running minmax, and flattened weighted values. count
// need not equal the sum of weights: randomness in the sampler can
// make them diverge slightly, and count (the true number of inserts)
// is what callers should trust for reporting.
func NewWeightedQuerySketch(count uint64, mm minMax, values []WeightedValue) *WeightedQuerySketch {
	var totalWeight uint64
	for _, v := range values {
		totalWeight += v.Weight
	}
	return &WeightedQuerySketch{
		data:        calculateStoredValues(values),
		minmax:      mm,
		count:       count,
		totalWeight: totalWeight,
	}
}

// Size reports the number of distinct values retained after dedup.
func (s *WeightedQuerySketch) Size() int { return len(s.data) }

// Query returns the approximate value at rank phi (0 < phi < 1), or
// false if the sketch has never received an insert.
func (s *WeightedQuerySketch) Query(phi float64) (ApproxQuantile, bool) {
	if phi <= 0 || phi >= 1 {
		panic("quantile: phi must be in (0, 1)")
	}
	if s.count == 0 {
		return ApproxQuantile{}, false
	}
	targetRank := uint64(float64(s.totalWeight) * phi)
	idx := s.binarySearch(targetRank)
	approxValue := s.data[idx].value
	maxRankError := uint64(math.Ceil(float64(s.totalWeight) * epsilon))
	lower := s.findLowerBound(targetRank, idx, approxValue, maxRankError)
	upper := s.findUpperBound(targetRank, idx, approxValue, maxRankError)
	return ApproxQuantile{
		Count:       s.count,
		ApproxValue: approxValue,
		LowerBound:  lower,
		UpperBound:  upper,
	}, true
}

func calculateStoredValues(values []WeightedValue) []storedValue {
	sorted := make([]WeightedValue, len(values))
	copy(sorted, values)
	slices.SortFunc(sorted, func(a, b WeightedValue) int {
		if a.Value < b.Value {
			return -1
		}
		if a.Value > b.Value {
			return 1
		}
		return 0
	})

	result := make([]storedValue, 0, len(sorted))
	var rank uint64
	for _, wv := range sorted {
		if n := len(result); n > 0 && result[n-1].value == wv.Value {
			result[n-1].highestRank += wv.Weight
		} else {
			result = append(result, storedValue{
				value:       wv.Value,
				lowestRank:  rank,
				highestRank: rank + wv.Weight - 1,
			})
		}
		rank += wv.Weight
	}
	return result
}

func (s *WeightedQuerySketch) binarySearch(rank uint64) int {
	i, j := 0, len(s.data)
	for i < j {
		mid := (j-i)/2 + i
		sv := s.data[mid]
		switch {
		case sv.highestRank < rank:
			i = mid + 1
		case sv.lowestRank > rank:
			j = mid
		default:
			return mid
		}
	}
	return i
}

func (s *WeightedQuerySketch) findLowerBound(rank uint64, idx int, approxValue uint32, maxRankError uint64) uint32 {
	for {
		if idx == 0 {
			min, _ := s.minmax.Min()
			return min
		}
		sv := s.data[idx-1]
		if sv.highestRank+maxRankError < rank && sv.value <= approxValue {
			return sv.value
		}
		idx--
	}
}

func (s *WeightedQuerySketch) findUpperBound(rank uint64, idx int, approxValue uint32, maxRankError uint64) uint32 {
	for {
		if idx == len(s.data)-1 {
			max, _ := s.minmax.Max()
			return max
		}
		sv := s.data[idx+1]
		// Symmetric to findLowerBound: stop at the first value whose
		// lowest rank lies more than maxRankError above the target.
		if sv.lowestRank > rank+maxRankError && sv.value >= approxValue {
			return sv.value
		}
		idx++
	}
}

// UnweightedQuerySketch answers rank queries over an exactly sorted,
// unweighted sequence of values by direct index lookup. It is an exact
// baseline for comparison; Sketch and the query operators always use
// WeightedQuerySketch, whether or not Config.NoSampler is set.
type UnweightedQuerySketch struct {
	sorted []uint32
}

// NewUnweightedQuerySketch builds a query sketch from an already
// sorted ascending slice of values.
func NewUnweightedQuerySketch(sorted []uint32) *UnweightedQuerySketch {
	return &UnweightedQuerySketch{sorted: sorted}
}

// Query returns the approximate value at rank phi, or false if empty.
func (s *UnweightedQuerySketch) Query(phi float64) (ApproxQuantile, bool) {
	n := len(s.sorted)
	if n == 0 {
		return ApproxQuantile{}, false
	}
	targetRank := int(phi * float64(n))
	v := s.sorted[targetRank]
	return ApproxQuantile{
		Count:       uint64(n),
		ApproxValue: v,
		LowerBound:  v,
		UpperBound:  v,
	}, true
}
