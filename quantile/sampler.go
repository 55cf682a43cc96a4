package quantile

import (
	"io"
	"math/rand"

	"github.com/caesiumdb/caesium/codec"
)

// sampler is a lossy reservoir that absorbs values below the sketch's
// current level: it represents a conceptual window of maxWeight
// unit-weight slots, picks one slot uniformly at random as the sample
// position, and emits the value occupying that slot once the window
// fills (count reaches maxWeight). With maxWeight == 1 every insert is
// emitted immediately, making the sampler a pass-through.
//
// Grounded on the weighted-insert contract of the caesium sampler
// (original_source/src/sampler.rs): insert_weighted(v, w) returns a
// sample with probability w/maxWeight. That source tracks (weight, val)
// directly; this implementation instead tracks the window position
// (count, sampleIndex) the way original_source/src/quantile/sampler.rs
// does for the unweighted case, generalized here to weighted increments
// so a single call can absorb weight > 1 (needed by Sketch.Merge, which
// absorbs whole compactor levels at weight 2^L in one insertWeighted
// call per value).
type sampler struct {
	maxWeight   uint64
	count       uint64
	sampleIndex uint64
	storedValue uint32
	rng         *rand.Rand
}

func newSampler(rng *rand.Rand) *sampler {
	return &sampler{
		maxWeight: 1,
		rng:       rng,
	}
}

func (s *sampler) clone() *sampler {
	cp := *s
	return &cp
}

// setMaxWeight resets the window to size w, which must be a positive
// power of two. Used when the sketch absorbs an empty bottom-capacity
// compactor into the sampler and raises its level.
func (s *sampler) setMaxWeight(w uint64) {
	if w == 0 {
		panic("quantile: sampler max weight must be positive")
	}
	s.maxWeight = w
	s.count = 0
	s.sampleIndex = uint64(s.rng.Int63n(int64(w)))
}

// insert is insertWeighted(v, 1).
func (s *sampler) insert(v uint32) (uint32, bool) {
	return s.insertWeighted(v, 1)
}

// insertWeighted offers v with weight w to the reservoir. w must be
// <= maxWeight. It returns the sampled value and true once the
// conceptual window saturates (count+w >= maxWeight), and (0, false)
// otherwise.
func (s *sampler) insertWeighted(v uint32, w uint64) (uint32, bool) {
	if w == 0 || w > s.maxWeight {
		panic("quantile: sampler insert weight must be in [1, maxWeight]")
	}
	if s.sampleIndex >= s.count && s.sampleIndex < s.count+w {
		s.storedValue = v
	}
	newCount := s.count + w
	if newCount < s.maxWeight {
		s.count = newCount
		return 0, false
	}
	result := s.storedValue
	overflow := newCount - s.maxWeight
	s.count = overflow
	s.sampleIndex = uint64(s.rng.Int63n(int64(s.maxWeight)))
	if overflow > 0 && s.sampleIndex < overflow {
		// The tail of this same insert's weight also covers the fresh
		// window's [0, overflow) range, so v is still the occupant.
		s.storedValue = v
	}
	return result, true
}

// storedWeight reports how much weight the sampler is currently holding
// for its pending (not yet emitted) slot -- used by merge to absorb one
// sketch's sampler state into another's.
func (s *sampler) storedWeight() uint64 {
	return s.count
}

func (s *sampler) storedValueUnsafe() uint32 {
	return s.storedValue
}

// encode writes (count, sample_idx, stored_value, max_weight) in that
// wire order.
func (s *sampler) encode(w io.Writer) error {
	if err := codec.WriteUint64(w, s.count); err != nil {
		return err
	}
	if err := codec.WriteUint64(w, s.sampleIndex); err != nil {
		return err
	}
	if err := codec.WriteUint32(w, s.storedValue); err != nil {
		return err
	}
	return codec.WriteUint64(w, s.maxWeight)
}

func decodeSampler(r io.Reader, rng *rand.Rand) (*sampler, error) {
	count, err := codec.ReadUint64(r)
	if err != nil {
		return nil, err
	}
	sampleIndex, err := codec.ReadUint64(r)
	if err != nil {
		return nil, err
	}
	storedValue, err := codec.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	maxWeight, err := codec.ReadUint64(r)
	if err != nil {
		return nil, err
	}
	return &sampler{
		maxWeight:   maxWeight,
		count:       count,
		sampleIndex: sampleIndex,
		storedValue: storedValue,
		rng:         rng,
	}, nil
}
