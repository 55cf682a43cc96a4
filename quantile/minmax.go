package quantile

import (
	"io"
	"math"

	"github.com/caesiumdb/caesium/codec"
)

// minMax tracks the minimum and maximum of every value ever inserted
// into a sketch, independent of sampling or compaction, so that queries
// can answer exact min/max even though quantiles are only approximate.
//
// Grounded on original_source/caesium-core/src/quantile/minmax.rs.
type minMax struct {
	min uint32
	max uint32
}

func newMinMax() minMax {
	return minMax{min: math.MaxUint32, max: 0}
}

func (m *minMax) update(v uint32) {
	if v < m.min {
		m.min = v
	}
	if v > m.max {
		m.max = v
	}
}

func (m *minMax) updateFromOther(other minMax) {
	if other.min < m.min {
		m.min = other.min
	}
	if other.max > m.max {
		m.max = other.max
	}
}

func (m minMax) hasValues() bool {
	return m.min <= m.max
}

// Min reports the smallest inserted value, and false if nothing has
// been inserted yet.
func (m minMax) Min() (uint32, bool) {
	if !m.hasValues() {
		return 0, false
	}
	return m.min, true
}

// Max reports the largest inserted value, and false if nothing has
// been inserted yet.
func (m minMax) Max() (uint32, bool) {
	if !m.hasValues() {
		return 0, false
	}
	return m.max, true
}

func (m minMax) encode(w io.Writer) error {
	if err := codec.WriteUint32(w, m.min); err != nil {
		return err
	}
	return codec.WriteUint32(w, m.max)
}

func decodeMinMax(r io.Reader) (minMax, error) {
	min, err := codec.ReadUint32(r)
	if err != nil {
		return minMax{}, err
	}
	max, err := codec.ReadUint32(r)
	if err != nil {
		return minMax{}, err
	}
	return minMax{min: min, max: max}, nil
}
