package quantile

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSketch() *Sketch {
	return New(Config{Rand: rand.New(rand.NewSource(42))})
}

func queryMedian(t *testing.T, s *Sketch) uint32 {
	t.Helper()
	min, _ := s.Min()
	max, _ := s.Max()
	q := NewWeightedQuerySketch(s.Count(), minMax{min: min, max: max}, s.ToWeightedValues())
	result, ok := q.Query(0.5)
	require.True(t, ok)
	return result.ApproxValue
}

func TestSketchQuantilesNoCompression(t *testing.T) {
	s := newTestSketch()
	for i := 0; i < 100; i++ {
		s.Insert(uint32(i))
	}
	assert.Equal(t, uint32(50), queryMedian(t, s))
}

func TestSketchMergeQuantilesNoCompression(t *testing.T) {
	s1 := newTestSketch()
	s2 := newTestSketch()
	for i := 0; i < 100; i++ {
		s1.Insert(uint32(i))
		s2.Insert(uint32(i))
	}
	merged := s1.Merge(s2)
	assert.Equal(t, uint32(50), queryMedian(t, merged))
}

func TestSketchInsertDoesNotExceedCapacity(t *testing.T) {
	s := newTestSketch()
	n := capacityAtDepth[0] * LevelLimit
	for i := 0; i < n; i++ {
		s.Insert(uint32(i))
		require.LessOrEqual(t, s.calculateSize(), s.calculateCapacity())
	}
}

func TestSketchMergeDoesNotExceedCapacity(t *testing.T) {
	s1 := newTestSketch()
	s2 := newTestSketch()
	n := capacityAtDepth[0] * LevelLimit
	for i := 0; i < n; i++ {
		s1.Insert(uint32(i))
		s2.Insert(uint32(i))
	}
	merged := s1.Merge(s2)
	assert.LessOrEqual(t, merged.calculateSize(), merged.calculateCapacity())
}

func TestSketchEncodeAndDecode(t *testing.T) {
	s := newTestSketch()
	n := capacityAtDepth[0] * LevelLimit
	for i := 0; i < n; i++ {
		s.Insert(uint32(i))
	}

	var buf bytes.Buffer
	require.NoError(t, s.Encode(&buf))

	decoded, err := Decode(&buf, Config{Rand: rand.New(rand.NewSource(1))})
	require.NoError(t, err)
	assert.Equal(t, s.level, decoded.level)
	assert.Equal(t, s.capacity, decoded.capacity)
	assert.Equal(t, s.count, decoded.count)
	assert.Equal(t, s.compactorCount, decoded.compactorCount)
}

func TestSketchNoSamplerNeverAdvancesLevel(t *testing.T) {
	s := New(Config{Rand: rand.New(rand.NewSource(7)), NoSampler: true})
	for i := 0; i < 5000; i++ {
		s.Insert(uint32(i))
	}
	assert.Equal(t, uint8(0), s.level)
}

func TestSketchMergeIsOrderIndependent(t *testing.T) {
	build := func(seed int64, vals []uint32) *Sketch {
		s := New(Config{Rand: rand.New(rand.NewSource(seed))})
		for _, v := range vals {
			s.Insert(v)
		}
		return s
	}

	a := []uint32{1, 2, 3, 4, 5}
	b := []uint32{6, 7, 8, 9, 10}

	s1 := build(1, a)
	s2 := build(2, b)
	merged1 := s1.Merge(s2)

	s3 := build(3, b)
	s4 := build(4, a)
	merged2 := s3.Merge(s4)

	assert.Equal(t, merged1.Count(), merged2.Count())
	min1, _ := merged1.Min()
	min2, _ := merged2.Min()
	max1, _ := merged1.Max()
	max2, _ := merged2.Max()
	assert.Equal(t, min1, min2)
	assert.Equal(t, max1, max2)
}
