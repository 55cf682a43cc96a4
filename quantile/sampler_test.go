package quantile

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplerPassesThroughAtMaxWeightOne(t *testing.T) {
	s := newSampler(rand.New(rand.NewSource(1)))
	for i := uint32(0); i < 10; i++ {
		v, ok := s.insert(i)
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestSamplerEmitsOncePerWindow(t *testing.T) {
	s := newSampler(rand.New(rand.NewSource(1)))
	s.setMaxWeight(4)
	emitted := 0
	for i := uint32(0); i < 16; i++ {
		if _, ok := s.insert(i); ok {
			emitted++
		}
	}
	assert.Equal(t, 4, emitted)
}

func TestSamplerInsertWeightedSaturatesAtMaxWeight(t *testing.T) {
	s := newSampler(rand.New(rand.NewSource(1)))
	s.setMaxWeight(8)
	v, ok := s.insertWeighted(100, 8)
	require.True(t, ok)
	assert.Equal(t, uint32(100), v)
}

func TestSamplerInsertWeightedAccumulatesBelowMaxWeight(t *testing.T) {
	s := newSampler(rand.New(rand.NewSource(1)))
	s.setMaxWeight(8)
	_, ok := s.insertWeighted(1, 3)
	assert.False(t, ok)
	assert.Equal(t, uint64(3), s.storedWeight())
}

func TestSamplerEncodeAndDecode(t *testing.T) {
	s := newSampler(rand.New(rand.NewSource(1)))
	s.setMaxWeight(16)
	s.insertWeighted(7, 5)

	var buf bytes.Buffer
	require.NoError(t, s.encode(&buf))
	decoded, err := decodeSampler(&buf, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, s.maxWeight, decoded.maxWeight)
	assert.Equal(t, s.count, decoded.count)
	assert.Equal(t, s.sampleIndex, decoded.sampleIndex)
	assert.Equal(t, s.storedValue, decoded.storedValue)
}
