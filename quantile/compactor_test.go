package quantile

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertCompactorValues(t *testing.T, c *compactor, expected []uint32) {
	t.Helper()
	assert.Equal(t, len(expected), c.size())
	assert.Equal(t, expected, c.values())
}

func TestCompactorInserts(t *testing.T) {
	c := newCompactor()
	c.insert(1)
	c.insert(2)
	c.insert(3)
	assertCompactorValues(t, c, []uint32{1, 2, 3})
}

func TestCompactorInsertsSorted(t *testing.T) {
	c := newCompactor()
	c.insertSorted([]uint32{2, 4, 8})
	c.insertSorted([]uint32{1, 5, 7, 9})
	assertCompactorValues(t, c, []uint32{1, 2, 4, 5, 7, 8, 9})
}

func TestCompactorInsertsFromOtherUnsorted(t *testing.T) {
	c1 := newCompactor()
	c2 := newCompactor()
	c1.insertSorted([]uint32{2, 4, 6, 8})
	c2.insert(7)
	c2.insert(3)
	c2.insert(9)
	c1.insertFromOther(c2)
	assertCompactorValues(t, c1, []uint32{2, 3, 4, 6, 7, 8, 9})
}

func TestCompactorCompactsEmpty(t *testing.T) {
	c := newCompactor()
	var overflow []uint32
	rng := rand.New(rand.NewSource(1))
	c.compact(&overflow, rng)
	assert.Equal(t, 0, c.size())
	assert.Empty(t, overflow)
}

func TestCompactorCompactsEvenNumItems(t *testing.T) {
	c := newCompactor()
	c.insertSorted([]uint32{1, 2, 3, 4, 5, 6})
	var overflow []uint32
	rng := rand.New(rand.NewSource(1))
	c.compact(&overflow, rng)
	assert.Equal(t, 0, c.size())
	require.Len(t, overflow, 3)
	switch overflow[0] {
	case 1:
		assert.Equal(t, []uint32{1, 3, 5}, overflow)
	case 2:
		assert.Equal(t, []uint32{2, 4, 6}, overflow)
	default:
		t.Fatalf("unexpected first overflow value %d", overflow[0])
	}
}

func TestCompactorCompactsOddNumItems(t *testing.T) {
	c := newCompactor()
	c.insertSorted([]uint32{1, 2, 3, 4, 5})
	var overflow []uint32
	rng := rand.New(rand.NewSource(1))
	c.compact(&overflow, rng)
	assert.Equal(t, 1, c.size())
	require.Len(t, overflow, 2)
	switch overflow[0] {
	case 1:
		assert.Equal(t, []uint32{1, 3}, overflow)
	case 2:
		assert.Equal(t, []uint32{2, 4}, overflow)
	default:
		t.Fatalf("unexpected first overflow value %d", overflow[0])
	}
	assert.Equal(t, uint32(5), c.data[0])
}

func TestCompactorEncodeAndDecode(t *testing.T) {
	c := newCompactor()
	c.insert(3)
	c.insert(1)
	c.insert(4)
	c.insert(2)
	c.insert(5)

	var buf bytes.Buffer
	require.NoError(t, c.encode(&buf))
	decoded, err := decodeCompactor(&buf)
	require.NoError(t, err)

	assertCompactorValues(t, decoded, []uint32{1, 2, 3, 4, 5})
}
