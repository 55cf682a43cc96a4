package memstore

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caesiumdb/caesium/quantile"
	"github.com/caesiumdb/caesium/storage"
	"github.com/caesiumdb/caesium/timeseries"
)

func newTestEngine() *Engine {
	cfg := quantile.Config{Rand: rand.New(rand.NewSource(1))}
	return New(storage.NewSketchMergeOperator(cfg, nil))
}

func putRow(t *testing.T, e *Engine, metric string, start, end timeseries.TimeStamp, values []uint32) {
	t.Helper()
	cfg := quantile.Config{Rand: rand.New(rand.NewSource(1))}
	sk := quantile.New(cfg)
	for _, v := range values {
		sk.Insert(v)
	}
	encoded, err := storage.EncodeValue(storage.Row{Window: timeseries.NewTimeWindow(start, end), Sketch: sk})
	require.NoError(t, err)
	require.NoError(t, e.Merge(storage.EncodeKey(metric, start), encoded))
}

func TestEngineGetNotFound(t *testing.T) {
	e := newTestEngine()
	_, err := e.Get([]byte("missing"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEngineScanPrefixOrdersByMetricAndWindow(t *testing.T) {
	e := newTestEngine()
	putRow(t, e, "m1", 0, 30, []uint32{1})
	putRow(t, e, "m1", 30, 60, []uint32{2})
	putRow(t, e, "m2", 60, 90, []uint32{3})
	putRow(t, e, "m2", 90, 100, []uint32{4})

	it, err := e.ScanPrefix(storage.MetricKeyPrefix("m2"))
	require.NoError(t, err)
	defer it.Close()

	var starts []timeseries.TimeStamp
	for it.Next() {
		_, start, err := storage.DecodeKey(it.Key())
		require.NoError(t, err)
		starts = append(starts, start)
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []timeseries.TimeStamp{60, 90}, starts)
}

func TestEngineSearchLeadingWildcard(t *testing.T) {
	e := newTestEngine()
	for _, m := range []string{"foo", "bar", "foobar", "bazbar", "bazfoobar"} {
		putRow(t, e, m, 0, 1, []uint32{1})
	}

	names, err := e.Search("*foo*r")
	require.NoError(t, err)
	assert.Equal(t, []string{"bazfoobar", "foobar"}, names)
}

func TestEngineSearchWildcardAll(t *testing.T) {
	e := newTestEngine()
	putRow(t, e, "m1", 0, 30, []uint32{1})
	putRow(t, e, "m2", 60, 90, []uint32{1})

	names, err := e.Search("*")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, names)
}

func TestEngineMergeCombinesRowsAtSameKey(t *testing.T) {
	e := newTestEngine()
	putRow(t, e, "m", 0, 30, []uint32{1, 2})
	putRow(t, e, "m", 0, 30, []uint32{3, 4})

	data, err := e.Get(storage.EncodeKey("m", 0))
	require.NoError(t, err)

	cfg := quantile.Config{Rand: rand.New(rand.NewSource(1))}
	row, err := storage.DecodeValue(data, cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), row.Sketch.Count())
}

func TestEngineScanPrefixOrdersNumericallyAcrossByteBoundary(t *testing.T) {
	e := newTestEngine()
	// window_start is wire-encoded little-endian, so raw byte order of
	// the encoded key would put 300 (0x2C,0x01,...) before 10
	// (0x0A,0x00,...) were ordering ever done on raw bytes; it must not
	// be.
	putRow(t, e, "m", 300, 310, []uint32{1})
	putRow(t, e, "m", 10, 20, []uint32{2})
	putRow(t, e, "m", 256, 266, []uint32{3})

	it, err := e.ScanPrefix(storage.MetricKeyPrefix("m"))
	require.NoError(t, err)
	defer it.Close()

	var starts []timeseries.TimeStamp
	for it.Next() {
		_, start, err := storage.DecodeKey(it.Key())
		require.NoError(t, err)
		starts = append(starts, start)
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []timeseries.TimeStamp{10, 256, 300}, starts)
}

func TestEngineDelete(t *testing.T) {
	e := newTestEngine()
	putRow(t, e, "m", 0, 30, []uint32{1})
	require.NoError(t, e.Delete(storage.EncodeKey("m", 0)))
	_, err := e.Get(storage.EncodeKey("m", 0))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
