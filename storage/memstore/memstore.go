// Package memstore provides an in-process reference implementation of
// storage.Engine: an ordered map backed by a sorted key slice, with
// merge-operator semantics and glob-based metric search.
//
// Grounded on original_source/src/storage/mock.rs's MockDataSource,
// generalized from a test-only fetch/search double into a real
// storage.Engine usable both in tests and as a standalone embeddable
// engine.
package memstore

import (
	"bytes"
	"sort"
	"strings"
	"sync"

	"github.com/caesiumdb/caesium/codec"
	"github.com/caesiumdb/caesium/storage"
)

// Engine is a mutex-guarded, sorted in-memory key-value store.
type Engine struct {
	mu      sync.RWMutex
	merge   storage.MergeOperator
	keys    []string // sorted, mirrors values' key set
	values  map[string][]byte
	metrics map[string]struct{} // distinct metric names, for Search
}

// New builds an empty engine using op to resolve Merge calls.
func New(op storage.MergeOperator) *Engine {
	return &Engine{
		merge:   op,
		values:  make(map[string][]byte),
		metrics: make(map[string]struct{}),
	}
}

func (e *Engine) Get(key []byte) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.values[string(key)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (e *Engine) Put(key []byte, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.putLocked(key, value)
	return nil
}

func (e *Engine) Delete(key []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	k := string(key)
	if _, ok := e.values[k]; !ok {
		return nil
	}
	delete(e.values, k)
	idx := searchKeys(e.keys, k)
	if idx < len(e.keys) && e.keys[idx] == k {
		e.keys = append(e.keys[:idx], e.keys[idx+1:]...)
	}
	return nil
}

// Merge applies the engine's MergeOperator to combine operand with
// whatever is currently stored at key, storing the result.
func (e *Engine) Merge(key []byte, operand []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	existing := e.values[string(key)]
	merged, ok := e.merge.FullMerge(key, existing, [][]byte{operand})
	if !ok {
		return storage.ErrMergeFailed
	}
	e.putLocked(key, merged)
	return nil
}

func (e *Engine) putLocked(key []byte, value []byte) {
	k := string(key)
	if _, exists := e.values[k]; !exists {
		idx := searchKeys(e.keys, k)
		e.keys = append(e.keys, "")
		copy(e.keys[idx+1:], e.keys[idx:])
		e.keys[idx] = k
		if metric, ok := metricFromKey(key); ok {
			e.metrics[metric] = struct{}{}
		}
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	e.values[k] = stored
}

// ScanPrefix returns an ascending iterator over every key sharing
// prefix. The snapshot is taken under lock at call time; subsequent
// writes to the engine do not affect an in-flight iterator.
func (e *Engine) ScanPrefix(prefix []byte) (storage.Iterator, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p := string(prefix)
	start := searchMetricPrefix(e.keys, prefix)
	var snapshot []kv
	for i := start; i < len(e.keys); i++ {
		k := e.keys[i]
		if !strings.HasPrefix(k, p) {
			break
		}
		snapshot = append(snapshot, kv{key: k, value: e.values[k]})
	}
	return &sliceIterator{items: snapshot, idx: -1}, nil
}

// Search returns every stored metric name matching the glob pattern,
// in lexicographic order. When pattern has a non-empty exact prefix
// (the substring before its first '*'), Search uses it to seek
// directly into the sorted metric set instead of scanning every
// metric.
func (e *Engine) Search(pattern string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.metrics))
	for m := range e.metrics {
		names = append(names, m)
	}
	sort.Strings(names)

	prefix := storage.ExactPrefix(pattern)
	start := 0
	if prefix != "" {
		start = sort.SearchStrings(names, prefix)
	}

	var result []string
	for i := start; i < len(names); i++ {
		if prefix != "" && !strings.HasPrefix(names[i], prefix) {
			break
		}
		if storage.MatchGlob(names[i], pattern) {
			result = append(result, names[i])
		}
	}
	return result, nil
}

func metricFromKey(key []byte) (string, bool) {
	metric, _, err := storage.DecodeKey(key)
	if err != nil {
		return "", false
	}
	return metric, true
}

// keyLess orders two encoded keys by their decoded (metric, window
// start) pair rather than by raw byte content: the window_start field
// is little-endian per the wire format, so raw byte order does not
// match ascending window_start within a metric. e.keys is always kept
// sorted in this decoded order.
func keyLess(a, b string) bool {
	am, ats, aerr := storage.DecodeKey([]byte(a))
	bm, bts, berr := storage.DecodeKey([]byte(b))
	if aerr != nil || berr != nil {
		return a < b
	}
	if am != bm {
		return am < bm
	}
	return ats < bts
}

func searchKeys(keys []string, k string) int {
	return sort.Search(len(keys), func(i int) bool { return !keyLess(keys[i], k) })
}

// searchMetricPrefix finds the first index in keys (sorted per
// keyLess) whose decoded metric is >= the metric encoded by prefix.
// prefix is expected to be exactly a MetricKeyPrefix(metric) encoding,
// as every caller in this package constructs it.
func searchMetricPrefix(keys []string, prefix []byte) int {
	target, err := codec.ReadString(bytes.NewReader(prefix))
	if err != nil {
		return len(keys)
	}
	return sort.Search(len(keys), func(i int) bool {
		m, _, err := storage.DecodeKey([]byte(keys[i]))
		if err != nil {
			return false
		}
		return m >= target
	})
}

type kv struct {
	key   string
	value []byte
}

type sliceIterator struct {
	items []kv
	idx   int
}

func (it *sliceIterator) Next() bool {
	it.idx++
	return it.idx < len(it.items)
}

func (it *sliceIterator) Key() []byte   { return []byte(it.items[it.idx].key) }
func (it *sliceIterator) Value() []byte { return it.items[it.idx].value }
func (it *sliceIterator) Err() error    { return nil }
func (it *sliceIterator) Close() error  { return nil }
