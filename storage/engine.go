// Package storage defines the ordered key-value storage contract the
// quantile core persists against: a prefix-scannable map keyed by
// (metric, window_start) with a pluggable merge operator providing
// all concurrent-insert correctness, plus glob-based metric search.
//
// The core does not mandate a particular engine; storage/memstore
// provides an in-process reference implementation, and any engine
// satisfying Engine (an embedded KV store, a remote store fronted by
// a client, etc.) can stand in for it.
package storage

// Iterator walks keys in ascending key order starting from a seek
// position, stopping when Next returns false. Implementations
// must tolerate being abandoned (dropped) at any point without
// leaking engine-level resources beyond a Close call.
type Iterator interface {
	// Next advances to the next key/value pair, returning false when
	// exhausted or on error (check Err after Next returns false).
	Next() bool
	Key() []byte
	Value() []byte
	Err() error
	Close() error
}

// Engine is the storage contract the core requires: ordered
// key-value access with a prefix scan and a pluggable, associative
// merge operator. Get/Put/Merge operate on a single key; ScanPrefix
// returns an Iterator over every key sharing the given prefix in
// ascending order.
type Engine interface {
	// Get returns the stored value for key, or ErrNotFound.
	Get(key []byte) ([]byte, error)

	// Put overwrites key's value unconditionally, bypassing the merge
	// operator. The Downsampler does not use it: it writes rewritten
	// rows through Merge.
	Put(key []byte, value []byte) error

	// Merge applies the engine's MergeOperator to combine operand
	// with whatever is currently stored at key (or nothing, if unset),
	// storing the result.
	Merge(key []byte, operand []byte) error

	// Delete removes key, if present.
	Delete(key []byte) error

	// ScanPrefix returns an iterator over every key with the given
	// prefix, in ascending key order; for keys built by EncodeKey that
	// is ascending window_start within the metric, which fetch and the
	// Downsampler rely on. Grounded on
	// aalhour-rockyardkv's prefix_extractor.go / iterator contract:
	// a prefix-keyed ordered scan is the primitive both fetch (scan by
	// metric) and search (scan by exact literal prefix of a glob) are
	// built from.
	ScanPrefix(prefix []byte) (Iterator, error)

	// Search returns every stored metric name matching pattern (a
	// glob of '*' and literal characters), in lexicographic order.
	Search(pattern string) ([]string, error)
}
