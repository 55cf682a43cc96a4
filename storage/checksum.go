package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/caesiumdb/caesium/codec"
)

// checksumLen is the width of the trailing xxhash64 checksum appended
// to every value blob handed to the underlying engine.
const checksumLen = 8

// wrapChecksum appends an xxhash64 checksum of payload to it, so a
// corrupt value blob is detected before the merge operator even
// attempts to decode it -- grounded on aalhour-rockyardkv's checksum
// package (internal/checksum), which wraps stored blobs the same way
// for the same reason (cheap, fast detection ahead of a more expensive
// decode).
func wrapChecksum(payload []byte) []byte {
	sum := xxhash.Sum64(payload)
	out := make([]byte, len(payload)+checksumLen)
	copy(out, payload)
	binary.LittleEndian.PutUint64(out[len(payload):], sum)
	return out
}

// unwrapChecksum validates and strips the trailing checksum appended
// by wrapChecksum, returning ErrFormat if it is missing or does not
// match.
func unwrapChecksum(data []byte) ([]byte, error) {
	if len(data) < checksumLen {
		return nil, fmt.Errorf("%w: value too short to contain a checksum", codec.ErrFormat)
	}
	split := len(data) - checksumLen
	payload, want := data[:split], binary.LittleEndian.Uint64(data[split:])
	if got := xxhash.Sum64(payload); got != want {
		return nil, fmt.Errorf("%w: checksum mismatch, want %x got %x", codec.ErrFormat, want, got)
	}
	return payload, nil
}
