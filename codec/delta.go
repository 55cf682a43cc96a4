package codec

import "io"

// WriteAscendingDelta encodes a sorted (non-decreasing) u32 sequence as
// (len, vbyte(x0-0), vbyte(x1-x0), ...). The caller must ensure data is
// sorted ascending; this is how the quantile compactor persists its
// retained values.
func WriteAscendingDelta(w io.Writer, data []uint32) error {
	deltas := make([]uint32, len(data))
	var prev uint32
	for i, x := range data {
		deltas[i] = x - prev
		prev = x
	}
	return WriteVbyte(w, deltas)
}

// ReadAscendingDelta decodes a sequence written by WriteAscendingDelta,
// returning ErrFormat if the length prefix is too large to be a length
// and ErrIO if the stream ends before all values are read.
func ReadAscendingDelta(r io.Reader) ([]uint32, error) {
	deltas, err := ReadVbyte(r)
	if err != nil {
		return nil, err
	}
	data := make([]uint32, len(deltas))
	var prev uint32
	for i, d := range deltas {
		prev += d
		data[i] = prev
	}
	return data, nil
}
