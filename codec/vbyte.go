package codec

import (
	"fmt"
	"io"
)

// smallRunThreshold mirrors the original caesium encoder: runs shorter
// than this are cheaper to store as a plain length-prefixed sequence of
// u32s than to pay the per-element vbyte continuation-bit overhead.
const smallRunThreshold = 4

// WriteVbyte encodes a slice of u32 values, one 7-bit payload per byte
// with the high bit as a continuation flag (1 = more bytes follow).
// Runs shorter than smallRunThreshold are written as a plain
// length-prefixed u32 sequence instead, matching the original encoder's
// avoidance of per-element overhead for tiny runs.
func WriteVbyte(w io.Writer, values []uint32) error {
	if err := WriteLen(w, len(values)); err != nil {
		return err
	}
	if len(values) < smallRunThreshold {
		for _, v := range values {
			if err := WriteUint32(w, v); err != nil {
				return err
			}
		}
		return nil
	}
	for _, v := range values {
		if err := writeVbyteScalar(w, v); err != nil {
			return err
		}
	}
	return nil
}

// ReadVbyte decodes a vbyte-encoded u32 sequence written by WriteVbyte.
func ReadVbyte(r io.Reader) ([]uint32, error) {
	n, err := ReadLen(r)
	if err != nil {
		return nil, err
	}
	values := make([]uint32, n)
	if n < smallRunThreshold {
		for i := range values {
			v, err := ReadUint32(r)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return values, nil
	}
	for i := range values {
		v, err := readVbyteScalar(r)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func writeVbyteScalar(w io.Writer, v uint32) error {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		if err := WriteUint8(w, b); err != nil {
			return err
		}
		if v == 0 {
			return nil
		}
	}
}

func readVbyteScalar(r io.Reader) (uint32, error) {
	var result uint32
	var shift uint
	for {
		if shift >= 35 {
			return 0, fmt.Errorf("%w: vbyte integer is too long", ErrFormat)
		}
		b, err := ReadUint8(r)
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}
