// Package codec implements the compact binary encoding used to persist
// quantile sketches and frame them for network transport: fixed-width
// little-endian integers, length-prefixed byte/uint sequences, a
// variable-byte (vbyte) integer encoding, an ascending-delta integer
// list encoding built on vbyte, and a length-framed message wrapper.
//
// Every decode function accepts an io.Reader and returns ErrIO on a
// short read or ErrFormat on structurally invalid data; every encode
// function accepts an io.Writer and returns ErrIO on a short write.
package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// WriteUint8 writes a single byte.
func WriteUint8(w io.Writer, v uint8) error {
	if _, err := w.Write([]byte{v}); err != nil {
		return fmt.Errorf("%w: %s", ErrIO, err)
	}
	return nil
}

// ReadUint8 reads a single byte.
func ReadUint8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrIO, err)
	}
	return buf[0], nil
}

// WriteUint32 writes a uint32 little-endian.
func WriteUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("%w: %s", ErrIO, err)
	}
	return nil
}

// ReadUint32 reads a uint32 little-endian.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrIO, err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteUint64 writes a uint64 little-endian. All lengths in this codec
// are encoded as u64 regardless of the platform's native int width.
func WriteUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("%w: %s", ErrIO, err)
	}
	return nil
}

// ReadUint64 reads a uint64 little-endian.
func ReadUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrIO, err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// WriteLen encodes a slice/sequence length as a u64.
func WriteLen(w io.Writer, n int) error {
	return WriteUint64(w, uint64(n))
}

// ReadLen decodes a sequence length encoded as a u64, failing with
// ErrFormat if the value does not fit in an int.
func ReadLen(r io.Reader) (int, error) {
	n, err := ReadUint64(r)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt {
		return 0, fmt.Errorf("%w: length %d is too large", ErrFormat, n)
	}
	return int(n), nil
}

// WriteBytes writes a length-prefixed raw byte slice.
func WriteBytes(w io.Writer, data []byte) error {
	if err := WriteLen(w, len(data)); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %s", ErrIO, err)
	}
	return nil
}

// ReadBytes reads a length-prefixed raw byte slice.
func ReadBytes(r io.Reader) ([]byte, error) {
	n, err := ReadLen(r)
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrIO, err)
		}
	}
	return data, nil
}

// WriteString writes a length-prefixed utf8 string.
func WriteString(w io.Writer, s string) error {
	return WriteBytes(w, []byte(s))
}

// ReadString reads a length-prefixed utf8 string, failing with
// ErrFormat if the bytes are not valid utf8.
func ReadString(r io.Reader) (string, error) {
	data, err := ReadBytes(r)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: string is not valid utf8", ErrFormat)
	}
	return string(data), nil
}
