package codec

import (
	"bytes"
	"fmt"
	"io"
)

// FramePrefixLen is the number of bytes used to prefix a framed message
// with its length.
const FramePrefixLen = 8

// EncodeFrame writes an 8-byte little-endian length prefix followed by
// payload to dst.
func EncodeFrame(dst io.Writer, payload []byte) error {
	if err := WriteUint64(dst, uint64(len(payload))); err != nil {
		return err
	}
	if _, err := dst.Write(payload); err != nil {
		return fmt.Errorf("%w: %s", ErrIO, err)
	}
	return nil
}

// FrameInfo describes a framed message discovered in a byte buffer: the
// length of the prefix itself, and the length of the message that
// follows it.
type FrameInfo struct {
	PrefixLen int
	MsgLen    int
}

// PeekFrame inspects the first FramePrefixLen bytes of buf and reports
// the frame's message length without consuming buf. It returns
// (FrameInfo{}, false) when buf does not yet contain a full length
// prefix ("need more data"); a short prefix is never an error here.
func PeekFrame(buf []byte) (FrameInfo, bool) {
	if len(buf) < FramePrefixLen {
		return FrameInfo{}, false
	}
	n, err := ReadUint64(bytes.NewReader(buf[:FramePrefixLen]))
	if err != nil {
		// Unreachable: buf has exactly FramePrefixLen bytes available.
		return FrameInfo{}, false
	}
	return FrameInfo{PrefixLen: FramePrefixLen, MsgLen: int(n)}, true
}

// DecodeFrame reads one framed message from r: an 8-byte length prefix
// followed by exactly that many payload bytes. It fails with ErrFormat
// if the stream is truncated mid-frame (the prefix promised more bytes
// than the reader actually yields before EOF) and ErrIO on any other
// short read.
func DecodeFrame(r io.Reader) ([]byte, error) {
	n, err := ReadUint64(r)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if err == io.ErrUnexpectedEOF || err == io.EOF {
				return nil, fmt.Errorf("%w: frame truncated, expected %d bytes", ErrFormat, n)
			}
			return nil, fmt.Errorf("%w: %s", ErrIO, err)
		}
	}
	return payload, nil
}
