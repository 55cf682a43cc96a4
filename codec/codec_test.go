package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint64RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteUint64(&buf, 0xFFEEDDCC))
	got, err := ReadUint64(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xFFEEDDCC), got)
}

func TestUint64ShortRead(t *testing.T) {
	buf := bytes.NewReader([]byte{0, 1, 2})
	_, err := ReadUint64(buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
}

func TestBytesRoundTripEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBytes(&buf, nil))
	got, err := ReadBytes(&buf)
	require.NoError(t, err)
	assert.Len(t, got, 0)
}

func TestBytesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	data := []byte{1, 2, 3, 4, 5, 6, 7}
	require.NoError(t, WriteBytes(&buf, data))
	got, err := ReadBytes(&buf)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteString(&buf, "hello world"))
	got, err := ReadString(&buf)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
}

func TestStringRejectsInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBytes(&buf, []byte{0xff, 0xfe, 0xfd}))
	_, err := ReadString(&buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestVbyteRoundTripEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVbyte(&buf, nil))
	got, err := ReadVbyte(&buf)
	require.NoError(t, err)
	assert.Len(t, got, 0)
}

func TestVbyteRoundTripSmallRun(t *testing.T) {
	var buf bytes.Buffer
	input := []uint32{1, 2, 1 << 23}
	require.NoError(t, WriteVbyte(&buf, input))
	got, err := ReadVbyte(&buf)
	require.NoError(t, err)
	assert.Equal(t, input, got)
}

func TestVbyteRoundTripLargeRun(t *testing.T) {
	var buf bytes.Buffer
	input := []uint32{1, 2, 1 << 23, 3, 4, 1 << 31, 5}
	require.NoError(t, WriteVbyte(&buf, input))
	got, err := ReadVbyte(&buf)
	require.NoError(t, err)
	assert.Equal(t, input, got)
}

func TestVbyteEachBoundary(t *testing.T) {
	boundaries := []uint32{
		0, 1, 2,
		(1 << 7) - 1, 1 << 7, (1 << 7) + 1,
		(1 << 14) - 1, 1 << 14, (1 << 14) + 1,
		(1 << 21) - 1, 1 << 21, (1 << 21) + 1,
		(1 << 28) - 1, 1 << 28, (1 << 28) + 1,
		(1 << 31) - 1, 1 << 31, (1 << 31) + 1, (1 << 31) + 7,
	}
	for _, v := range boundaries {
		var buf bytes.Buffer
		// Force the vbyte path (not the small-run plain encoding) by
		// padding the run past smallRunThreshold.
		input := []uint32{v, v, v, v, v}
		require.NoError(t, WriteVbyte(&buf, input))
		got, err := ReadVbyte(&buf)
		require.NoError(t, err)
		assert.Equal(t, input, got)
	}
}

func TestAscendingDeltaRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	data := []uint32{0, 2, 4, 6, 8, 10, 12, 14, 16, 18}
	require.NoError(t, WriteAscendingDelta(&buf, data))
	got, err := ReadAscendingDelta(&buf)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestAscendingDeltaRoundTripEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAscendingDelta(&buf, nil))
	got, err := ReadAscendingDelta(&buf)
	require.NoError(t, err)
	assert.Len(t, got, 0)
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("the quick brown fox")
	require.NoError(t, EncodeFrame(&buf, payload))
	got, err := DecodeFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestPeekFrameNeedsMoreData(t *testing.T) {
	_, ok := PeekFrame(nil)
	assert.False(t, ok)

	_, ok = PeekFrame([]byte{1, 2, 3, 4, 5, 6, 7})
	assert.False(t, ok)
}

func TestPeekFrameReportsLength(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeFrame(&buf, []byte("hello")))
	info, ok := PeekFrame(buf.Bytes())
	require.True(t, ok)
	assert.Equal(t, FramePrefixLen, info.PrefixLen)
	assert.Equal(t, 5, info.MsgLen)
}

func TestDecodeFrameTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteUint64(&buf, 100))
	buf.WriteString("short")
	_, err := DecodeFrame(&buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
}
