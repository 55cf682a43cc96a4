package storage

import (
	"bytes"

	"github.com/caesiumdb/caesium/codec"
	"github.com/caesiumdb/caesium/quantile"
	"github.com/caesiumdb/caesium/timeseries"
)

// EncodeKey builds the storage key for a (metric, window_start) row:
// a length-prefixed metric name followed by the window's start
// timestamp, little-endian. Every key for one metric shares the
// identical length-prefixed metric bytes, so those rows sort
// contiguously, but because window_start is little-endian a raw
// byte-lexicographic comparator does not order them by window_start;
// an engine that yields ascending window_start must compare decoded
// keys (as storage/memstore does).
func EncodeKey(metric string, windowStart timeseries.TimeStamp) []byte {
	var buf bytes.Buffer
	_ = codec.WriteString(&buf, metric)
	_ = codec.WriteUint64(&buf, uint64(windowStart))
	return buf.Bytes()
}

// DecodeKey reverses EncodeKey.
func DecodeKey(key []byte) (metric string, windowStart timeseries.TimeStamp, err error) {
	r := bytes.NewReader(key)
	metric, err = codec.ReadString(r)
	if err != nil {
		return "", 0, err
	}
	start, err := codec.ReadUint64(r)
	if err != nil {
		return "", 0, err
	}
	return metric, timeseries.TimeStamp(start), nil
}

// MetricKeyPrefix returns the key prefix shared by every row stored
// for metric, suitable as a seek/scan lower bound.
func MetricKeyPrefix(metric string) []byte {
	var buf bytes.Buffer
	_ = codec.WriteString(&buf, metric)
	return buf.Bytes()
}

// Row is a decoded stored value: the window it covers and the sketch
// accumulated over that window.
type Row struct {
	Window timeseries.TimeWindow
	Sketch *quantile.Sketch
}

// EncodeValue writes a Row as u64(start) u64(end) || sketch-bytes,
// then appends an xxhash64 checksum over the whole blob so a corrupt
// value is caught before any of it is decoded.
func EncodeValue(row Row) ([]byte, error) {
	var buf bytes.Buffer
	if err := codec.WriteUint64(&buf, uint64(row.Window.Start)); err != nil {
		return nil, err
	}
	if err := codec.WriteUint64(&buf, uint64(row.Window.End)); err != nil {
		return nil, err
	}
	if err := row.Sketch.Encode(&buf); err != nil {
		return nil, err
	}
	return wrapChecksum(buf.Bytes()), nil
}

// DecodeValue reverses EncodeValue, first validating the trailing
// checksum.
func DecodeValue(data []byte, cfg quantile.Config) (Row, error) {
	payload, err := unwrapChecksum(data)
	if err != nil {
		return Row{}, err
	}
	r := bytes.NewReader(payload)
	start, err := codec.ReadUint64(r)
	if err != nil {
		return Row{}, err
	}
	end, err := codec.ReadUint64(r)
	if err != nil {
		return Row{}, err
	}
	sk, err := quantile.Decode(r, cfg)
	if err != nil {
		return Row{}, err
	}
	return Row{
		Window: timeseries.NewTimeWindow(timeseries.TimeStamp(start), timeseries.TimeStamp(end)),
		Sketch: sk,
	}, nil
}
