package storage

import (
	"sync"

	"github.com/caesiumdb/caesium/quantile"
	"github.com/caesiumdb/caesium/timeseries"
)

// DownsampleAction is the decision a DownsampleStrategy makes for a
// given stored row's window.
type DownsampleAction int

const (
	// DownsampleIgnore leaves the row untouched: it is already
	// aligned to its partition's window size, or its start lies in
	// the future relative to the strategy's reference time.
	DownsampleIgnore DownsampleAction = iota
	// DownsampleDiscard drops the row: it is older than every
	// retention partition.
	DownsampleDiscard
	// DownsampleExpand rewrites the row to ExpandedWindow, which is
	// guaranteed to satisfy new.Start <= old.Start and
	// new.End >= old.End.
	DownsampleExpand
)

// DownsampleDecision is the result of DownsampleStrategy.Decide.
type DownsampleDecision struct {
	Action         DownsampleAction
	ExpandedWindow timeseries.TimeWindow
}

// DownsampleStrategy decides what to do with a stored row's window as
// it ages, relative to some reference "now".
//
// Grounded on original_source/src/storage/downsample.rs.
type DownsampleStrategy interface {
	Decide(window timeseries.TimeWindow) DownsampleDecision
}

type partition struct {
	alignedSize timeseries.TimeStamp
	cutoff      timeseries.TimeStamp
}

// DefaultStrategy aligns rows into progressively coarser windows as
// they age: 1s until 5 minutes old, 10s until 24 hours, 1m until 7
// days, 10m until 28 days, 1h until 1 year, then discards rows older
// than that.
type DefaultStrategy struct {
	now timeseries.TimeStamp
}

var defaultPartitions = []partition{
	{alignedSize: 1, cutoff: 300},
	{alignedSize: 10, cutoff: 86400},
	{alignedSize: 60, cutoff: 604800},
	{alignedSize: 600, cutoff: 2419200},
	{alignedSize: 3600, cutoff: 31536000},
}

// NewDefaultStrategy builds a DefaultStrategy evaluated relative to
// now.
func NewDefaultStrategy(now timeseries.TimeStamp) *DefaultStrategy {
	return &DefaultStrategy{now: now}
}

func (s *DefaultStrategy) Decide(window timeseries.TimeWindow) DownsampleDecision {
	if window.Start > s.now {
		return DownsampleDecision{Action: DownsampleIgnore}
	}
	secondsSince := s.now - window.Start

	for _, p := range defaultPartitions {
		if secondsSince < p.cutoff {
			expanded := expandWindow(window, p.alignedSize)
			if expanded == window {
				return DownsampleDecision{Action: DownsampleIgnore}
			}
			return DownsampleDecision{Action: DownsampleExpand, ExpandedWindow: expanded}
		}
	}
	return DownsampleDecision{Action: DownsampleDiscard}
}

func expandWindow(window timeseries.TimeWindow, alignedSize timeseries.TimeStamp) timeseries.TimeWindow {
	newStart := (window.Start / alignedSize) * alignedSize
	newEnd := newStart + alignedSize
	if window.End > newEnd {
		newEnd = window.End
	}
	return timeseries.NewTimeWindow(newStart, newEnd)
}

// Downsampler rewrites aging rows into coarser windows according to a
// DownsampleStrategy. It is the only actor in the system that performs
// a read-modify-write against the storage engine (read the row,
// compute the new alignment, write the new key, delete or supersede
// the old), so per spec it must serialize with itself per metric:
// Run acquires a per-metric lock for the duration of its pass over
// that metric's rows.
//
// Grounded on spec.md §5's concurrency model and
// original_source/src/storage/downsample.rs's strategy.
type Downsampler struct {
	engine   Engine
	strategy DownsampleStrategy
	cfg      quantile.Config
	logger   Logger

	mu         sync.Mutex
	metricLock map[string]*sync.Mutex
}

// NewDownsampler builds a Downsampler against engine using strategy.
// A nil logger falls back to NewStdLogger.
func NewDownsampler(engine Engine, strategy DownsampleStrategy, cfg quantile.Config, logger Logger) *Downsampler {
	if logger == nil {
		logger = NewStdLogger()
	}
	return &Downsampler{
		engine:     engine,
		strategy:   strategy,
		cfg:        cfg,
		logger:     logger,
		metricLock: make(map[string]*sync.Mutex),
	}
}

func (d *Downsampler) lockFor(metric string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.metricLock[metric]
	if !ok {
		l = &sync.Mutex{}
		d.metricLock[metric] = l
	}
	return l
}

// Run performs one downsampling pass over every row stored for
// metric, applying the strategy's decision to each: ignored rows are
// left alone, discarded rows are deleted, and expanded rows are
// rewritten under their new key (merging with whatever the new key
// already holds) with the old key removed.
func (d *Downsampler) Run(metric string) error {
	lock := d.lockFor(metric)
	lock.Lock()
	defer lock.Unlock()

	it, err := d.engine.ScanPrefix(MetricKeyPrefix(metric))
	if err != nil {
		return err
	}
	defer it.Close()

	type rewrite struct {
		oldKey []byte
		newKey []byte
		value  []byte
	}
	var rewrites []rewrite
	var discards [][]byte

	for it.Next() {
		key := append([]byte(nil), it.Key()...)
		value := append([]byte(nil), it.Value()...)
		row, err := DecodeValue(value, d.cfg)
		if err != nil {
			d.logger.Errorf("downsample: dropping corrupt row for metric %q: %s", metric, err)
			continue
		}
		decision := d.strategy.Decide(row.Window)
		switch decision.Action {
		case DownsampleIgnore:
			continue
		case DownsampleDiscard:
			discards = append(discards, key)
		case DownsampleExpand:
			newRow := Row{Window: decision.ExpandedWindow, Sketch: row.Sketch}
			encoded, err := EncodeValue(newRow)
			if err != nil {
				d.logger.Errorf("downsample: failed to encode expanded row for metric %q: %s", metric, err)
				continue
			}
			newKey := EncodeKey(metric, decision.ExpandedWindow.Start)
			rewrites = append(rewrites, rewrite{oldKey: key, newKey: newKey, value: encoded})
		}
	}
	if err := it.Err(); err != nil {
		return err
	}

	for _, r := range rewrites {
		if err := d.engine.Merge(r.newKey, r.value); err != nil {
			return err
		}
		if string(r.newKey) != string(r.oldKey) {
			if err := d.engine.Delete(r.oldKey); err != nil {
				return err
			}
		}
	}
	for _, key := range discards {
		if err := d.engine.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
