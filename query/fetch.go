package query

import (
	"fmt"

	"github.com/caesiumdb/caesium/quantile"
	"github.com/caesiumdb/caesium/storage"
	"github.com/caesiumdb/caesium/timeseries"
)

// FetchOp streams stored rows for one metric, optionally bounded by
// window.start() >= start and window.end() <= end.
//
// Grounded on original_source/src/query/ops/fetch.rs.
type FetchOp struct {
	it    storage.Iterator
	cfg   quantile.Config
	start *timeseries.TimeStamp
	end   *timeseries.TimeStamp
}

// NewFetchOp builds a FetchOp reading metric's rows from engine. A nil
// start or end leaves that bound unconstrained.
func NewFetchOp(engine storage.Engine, cfg quantile.Config, metric string, start, end *timeseries.TimeStamp) (*FetchOp, error) {
	it, err := engine.ScanPrefix(storage.MetricKeyPrefix(metric))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRuntime, err)
	}
	return &FetchOp{it: it, cfg: cfg, start: start, end: end}, nil
}

func (f *FetchOp) Next() (Output, error) {
	for f.it.Next() {
		row, err := storage.DecodeValue(f.it.Value(), f.cfg)
		if err != nil {
			return Output{}, fmt.Errorf("%w: %s", ErrRuntime, err)
		}
		if f.start != nil && row.Window.Start < *f.start {
			continue
		}
		if f.end != nil && row.Window.End > *f.end {
			continue
		}
		return Output{Kind: OutputSketch, Window: row.Window, Sketch: row.Sketch}, nil
	}
	if err := f.it.Err(); err != nil {
		return Output{}, fmt.Errorf("%w: %s", ErrRuntime, err)
	}
	return Output{Kind: OutputEnd}, nil
}
