package query

import (
	"fmt"

	"github.com/caesiumdb/caesium/quantile"
	"github.com/caesiumdb/caesium/timeseries"
)

// CoalesceOp exhausts its input, folding every sketch into one with
// window = (min start, max end). It emits at most one Sketch output,
// then End. Idempotent: coalescing an already-coalesced stream returns
// the same single sketch.
//
// Grounded on original_source/src/query/ops/coalesce.rs.
type CoalesceOp struct {
	input Op
	done  bool
}

// NewCoalesceOp builds a CoalesceOp over input.
func NewCoalesceOp(input Op) *CoalesceOp {
	return &CoalesceOp{input: input}
}

func (c *CoalesceOp) Next() (Output, error) {
	if c.done {
		return Output{Kind: OutputEnd}, nil
	}
	c.done = true

	var merged *quantile.Sketch
	window := timeseries.TimeWindow{}
	seen := false

	for {
		out, err := c.input.Next()
		if err != nil {
			return Output{}, err
		}
		switch out.Kind {
		case OutputSketch:
			if merged == nil {
				merged = out.Sketch
			} else {
				merged = merged.Merge(out.Sketch)
			}
			if !seen {
				window = out.Window
				seen = true
			} else {
				window = window.Union(out.Window)
			}
		case OutputEnd:
			if !seen {
				return Output{Kind: OutputEnd}, nil
			}
			return Output{Kind: OutputSketch, Window: window, Sketch: merged}, nil
		default:
			return Output{}, fmt.Errorf("%w: expected sketch output, got something else", ErrRuntime)
		}
	}
}
