package query

import (
	"fmt"

	"github.com/caesiumdb/caesium/quantile"
	"github.com/caesiumdb/caesium/timeseries"
)

// QuantileOp queries every phi in order against each upstream sketch,
// emitting one OutputQuantile per (sketch, phi) pair before pulling the
// next upstream sketch. The result is nil iff the sketch was empty.
//
// Grounded on original_source/src/query/ops/quantile.rs.
type QuantileOp struct {
	input Op
	phis  []float64
	queue []Output
}

// NewQuantileOp builds a QuantileOp over input for the given phi
// values, each of which must lie in (0, 1).
func NewQuantileOp(input Op, phis []float64) (*QuantileOp, error) {
	for _, phi := range phis {
		if phi <= 0 || phi >= 1 {
			return nil, fmt.Errorf("%w: phi %g out of range (0, 1)", ErrBuild, phi)
		}
	}
	return &QuantileOp{input: input, phis: phis}, nil
}

func (q *QuantileOp) Next() (Output, error) {
	if len(q.queue) == 0 {
		out, err := q.input.Next()
		if err != nil {
			return Output{}, err
		}
		switch out.Kind {
		case OutputEnd:
			return Output{Kind: OutputEnd}, nil
		case OutputSketch:
			q.fillQueue(out.Window, out.Sketch)
		default:
			return Output{}, fmt.Errorf("%w: expected sketch output, got something else", ErrRuntime)
		}
	}
	if len(q.queue) == 0 {
		return Output{Kind: OutputEnd}, nil
	}
	next := q.queue[0]
	q.queue = q.queue[1:]
	return next, nil
}

func (q *QuantileOp) fillQueue(window timeseries.TimeWindow, sketch *quantile.Sketch) {
	qs := sketch.ToQuerySketch()
	for _, phi := range q.phis {
		var result *quantile.ApproxQuantile
		if approx, ok := qs.Query(phi); ok {
			result = &approx
		}
		q.queue = append(q.queue, Output{Kind: OutputQuantile, Window: window, Phi: phi, Quantile: result})
	}
}
