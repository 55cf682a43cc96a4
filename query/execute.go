package query

import (
	"fmt"

	"github.com/caesiumdb/caesium/quantile"
	"github.com/caesiumdb/caesium/storage"
)

// Execute parses, builds, and fully drains a query string against
// engine, collecting its Quantile and MetricName outputs into Results.
// A Quantile output with no result (its sketch was empty) is skipped.
// A bare Sketch reaching the top of the tree (e.g. the query was just
// "fetch(...)" with no quantile wrapping it into something terminal)
// is an ErrRuntime error: there is no sketch-shaped Result to return
// it as.
//
// Grounded on original_source/server/src/query/execute.rs.
func Execute(query string, engine storage.Engine, cfg quantile.Config) ([]Result, error) {
	op, err := Build(query, engine, cfg)
	if err != nil {
		return nil, err
	}
	var results []Result
	for {
		out, err := op.Next()
		if err != nil {
			return nil, err
		}
		switch out.Kind {
		case OutputEnd:
			return results, nil
		case OutputQuantile:
			if out.Quantile != nil {
				results = append(results, Result{
					Kind:     ResultQuantile,
					Window:   out.Window,
					Phi:      out.Phi,
					Quantile: out.Quantile,
				})
			}
		case OutputMetricName:
			results = append(results, Result{Kind: ResultMetricName, MetricName: out.MetricName})
		default:
			return nil, fmt.Errorf("%w: query must terminate in quantile(...) or search(...), not a bare sketch stream", ErrRuntime)
		}
	}
}
