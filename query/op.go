// Package query implements the pull-based operator tree that composes
// stored sketches across time and metrics: fetch, coalesce, combine,
// group, quantile, search. Each operator pulls from its upstream(s) on
// demand and returns outputs in non-decreasing window-start order.
//
// Grounded on original_source/src/query/ops/{fetch,coalesce,combine,
// quantile}.rs, original_source/caesium-server/src/query/ops/group.rs,
// and original_source/server/src/query/ops/search.rs.
package query

import (
	"github.com/caesiumdb/caesium/quantile"
	"github.com/caesiumdb/caesium/timeseries"
)

// OutputKind identifies which field of an Output is populated.
type OutputKind int

const (
	// OutputEnd signals the operator has no more output; every
	// subsequent call returns OutputEnd again.
	OutputEnd OutputKind = iota
	// OutputSketch carries a (window, sketch) pair.
	OutputSketch
	// OutputQuantile carries a phi-quantile result, possibly absent if
	// the source sketch was empty.
	OutputQuantile
	// OutputMetricName carries one matching metric name from search.
	OutputMetricName
)

// Output is the tagged result of one Op.Next call.
type Output struct {
	Kind OutputKind

	Window timeseries.TimeWindow
	Sketch  *quantile.Sketch

	Phi      float64
	Quantile *quantile.ApproxQuantile

	MetricName string
}

// Op is a pull-based operator: each call to Next returns the next
// output in the stream, or an End output once exhausted. Implementations
// are not safe for concurrent use; each is owned by one caller.
type Op interface {
	Next() (Output, error)
}
