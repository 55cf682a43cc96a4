package query

import (
	"github.com/caesiumdb/caesium/quantile"
	"github.com/caesiumdb/caesium/timeseries"
)

// ResultKind identifies which fields of a Result are populated.
type ResultKind int

const (
	// ResultQuantile carries a (window, phi, quantile) answer; quantile
	// is never nil, since Execute skips outputs from empty sketches.
	ResultQuantile ResultKind = iota
	// ResultMetricName carries one metric name matched by search.
	ResultMetricName
)

// Result is one row of a query's final output: the tagged union
// execute() collects from a built operator tree's Quantile and
// MetricName outputs (a bare Sketch output reaching the top of a tree
// is an ErrRuntime error, not a result).
//
// Grounded on original_source/server/src/caesium_core/network/result.rs's
// QueryResult enum.
type Result struct {
	Kind ResultKind

	Window   timeseries.TimeWindow
	Phi      float64
	Quantile *quantile.ApproxQuantile

	MetricName string
}
