package query

import (
	"fmt"

	"github.com/caesiumdb/caesium/storage"
)

// SearchOp emits one OutputMetricName per metric name matching a glob
// pattern, in lexicographic order.
//
// Grounded on original_source/server/src/query/ops/search.rs.
type SearchOp struct {
	names []string
	pos   int
}

// NewSearchOp builds a SearchOp by resolving pattern against engine up
// front: the underlying engines searched here are in-memory snapshots,
// so there's no streaming cursor to hold open the way fetch's is.
func NewSearchOp(engine storage.Engine, pattern string) (*SearchOp, error) {
	names, err := engine.Search(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRuntime, err)
	}
	return &SearchOp{names: names}, nil
}

func (s *SearchOp) Next() (Output, error) {
	if s.pos >= len(s.names) {
		return Output{Kind: OutputEnd}, nil
	}
	name := s.names[s.pos]
	s.pos++
	return Output{Kind: OutputMetricName, MetricName: name}, nil
}
