package storage

import (
	"github.com/caesiumdb/caesium/quantile"
	"github.com/caesiumdb/caesium/timeseries"
)

// MergeOperator mirrors RocksDB's merge-operator contract: given an
// optional existing value and a list of operand values sharing the
// same key (oldest first), produce the merged value. PartialMerge is
// an optional optimization for combining two operands before a full
// merge; returning (nil, false) is always valid and simply means the
// engine must keep both operands until FullMerge runs.
//
// Grounded on aalhour-rockyardkv's MergeOperator interface
// (merge_operator.go), generalized here from byte-blob semantics to
// the specific (window, sketch) row shape stored in this package.
type MergeOperator interface {
	Name() string
	FullMerge(key []byte, existingValue []byte, operands [][]byte) (newValue []byte, ok bool)
	PartialMerge(key []byte, leftOperand, rightOperand []byte) (newOperand []byte, ok bool)
}

// SketchMergeOperator implements MergeOperator for rows of
// (TimeWindow, quantile.Sketch): it decodes every candidate value,
// merges pairwise taking the union window and the sketch merge, and
// re-encodes. A corrupt operand (one that fails to decode) is logged
// and dropped rather than failing the whole merge, since this runs
// inside the storage engine's compaction path and must never stop it.
//
// Grounded on spec.md §4.6/§7's merge-operator error-handling rule.
type SketchMergeOperator struct {
	Config quantile.Config
	Logger Logger
}

// NewSketchMergeOperator builds a merge operator. A nil logger falls
// back to NewStdLogger.
func NewSketchMergeOperator(cfg quantile.Config, logger Logger) *SketchMergeOperator {
	if logger == nil {
		logger = NewStdLogger()
	}
	return &SketchMergeOperator{Config: cfg, Logger: logger}
}

func (m *SketchMergeOperator) Name() string { return "SketchMergeOperator" }

// FullMerge decodes existingValue (if any) and every operand, drops
// any that fail to decode (logging why), folds the survivors pairwise
// via mergeRows, and re-encodes the result. If every candidate is
// corrupt, the merge fails (ok=false): there is nothing valid to
// store.
func (m *SketchMergeOperator) FullMerge(key []byte, existingValue []byte, operands [][]byte) ([]byte, bool) {
	var acc *Row

	absorb := func(data []byte) {
		row, err := DecodeValue(data, m.Config)
		if err != nil {
			m.Logger.Errorf("merge: dropping corrupt operand for key %q: %s", key, err)
			return
		}
		if acc == nil {
			acc = &row
			return
		}
		merged := mergeRows(*acc, row)
		acc = &merged
	}

	if len(existingValue) > 0 {
		absorb(existingValue)
	}
	for _, op := range operands {
		absorb(op)
	}

	if acc == nil {
		return nil, false
	}
	encoded, err := EncodeValue(*acc)
	if err != nil {
		m.Logger.Errorf("merge: failed to encode merged value for key %q: %s", key, err)
		return nil, false
	}
	return encoded, true
}

// PartialMerge combines two raw operands using the same decode/merge/
// encode path as FullMerge, letting the engine collapse operand lists
// before a full merge runs.
func (m *SketchMergeOperator) PartialMerge(key []byte, left, right []byte) ([]byte, bool) {
	return m.FullMerge(key, left, [][]byte{right})
}

func mergeRows(a, b Row) Row {
	start := a.Window.Start
	if b.Window.Start < start {
		start = b.Window.Start
	}
	end := a.Window.End
	if b.Window.End > end {
		end = b.Window.End
	}
	return Row{
		Window: timeseries.NewTimeWindow(start, end),
		Sketch: a.Sketch.Merge(b.Sketch),
	}
}
