package query

import (
	"container/heap"
	"fmt"

	"github.com/caesiumdb/caesium/quantile"
	"github.com/caesiumdb/caesium/timeseries"
)

// CombineOp performs a k-way merge of k sketch streams, ordered by
// window start. Overlapping adjacent outputs (the next popped item's
// window overlaps the current accumulator's) are folded into the
// accumulator; the first non-overlapping successor is emitted and
// becomes the new accumulator.
//
// Grounded on original_source/src/query/ops/combine.rs, whose Rust
// BinaryHeap<HeapItem> (a max-heap reversed to act as a min-heap by
// window start) becomes a container/heap min-heap here.
type CombineOp struct {
	inputs []Op
	state  combineState
}

// NewCombineOp builds a CombineOp over inputs; order among inputs
// doesn't matter, only each input's own window-start ordering.
func NewCombineOp(inputs []Op) *CombineOp {
	return &CombineOp{inputs: inputs, state: &combineEmpty{}}
}

func (c *CombineOp) Next() (Output, error) {
	for {
		next, out, err := c.state.transition(c.inputs)
		if err != nil {
			return Output{}, err
		}
		c.state = next
		if out != nil {
			return *out, nil
		}
	}
}

type heapItem struct {
	inputIdx int
	window   timeseries.TimeWindow
	sketch   *quantile.Sketch
}

func itemFromInput(idx int, op Op) (*heapItem, error) {
	out, err := op.Next()
	if err != nil {
		return nil, err
	}
	switch out.Kind {
	case OutputSketch:
		return &heapItem{inputIdx: idx, window: out.Window, sketch: out.Sketch}, nil
	case OutputEnd:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: expected sketch output, got something else", ErrRuntime)
	}
}

func (h *heapItem) overlaps(other *heapItem) bool {
	return h.window.Overlaps(other.window)
}

func (h *heapItem) mergeWith(other *heapItem) *heapItem {
	return &heapItem{
		inputIdx: h.inputIdx,
		window:   h.window.Union(other.window),
		sketch:   h.sketch.Merge(other.sketch),
	}
}

type itemHeap []*heapItem

func (h itemHeap) Len() int            { return len(h) }
func (h itemHeap) Less(i, j int) bool  { return h[i].window.Start < h[j].window.Start }
func (h itemHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *itemHeap) Push(x interface{}) { *h = append(*h, x.(*heapItem)) }
func (h *itemHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func replaceIntoHeap(inputs []Op, idx int, h *itemHeap) error {
	item, err := itemFromInput(idx, inputs[idx])
	if err != nil {
		return err
	}
	if item != nil {
		heap.Push(h, item)
	}
	return nil
}

// combineState is the CombineOp state machine: Empty | Selecting(heap)
// | Combining(current, heap) | Done, mirroring the Rust source's
// explicit State enum.
type combineState interface {
	transition(inputs []Op) (combineState, *Output, error)
}

type combineEmpty struct{}

func (combineEmpty) transition(inputs []Op) (combineState, *Output, error) {
	h := make(itemHeap, 0, len(inputs))
	heap.Init(&h)
	for idx, op := range inputs {
		item, err := itemFromInput(idx, op)
		if err != nil {
			return nil, nil, err
		}
		if item != nil {
			heap.Push(&h, item)
		}
	}
	return &combineSelecting{heap: h}, nil, nil
}

type combineSelecting struct {
	heap itemHeap
}

func (s *combineSelecting) transition(inputs []Op) (combineState, *Output, error) {
	if s.heap.Len() == 0 {
		return &combineDone{}, &Output{Kind: OutputEnd}, nil
	}
	item := heap.Pop(&s.heap).(*heapItem)
	if err := replaceIntoHeap(inputs, item.inputIdx, &s.heap); err != nil {
		return nil, nil, err
	}
	return &combineCombining{current: item, heap: s.heap}, nil, nil
}

type combineCombining struct {
	current *heapItem
	heap    itemHeap
}

func (c *combineCombining) transition(inputs []Op) (combineState, *Output, error) {
	if c.heap.Len() == 0 {
		out := &Output{Kind: OutputSketch, Window: c.current.window, Sketch: c.current.sketch}
		return &combineDone{}, out, nil
	}
	item := heap.Pop(&c.heap).(*heapItem)
	if err := replaceIntoHeap(inputs, item.inputIdx, &c.heap); err != nil {
		return nil, nil, err
	}
	if item.overlaps(c.current) {
		merged := c.current.mergeWith(item)
		return &combineCombining{current: merged, heap: c.heap}, nil, nil
	}
	out := &Output{Kind: OutputSketch, Window: c.current.window, Sketch: c.current.sketch}
	return &combineCombining{current: item, heap: c.heap}, out, nil
}

type combineDone struct{}

func (combineDone) transition([]Op) (combineState, *Output, error) {
	return &combineDone{}, &Output{Kind: OutputEnd}, nil
}
