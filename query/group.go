package query

import (
	"fmt"

	"github.com/caesiumdb/caesium/quantile"
	"github.com/caesiumdb/caesium/timeseries"
)

// Granularity is the bucketing unit a GroupOp groups its input by.
type Granularity int

const (
	GranularitySeconds Granularity = iota
	GranularityHours
	GranularityDays
)

// ParseGranularity maps the query language's granularity argument to a
// Granularity, or reports a build error for anything else.
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "seconds":
		return GranularitySeconds, nil
	case "hours":
		return GranularityHours, nil
	case "days":
		return GranularityDays, nil
	default:
		return 0, fmt.Errorf("%w: group granularity must be seconds, hours, or days, got %q", ErrBuild, s)
	}
}

func (g Granularity) groupID(window timeseries.TimeWindow) timeseries.TimeStamp {
	switch g {
	case GranularityHours:
		return timeseries.Hours(window.Start)
	case GranularityDays:
		return timeseries.Days(window.Start)
	default:
		return window.Start
	}
}

// GroupOp buckets its input by group_id = granularity(window.start()),
// merging every sketch landing in the same bucket and emitting one
// output per bucket in start order with window equal to the union of
// everything merged into it.
//
// Implemented as the Empty -> Merging(group, window, sketch) -> Done
// state machine from
// original_source/caesium-server/src/query/ops/group.rs, which streams
// bucket-at-a-time instead of materializing a full bucket map the way
// the older original_source/src/query/ops/bucket.rs does.
type GroupOp struct {
	input       Op
	granularity Granularity
	state       groupState
}

// NewGroupOp builds a GroupOp over input.
func NewGroupOp(granularity Granularity, input Op) *GroupOp {
	return &GroupOp{input: input, granularity: granularity, state: &groupEmpty{}}
}

func (g *GroupOp) Next() (Output, error) {
	for {
		next, out, err := g.state.transition(g.granularity, g.input)
		if err != nil {
			return Output{}, err
		}
		g.state = next
		if out != nil {
			return *out, nil
		}
	}
}

type groupState interface {
	transition(gran Granularity, input Op) (groupState, *Output, error)
}

type groupEmpty struct{}

func (groupEmpty) transition(gran Granularity, input Op) (groupState, *Output, error) {
	out, err := input.Next()
	if err != nil {
		return nil, nil, err
	}
	switch out.Kind {
	case OutputEnd:
		return &groupDone{}, &Output{Kind: OutputEnd}, nil
	case OutputSketch:
		id := gran.groupID(out.Window)
		return &groupMerging{groupID: id, window: out.Window, sketch: out.Sketch}, nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: expected sketch output, got something else", ErrRuntime)
	}
}

type groupMerging struct {
	groupID timeseries.TimeStamp
	window  timeseries.TimeWindow
	sketch  *quantile.Sketch
}

func (m *groupMerging) transition(gran Granularity, input Op) (groupState, *Output, error) {
	out, err := input.Next()
	if err != nil {
		return nil, nil, err
	}
	switch out.Kind {
	case OutputEnd:
		result := &Output{Kind: OutputSketch, Window: m.window, Sketch: m.sketch}
		return &groupDone{}, result, nil
	case OutputSketch:
		id := gran.groupID(out.Window)
		if id == m.groupID {
			merged := m.sketch.Merge(out.Sketch)
			window := m.window.Union(out.Window)
			return &groupMerging{groupID: id, window: window, sketch: merged}, nil, nil
		}
		result := &Output{Kind: OutputSketch, Window: m.window, Sketch: m.sketch}
		next := &groupMerging{groupID: id, window: out.Window, sketch: out.Sketch}
		return next, result, nil
	default:
		return nil, nil, fmt.Errorf("%w: expected sketch output, got something else", ErrRuntime)
	}
}

type groupDone struct{}

func (groupDone) transition(Granularity, Op) (groupState, *Output, error) {
	return &groupDone{}, &Output{Kind: OutputEnd}, nil
}
