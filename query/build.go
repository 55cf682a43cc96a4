package query

import (
	"fmt"

	"github.com/caesiumdb/caesium/quantile"
	"github.com/caesiumdb/caesium/query/lang"
	"github.com/caesiumdb/caesium/storage"
	"github.com/caesiumdb/caesium/timeseries"
)

// Build parses query and binds its single top-level call to an
// operator tree, recursively building any nested calls passed as
// arguments.
//
// Grounded on original_source/server/src/query/build.rs.
func Build(query string, engine storage.Engine, cfg quantile.Config) (Op, error) {
	expr, err := lang.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, err)
	}
	if expr.Kind != lang.ExprCall {
		return nil, fmt.Errorf("%w: top-level query must be a function call", ErrBuild)
	}
	return buildCall(expr, engine, cfg)
}

func buildCall(expr lang.Expr, engine storage.Engine, cfg quantile.Config) (Op, error) {
	switch expr.Name {
	case "fetch":
		return buildFetch(expr.Args, engine, cfg)
	case "coalesce":
		return buildCoalesce(expr.Args, engine, cfg)
	case "combine":
		return buildCombine(expr.Args, engine, cfg)
	case "group":
		return buildGroup(expr.Args, engine, cfg)
	case "quantile":
		return buildQuantile(expr.Args, engine, cfg)
	case "search":
		return buildSearch(expr.Args, engine)
	default:
		return nil, fmt.Errorf("%w: unrecognized function %q", ErrBuild, expr.Name)
	}
}

func buildFetch(args []lang.Expr, engine storage.Engine, cfg quantile.Config) (Op, error) {
	metric, err := stringArg(args, 0)
	if err != nil {
		return nil, err
	}
	start, err := optionalTimestampArg(args, 1)
	if err != nil {
		return nil, err
	}
	end, err := optionalTimestampArg(args, 2)
	if err != nil {
		return nil, err
	}
	return NewFetchOp(engine, cfg, metric, start, end)
}

func buildCoalesce(args []lang.Expr, engine storage.Engine, cfg quantile.Config) (Op, error) {
	input, err := funcArg(args, 0, engine, cfg)
	if err != nil {
		return nil, err
	}
	return NewCoalesceOp(input), nil
}

func buildCombine(args []lang.Expr, engine storage.Engine, cfg quantile.Config) (Op, error) {
	inputs := make([]Op, 0, len(args))
	for i := range args {
		input, err := funcArg(args, i, engine, cfg)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, input)
	}
	return NewCombineOp(inputs), nil
}

func buildGroup(args []lang.Expr, engine storage.Engine, cfg quantile.Config) (Op, error) {
	granStr, err := optionalStringArg(args, 0)
	if err != nil {
		return nil, err
	}
	granularity := GranularitySeconds
	if granStr != nil {
		granularity, err = ParseGranularity(*granStr)
		if err != nil {
			return nil, err
		}
	}
	input, err := funcArg(args, 1, engine, cfg)
	if err != nil {
		return nil, err
	}
	return NewGroupOp(granularity, input), nil
}

func buildQuantile(args []lang.Expr, engine storage.Engine, cfg quantile.Config) (Op, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("%w: quantile requires an input and at least one phi", ErrBuild)
	}
	input, err := funcArg(args, 0, engine, cfg)
	if err != nil {
		return nil, err
	}
	phis := make([]float64, 0, len(args)-1)
	for i := 1; i < len(args); i++ {
		phi, err := floatArg(args, i)
		if err != nil {
			return nil, err
		}
		phis = append(phis, phi)
	}
	return NewQuantileOp(input, phis)
}

func buildSearch(args []lang.Expr, engine storage.Engine) (Op, error) {
	pattern, err := stringArg(args, 0)
	if err != nil {
		return nil, err
	}
	return NewSearchOp(engine, pattern)
}

func stringArg(args []lang.Expr, idx int) (string, error) {
	if idx >= len(args) {
		return "", fmt.Errorf("%w: missing argument %d", ErrBuild, idx)
	}
	if args[idx].Kind != lang.ExprString {
		return "", fmt.Errorf("%w: argument %d must be a string", ErrBuild, idx)
	}
	return args[idx].Str, nil
}

func optionalStringArg(args []lang.Expr, idx int) (*string, error) {
	if idx >= len(args) {
		return nil, nil
	}
	s, err := stringArg(args, idx)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func intArg(args []lang.Expr, idx int) (uint64, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("%w: missing argument %d", ErrBuild, idx)
	}
	if args[idx].Kind != lang.ExprInt {
		return 0, fmt.Errorf("%w: argument %d must be an int", ErrBuild, idx)
	}
	return args[idx].Int, nil
}

func optionalTimestampArg(args []lang.Expr, idx int) (*timeseries.TimeStamp, error) {
	if idx >= len(args) {
		return nil, nil
	}
	v, err := intArg(args, idx)
	if err != nil {
		return nil, err
	}
	ts := timeseries.TimeStamp(v)
	return &ts, nil
}

func floatArg(args []lang.Expr, idx int) (float64, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("%w: missing argument %d", ErrBuild, idx)
	}
	if args[idx].Kind != lang.ExprFloat {
		return 0, fmt.Errorf("%w: argument %d must be a float", ErrBuild, idx)
	}
	return args[idx].Float, nil
}

func funcArg(args []lang.Expr, idx int, engine storage.Engine, cfg quantile.Config) (Op, error) {
	if idx >= len(args) {
		return nil, fmt.Errorf("%w: missing argument %d", ErrBuild, idx)
	}
	if args[idx].Kind != lang.ExprCall {
		return nil, fmt.Errorf("%w: argument %d must be a function call", ErrBuild, idx)
	}
	return buildCall(args[idx], engine, cfg)
}
