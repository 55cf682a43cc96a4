package query

import "errors"

// Sentinels for the three error taxonomies the query engine can raise:
// parsing the s-expression surface, building an operator tree from the
// parsed calls, and evaluating that tree against storage. All are
// returned wrapped with fmt.Errorf("%w: ...") so callers can still
// errors.Is against the sentinel, matching the wrap convention used by
// codec.ErrFormat/ErrIO.
var (
	ErrParse   = errors.New("query: parse error")
	ErrBuild   = errors.New("query: build error")
	ErrRuntime = errors.New("query: runtime error")
)
