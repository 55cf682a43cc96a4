package codec

import "errors"

// ErrFormat indicates the encoded bytes are structurally invalid: a bad
// vbyte continuation sequence, an impossible length prefix, or a
// violated invariant discovered only at decode time (e.g. too many
// compactor levels). ErrIO indicates a short read or write against the
// underlying io.Reader/io.Writer. Both are returned wrapped with
// fmt.Errorf("%w: ...", ...) so callers can still errors.Is against the
// sentinel.
var (
	ErrFormat = errors.New("codec: malformed data")
	ErrIO     = errors.New("codec: i/o error")
)
