package storage

import (
	"log"
	"os"
)

// Logger is the small injected logging seam the storage layer needs:
// the merge operator logs and drops corrupt operands rather than
// failing the merge, and the Downsampler logs rows it skips; those are
// the only places in this package that write a log line.
//
// Grounded on darshanime-pebble's injected-logger pattern (a narrow
// Infof/Errorf interface passed into the store at construction, never
// a package-level global).
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// stdLogger adapts the standard library's log.Logger to the Logger
// interface. It is the default used when NewSketchMergeOperator or
// NewDownsampler is given a nil logger.
type stdLogger struct {
	*log.Logger
}

// NewStdLogger returns a Logger backed by a log.Logger writing to
// os.Stderr with a timestamp prefix.
func NewStdLogger() Logger {
	return &stdLogger{Logger: log.New(os.Stderr, "", log.LstdFlags)}
}

func (l *stdLogger) Infof(format string, args ...interface{}) {
	l.Printf("INFO: "+format, args...)
}

func (l *stdLogger) Errorf(format string, args ...interface{}) {
	l.Printf("ERROR: "+format, args...)
}
