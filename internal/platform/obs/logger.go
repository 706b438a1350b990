// Package obs provides the leveled loggers used across the engine and
// its operator surfaces: a handful of package-level *log.Logger values,
// one per severity, so call sites pick a level by which variable they
// call rather than by passing a level argument around.
package obs

import (
	"log"
	"os"
)

var (
	// Info logs routine lifecycle events (flush, rotation, recovery
	// stats).
	Info = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Warn logs recovered-but-notable conditions, such as WAL tail
	// corruption truncated during recovery.
	Warn = log.New(os.Stdout, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Error logs conditions the caller will also see returned as an
	// error, duplicated here so operators watching stderr see failures
	// without instrumenting every call site.
	Error = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
)
