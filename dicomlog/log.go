// Package dicomlog provides the verbosity-gated logging used across the
// toolkit's codec and network packages. It is a thin wrapper around
// logrus, not a general-purpose logging facility.
package dicomlog

import (
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// verbosity is the current log level. The larger the value, the more
// verbose; -1 silences all debug output.
var verbosity = int32(0)

// SetLevel sets log verbosity. The larger the value, the more verbose.
// Setting it to -1 silences all debug output; warnings logged with
// Vprintf(-1, ...) are still emitted. Thread safe.
func SetLevel(l int) {
	atomic.StoreInt32(&verbosity, int32(l))
}

// Level returns the current log level. Thread safe.
func Level() int {
	return int(atomic.LoadInt32(&verbosity))
}

// Vprintf logs format/args at logrus' Warn level when l is -1 (used for
// conditions worth surfacing regardless of verbosity), or at Debug level
// when the current verbosity is at least l.
func Vprintf(l int, format string, args ...interface{}) {
	if l == -1 {
		log.Warnf(format, args...)
	} else if Level() >= l {
		log.Debugf(format, args...)
	}
}
