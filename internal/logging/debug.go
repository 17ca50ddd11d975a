package logging

import (
	"fmt"
	"log/slog"
	"os"
)

// DebugEnabled returns true if debug mode is enabled via TT_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv("TT_DEBUG") != ""
}

// Debugf logs a formatted debug message through the default logger only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		slog.Debug(fmt.Sprintf(format, args...))
	}
}

