package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// DebugEnabled returns true if debug mode is enabled via SHIFTPAY_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv("SHIFTPAY_DEBUG") != ""
}

// Debugf logs a formatted debug message only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		log.Debug().Msg(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
	}
}

// Debugln logs its arguments as one debug message only if debug mode is enabled
func Debugln(args ...interface{}) {
	if DebugEnabled() {
		log.Debug().Msg(strings.TrimRight(fmt.Sprintln(args...), "\n"))
	}
}
