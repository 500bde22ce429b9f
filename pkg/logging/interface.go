package logging

import (
	"fmt"
)

// Interface decouples the agent packages from the concrete logging library.
//
// Production code gets a zap-backed implementation through Module; tests use
// NewTestLogger or NewNopLogger. Prefer WithField over the printf-style
// methods so that fields stay queryable in the JSON output.
type Interface interface {
	WithField(key string, value interface{}) Interface
	WithError(err error) Interface

	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Fatal(msg string)

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

func fmtMsg(format string, args []interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
