package parse

import (
	"errors"
	"io"

	seelog "github.com/cihub/seelog"
)

// logger is the package-scoped logger for the lexer and parser. It is
// independent of the root package's logger (see the top-level logger.go)
// so that a caller can enable parse tracing without enabling executor
// tracing, or vice versa.
var logger seelog.LoggerInterface

func init() {
	DisableLog()
}

// DisableLog disables all parse-package log output. This is the default.
func DisableLog() {
	logger = seelog.Disabled
}

// UseLogger uses a specified seelog.LoggerInterface to output library log.
// Use this func if you are using Seelog logging system in your app.
func UseLogger(newLogger seelog.LoggerInterface) {
	logger = newLogger
}

// SetLogWriter uses a specified io.Writer to output library log.
// Use this func if you are not using Seelog logging system in your app.
func SetLogWriter(writer io.Writer) error {
	if writer == nil {
		return errors.New("Nil writer")
	}

	newLogger, err := seelog.LoggerFromWriterWithMinLevel(writer, seelog.TraceLvl)
	if err != nil {
		return err
	}

	UseLogger(newLogger)
	return nil
}

// FlushLog flushes any buffered log output. Call this before app shutdown.
func FlushLog() {
	logger.Flush()
}
