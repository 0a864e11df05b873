// Package log provides a logging backend, based around the go-logging package.
package log

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/op/go-logging.v1"
)

// Backend is a log backend.
type Backend struct {
	w       io.Writer
	backend logging.LeveledBackend
}

// GetLogger returns a per-module logger that writes to the backend.
func (b *Backend) GetLogger(module string) *logging.Logger {
	l := logging.MustGetLogger(module)
	l.SetBackend(b.backend)
	return l
}

// Close closes the log file, if any.
func (b *Backend) Close() error {
	if c, ok := b.w.(io.Closer); ok && b.w != os.Stderr {
		return c.Close()
	}
	return nil
}

// New initializes a logging backend. Logs go to f, or stderr when f is
// empty, so that stdout stays free for stream output.
func New(f string, level string, disable bool) (*Backend, error) {
	b := new(Backend)

	lvl, err := logLevelFromString(level)
	if err != nil {
		return nil, err
	}

	if disable {
		b.w = io.Discard
	} else if f == "" {
		b.w = os.Stderr
	} else {
		const fileMode = 0600

		flags := os.O_CREATE | os.O_APPEND | os.O_WRONLY
		b.w, err = os.OpenFile(f, flags, fileMode)
		if err != nil {
			return nil, fmt.Errorf("log: failed to create log file: %v", err)
		}
	}

	logFmt := logging.MustStringFormatter("%{time:15:04:05.000} %{level:.4s} %{module}: %{message}")
	base := logging.NewLogBackend(b.w, "", 0)
	formatted := logging.NewBackendFormatter(base, logFmt)
	b.backend = logging.AddModuleLevel(formatted)
	b.backend.SetLevel(lvl, "")
	return b, nil
}

func logLevelFromString(l string) (logging.Level, error) {
	switch l {
	case "ERROR":
		return logging.ERROR, nil
	case "WARNING":
		return logging.WARNING, nil
	case "NOTICE":
		return logging.NOTICE, nil
	case "INFO":
		return logging.INFO, nil
	case "DEBUG":
		return logging.DEBUG, nil
	default:
		return logging.CRITICAL, fmt.Errorf("log: invalid level: '%v'", l)
	}
}
