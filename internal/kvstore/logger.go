package kvstore

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// badgerLogger adapts slog to badger's printf-style logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func newBadgerLogger(logger *slog.Logger) *badgerLogger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &badgerLogger{logger: logger}
}

func (l *badgerLogger) Errorf(msg string, args ...any) {
	l.logger.Error(l.format(msg, args), "component", "kvstore")
}

func (l *badgerLogger) Warningf(msg string, args ...any) {
	l.logger.Warn(l.format(msg, args), "component", "kvstore")
}

func (l *badgerLogger) Infof(msg string, args ...any) {
	l.logger.Info(l.format(msg, args), "component", "kvstore")
}

func (l *badgerLogger) Debugf(msg string, args ...any) {
	l.logger.Debug(l.format(msg, args), "component", "kvstore")
}

// badger terminates most messages with a newline.
func (l *badgerLogger) format(msg string, args []any) string {
	return strings.TrimRight(fmt.Sprintf(msg, args...), "\n")
}
