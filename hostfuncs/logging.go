package hostfuncs

import (
	"context"
	"log/slog"

	"github.com/magnolia-os/magnolia-go/domain/entities"
)

// LoggingObserver logs every call at debug level and failures at info.
type LoggingObserver struct {
	logger *slog.Logger
	table  entities.ErrnoTable
}

// NewLoggingObserver returns an observer writing to logger. Error codes are
// named through table.
func NewLoggingObserver(logger *slog.Logger, table entities.ErrnoTable) *LoggingObserver {
	return &LoggingObserver{logger: logger, table: table}
}

// Observe implements Observer.
func (l *LoggingObserver) Observe(c Call) {
	if !c.Failed {
		l.logger.Debug("syscall", "name", c.Name, "result", c.Result, "duration", c.Duration)
		return
	}
	l.logger.LogAttrs(context.Background(), slog.LevelInfo, "syscall failed",
		slog.String("name", c.Name),
		slog.Int64("result", c.Result),
		slog.Int("errno", int(c.Errno)),
		slog.String("code", l.table.Name(entities.Errno(c.Errno))),
	)
}
