package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// zerologGormLogger sends gorm's messages and SQL traces to the global zerolog
// logger. Statements are traced at debug level when the level is Info, slow
// statements are warnings and failed statements are errors. Record not found
// is not an error.
type zerologGormLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(level gormlogger.LogLevel, slowThreshold time.Duration) gormlogger.Interface {
	return &zerologGormLogger{level: level, slowThreshold: slowThreshold}
}

func (l *zerologGormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	out := *l
	out.level = level
	return &out
}

func (l *zerologGormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		log.Info().Str("component", "gorm").Msg(fmt.Sprintf(msg, args...))
	}
}

func (l *zerologGormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		log.Warn().Str("component", "gorm").Msg(fmt.Sprintf(msg, args...))
	}
}

func (l *zerologGormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		log.Error().Str("component", "gorm").Msg(fmt.Sprintf(msg, args...))
	}
}

func (l *zerologGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	var event *zerolog.Event
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		event = log.Error().Err(err)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		event = log.Warn().Dur("threshold", l.slowThreshold)
	case l.level >= gormlogger.Info:
		event = log.Debug()
	default:
		return
	}
	sql, rows := fc()
	event.Str("component", "gorm").Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("SQL statement")
}
