package database

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}

func statement(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLoggerTrace(t *testing.T) {
	ctx := context.Background()
	failing := errors.New("relation \"tests\" does not exist")

	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		begin   time.Time
		err     error
		want    []string
		wantNil bool
	}{
		{
			name:  "failed statement is an error",
			level: gormlogger.Warn,
			begin: time.Now(),
			err:   failing,
			want:  []string{`"level":"error"`, `SELECT * FROM tests`, `does not exist`, `"component":"gorm"`},
		},
		{
			name:    "record not found is not logged at warn",
			level:   gormlogger.Warn,
			begin:   time.Now(),
			err:     gorm.ErrRecordNotFound,
			wantNil: true,
		},
		{
			name:  "slow statement is a warning",
			level: gormlogger.Warn,
			begin: time.Now().Add(-time.Second),
			want:  []string{`"level":"warn"`, `"threshold"`, `SELECT * FROM tests`},
		},
		{
			name:    "fast statement is quiet at warn",
			level:   gormlogger.Warn,
			begin:   time.Now(),
			wantNil: true,
		},
		{
			name:  "info level traces every statement at debug",
			level: gormlogger.Info,
			begin: time.Now(),
			want:  []string{`"level":"debug"`, `"rows":3`},
		},
		{
			name:    "silent logs nothing",
			level:   gormlogger.Silent,
			begin:   time.Now().Add(-time.Second),
			err:     failing,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			l := newGormLogger(gormlogger.Warn, 200*time.Millisecond).LogMode(tt.level)

			l.Trace(ctx, tt.begin, statement("SELECT * FROM tests", 3), tt.err)

			if tt.wantNil {
				assert.Empty(t, buf.String())
				return
			}
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestGormLoggerMessages(t *testing.T) {
	buf := captureLog(t)
	l := newGormLogger(gormlogger.Warn, 0)

	l.Info(context.Background(), "skipped %d", 1)
	assert.Empty(t, buf.String())

	l.Warn(context.Background(), "index %s missing", "idx_tests_name")
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "index idx_tests_name missing")
}
