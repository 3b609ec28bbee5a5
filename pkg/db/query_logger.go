package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/paintqueue/paintqueue-backend/pkg/logger"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

// queryLogger routes GORM's trace output into the service logger. Only slow
// statements and real failures are logged; record-not-found is expected.
type queryLogger struct {
	logg      *logger.Logger
	threshold time.Duration
	level     gormlogger.LogLevel
}

func newQueryLogger(logg *logger.Logger, threshold time.Duration) gormlogger.Interface {
	if logg == nil {
		return gormlogger.Discard
	}
	if threshold <= 0 {
		threshold = defaultSlowQueryThreshold
	}
	return &queryLogger{logg: logg, threshold: threshold, level: gormlogger.Warn}
}

func (q *queryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *q
	next.level = level
	return &next
}

func (q *queryLogger) Info(ctx context.Context, msg string, _ ...any) {
	if q.level >= gormlogger.Info {
		q.logg.Debug(ctx, msg)
	}
}

func (q *queryLogger) Warn(ctx context.Context, msg string, _ ...any) {
	if q.level >= gormlogger.Warn {
		q.logg.Warn(ctx, msg)
	}
}

func (q *queryLogger) Error(ctx context.Context, msg string, _ ...any) {
	if q.level >= gormlogger.Error {
		q.logg.Error(ctx, msg, nil)
	}
}

func (q *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if q.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && q.level >= gormlogger.Error:
		sql, rows := fc()
		q.logg.WarnErr(q.fields(ctx, sql, rows, elapsed), "db.query_failed", err)
	case elapsed > q.threshold && q.level >= gormlogger.Warn:
		sql, rows := fc()
		q.logg.Warn(q.fields(ctx, sql, rows, elapsed), "db.slow_query")
	}
}

func (q *queryLogger) fields(ctx context.Context, sql string, rows int64, elapsed time.Duration) context.Context {
	return q.logg.WithFields(ctx, map[string]any{
		"sql":         sql,
		"rows":        rows,
		"duration_ms": elapsed.Milliseconds(),
	})
}
