package db

import (
	"time"

	gormlogger "gorm.io/gorm/logger"
	constant "liyu1981.xyz/iot-camera-service/pkg/common"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormWriter hands gorm's log lines to the database zap logger.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...any) {
	constant.GetLoggerWith(constant.LoggerNameDatabase).Sugar().Warnf(format, args...)
}

// newGormLogger reports failed and slow queries only. A missed lookup is an
// ordinary answer for the repositories, so it is not logged.
func newGormLogger() gormlogger.Interface {
	return gormlogger.New(gormWriter{}, gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
