package db

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	"liyu1981.xyz/iot-camera-service/pkg/common"
)

func TestGormLogger(t *testing.T) {
	var buf bytes.Buffer
	common.SetTestCaptureLogger(&buf, zapcore.DebugLevel)
	defer common.SetTestLoggerNop()

	l := newGormLogger()
	ctx := context.Background()

	l.Trace(ctx, time.Now(), func() (string, int64) {
		return "SELECT * FROM locations WHERE camera_id = 'x'", 0
	}, gorm.ErrRecordNotFound)
	assert.Empty(t, common.ParseLogs(&buf))

	l.Trace(ctx, time.Now(), func() (string, int64) {
		return "SELECT * FROM nowhere", 0
	}, errors.New("no such table: nowhere"))
	logs := common.ParseLogs(&buf)
	require.Len(t, logs, 1)
	assert.Equal(t, "warn", logs[0]["level"])
	assert.Equal(t, common.LoggerNameDatabase, logs[0]["logger"])
	assert.Contains(t, logs[0]["msg"], "no such table")
}

func TestGormLogger_SlowQuery(t *testing.T) {
	var buf bytes.Buffer
	common.SetTestCaptureLogger(&buf, zapcore.DebugLevel)
	defer common.SetTestLoggerNop()

	newGormLogger().Trace(context.Background(), time.Now().Add(-2*slowQueryThreshold), func() (string, int64) {
		return "SELECT * FROM cameras", 3
	}, nil)

	logs := common.ParseLogs(&buf)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0]["msg"], "SLOW SQL")
}
