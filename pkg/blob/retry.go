package blob

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"liyu1981.xyz/iot-camera-service/pkg/common"
)

type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	defaults := DefaultRetryPolicy()
	if p.MaxAttempts < 1 {
		p.MaxAttempts = defaults.MaxAttempts
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = defaults.InitialDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = defaults.MaxDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = defaults.Multiplier
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.MaxInterval = p.MaxDelay
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)), ctx)
}

// RetryingUploader retries transient upload failures with exponential backoff.
type RetryingUploader struct {
	next   Uploader
	policy RetryPolicy
}

func WithRetry(next Uploader, policy RetryPolicy) *RetryingUploader {
	return &RetryingUploader{next: next, policy: policy}
}

func (r *RetryingUploader) Upload(ctx context.Context, container, name string, data []byte) error {
	if err := validate(container, name, data); err != nil {
		return err
	}

	logger := common.GetLoggerWith(common.LoggerNameBlob,
		zap.String("container", container),
		zap.String("blob", name),
	)

	attempt := 0
	op := func() error {
		attempt++
		err := r.next.Upload(ctx, container, name, data)
		if errors.Is(err, ErrInvalidBlob) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("Upload failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, r.policy.backOff(ctx), notify); err != nil {
		logger.Error("Upload failed", zap.Int("attempts", attempt), zap.Error(err))
		return err
	}
	logger.Info("Uploaded", zap.Int("attempts", attempt), zap.Int("bytes", len(data)))
	return nil
}
