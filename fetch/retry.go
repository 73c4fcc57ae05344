package fetch

import (
	"context"
	"net/url"
	"time"

	"github.com/dszqbsm/scrapetree/query"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type retryFetch struct {
	next     Fetcher
	count    int
	interval time.Duration
	logger   *zap.Logger
}

/*
输入一个采集器、重试次数、重试间隔和日志器，输出一个带重试的采集器

该方法用于在传输失败或服务端返回5xx时按固定间隔重试，4xx与上下文取消不会重试，重试次数小于等于0时直接返回原采集器
*/
func WithRetry(next Fetcher, count int, interval time.Duration, logger *zap.Logger) Fetcher {
	if count <= 0 {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &retryFetch{next: next, count: count, interval: interval, logger: logger}
}

func (r *retryFetch) Fetch(ctx context.Context, u *url.URL) (*query.Document, error) {
	var lastErr error
	for attempt := 0; attempt <= r.count; attempt++ {
		if attempt > 0 {
			r.logger.Warn("retry fetch",
				zap.String("url", u.String()),
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, &Error{URL: u.String(), Err: ctx.Err()}
			case <-time.After(r.interval):
			}
		}

		doc, err := r.next.Fetch(ctx, u)
		if err == nil {
			return doc, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

func retryable(err error) bool {
	var fe *Error
	if errors.As(err, &fe) && fe.StatusCode >= 400 && fe.StatusCode < 500 {
		return false
	}
	return true
}
