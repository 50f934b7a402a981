package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/logger"
)

// BackoffFunc 第 attempt 次失败（从 0 开始）后的等待时长
type BackoffFunc func(attempt int) time.Duration

// ExponentialBackoff base·2^attempt，base 为 30s 时依次为 30s、60s、120s
func ExponentialBackoff(base time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return base * time.Duration(1<<attempt)
	}
}

// RetryPolicy 重试策略
type RetryPolicy struct {
	// MaxAttempts 含首次调用在内的最大调用次数
	MaxAttempts int
	Backoff     BackoffFunc
	// Sleep 为 nil 时使用可被 ctx 取消的真实等待
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy 3 次尝试，间隔 30s / 60s
func DefaultPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: ExponentialBackoff(30 * time.Second)}
}

// Retry 调用 fn 直到成功、遇到 Permanent 错误或用尽次数。
// 用尽后返回最后一次的错误。
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	backoff := p.Backoff
	if backoff == nil {
		backoff = ExponentialBackoff(30 * time.Second)
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		v, err := fn(ctx, i)
		if err == nil {
			return v, nil
		}
		if IsPermanent(err) {
			return zero, err
		}
		lastErr = err
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if i == maxAttempts-1 {
			break
		}

		delay := backoff(i)
		logger.Log.Warnf("调用失败 (%d/%d)，%s 后重试: %v", i+1, maxAttempts, delay, err)
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
	return zero, fmt.Errorf("giving up after %d attempts: %w", maxAttempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent 标记不可重试的错误，Retry 遇到后立即返回
func Permanent(err error) error {
	if err == nil || IsPermanent(err) {
		return err
	}
	return &permanentError{err: err}
}

// IsPermanent 错误链中是否带有 Permanent 标记
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// statusPattern 匹配 openai 兼容接口的 "status code: 400" 与 genai 的 "Error 400,"
var statusPattern = regexp.MustCompile(`(?:status code:|Error) (\d{3})\b`)

// classify 请求本身有误（4xx，429 除外）时标记为 Permanent
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		if permanentStatus(apiErr.StatusCode) {
			return Permanent(err)
		}
		return err
	}
	if m := statusPattern.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		if permanentStatus(code) {
			return Permanent(err)
		}
	}
	return err
}

func permanentStatus(code int) bool {
	switch code {
	case 400, 401, 403, 404, 413, 422:
		return true
	default:
		return false
	}
}
