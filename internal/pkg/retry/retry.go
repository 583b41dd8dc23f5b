// Package retry 提供流水线各处共用的重试策略
package retry

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Policy 线性退避重试策略
// 第 n 次失败后等待 BaseDelay*(n+1)，Unbounded 为 true 时不限次数，
// 适合"任务额度被占满，等待释放"这类必然恢复的场景
type Policy struct {
	MaxAttempts int           // Unbounded 为 false 时的最大尝试次数
	BaseDelay   time.Duration // 退避基数
	Unbounded   bool          // 不限次数，直到成功或 ctx 取消
}

// Do 按策略执行 fn，retryable 判断错误是否值得重试
// 不可重试的错误立刻返回；ctx 取消时返回 ctx.Err()
func (p Policy) Do(ctx context.Context, name string, fn func() error, retryable func(error) bool) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if !p.Unbounded && attempt+1 >= p.MaxAttempts {
			return err
		}

		delay := p.Delay(attempt)
		log.Warn().
			Err(err).
			Str("op", name).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("操作失败，等待重试")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// Delay 第 attempt 次失败后的等待时长（attempt 从 0 计）
func (p Policy) Delay(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(attempt+1)
}
