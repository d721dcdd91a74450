package borrow

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
)

// ExpireStaleUseCase 取消超过保留期仍未取书的借阅单,释放预约的副本
type ExpireStaleUseCase struct {
	tickets *TicketUseCase
	batch   int
	now     func() time.Time
}

// NewExpireStaleUseCase 创建超时清理用例
func NewExpireStaleUseCase(tickets *TicketUseCase, batch int) *ExpireStaleUseCase {
	if batch <= 0 {
		batch = 100
	}
	return &ExpireStaleUseCase{tickets: tickets, batch: batch, now: time.Now}
}

// Execute 执行一轮清理,返回取消的借阅单数
// 单个借阅单失败(如读者恰好到馆取书导致状态已变)只记日志,继续处理其余的
func (uc *ExpireStaleUseCase) Execute(ctx context.Context) (int, error) {
	cutoff := uc.now().Add(-uc.tickets.policy.PickupWindow)
	ids, err := uc.tickets.tickets.ListPendingBefore(ctx, cutoff, uc.batch)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}
		if _, err := uc.tickets.expire(ctx, id); err != nil {
			level := slog.LevelError
			if apperrors.GetAppError(err).Code < apperrors.ErrCodeInternal {
				level = slog.LevelWarn // 业务错误:状态已变,下轮不会再选中
			}
			slog.Log(ctx, level, "expire ticket failed", "ticket_id", id, "error", err)
			continue
		}
		expired++
	}

	if expired > 0 {
		metrics.TicketsExpiredTotal.Add(float64(expired))
		slog.InfoContext(ctx, "stale tickets expired", "count", expired, "cutoff", cutoff)
	}
	return expired, nil
}

// Sweeper 定时执行超时清理
type Sweeper struct {
	uc       *ExpireStaleUseCase
	interval time.Duration
}

// NewSweeper 创建定时清理任务
func NewSweeper(uc *ExpireStaleUseCase, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Sweeper{uc: uc, interval: interval}
}

// Run 阻塞运行直到ctx取消
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("pickup sweeper started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("pickup sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.uc.Execute(ctx); err != nil && ctx.Err() == nil {
				slog.ErrorContext(ctx, "pickup sweep failed", "error", err)
			}
		}
	}
}
