package borrow

import (
	"context"
	"log/slog"
	"time"

	"github.com/xiebiao/library/internal/domain/bookcopy"
	"github.com/xiebiao/library/internal/domain/borrow"
)

const tracerName = "library/borrow"

// TxManager 事务管理器
// fn内的所有仓储调用都必须使用传入的txCtx,仓储从ctx中取出事务句柄;
// fn返回错误时整个事务回滚,返回给调用方之前回滚已经完成。
type TxManager interface {
	Transaction(ctx context.Context, fn func(txCtx context.Context) error) error
}

// Policy 借阅规则
type Policy struct {
	LoanPeriod         time.Duration // 借期,默认14天
	PickupWindow       time.Duration // 预约保留期,超时未取自动取消
	MaxItems           int           // 单次结算最多书目数,0表示不限制
	MaxQuantityPerLine int           // 同一书目合并后的最大数量,0表示不限制
}

// DefaultPolicy 默认借阅规则
func DefaultPolicy() Policy {
	return Policy{
		LoanPeriod:         borrow.DefaultLoanPeriod,
		PickupWindow:       3 * 24 * time.Hour,
		MaxItems:           20,
		MaxQuantityPerLine: 10,
	}
}

// afterCommit 事务提交后的副作用:使可借数量缓存失效、发布事件
// 两者失败都只记日志,已提交的借阅不受影响
type afterCommit struct {
	publisher borrow.EventPublisher
	cache     bookcopy.SnapshotCache
	now       func() time.Time
}

func (a *afterCommit) run(ctx context.Context, eventType string, t *borrow.Ticket) {
	if a.cache != nil {
		if err := a.cache.Invalidate(ctx, t.BookIDs()...); err != nil {
			slog.WarnContext(ctx, "availability cache invalidate failed",
				"ticket_id", t.ID, "error", err)
		}
	}

	if a.publisher == nil {
		return
	}
	evt := borrow.NewEvent(eventType, t, a.now())
	if err := a.publisher.Publish(ctx, evt); err != nil {
		slog.WarnContext(ctx, "publish borrow event failed",
			"type", eventType, "ticket_id", t.ID, "error", err)
	}
}
