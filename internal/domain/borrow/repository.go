package borrow

import (
	"context"
	"time"
)

// Repository 借阅台账仓储接口
type Repository interface {
	// Create 写入借阅单(不含明细),回填ID
	Create(ctx context.Context, t *Ticket) error

	// AddLines 写入借阅明细,回填ID
	AddLines(ctx context.Context, ticketID uint, lines []Line) error

	// FindByID 查询借阅单(含明细)
	FindByID(ctx context.Context, id uint) (*Ticket, error)

	// LockByID 悲观锁查询借阅单(含明细),用于状态流转
	LockByID(ctx context.Context, id uint) (*Ticket, error)

	// ListByUserID 分页查询读者的借阅单(含明细),按创建时间倒序
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Ticket, int64, error)

	// UpdateStatus 条件更新:仅当当前状态为from时写入t的状态与日期字段
	UpdateStatus(ctx context.Context, t *Ticket, from TicketStatus) error

	// ListPendingBefore 创建时间早于cutoff的PENDING借阅单ID(超时未取)
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]uint, error)
}
