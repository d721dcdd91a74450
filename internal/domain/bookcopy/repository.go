package bookcopy

import (
	"context"
)

// Repository 副本仓储接口
//
// 写操作只应出现在借阅事务内部(ctx携带事务),
// 计数查询可以在事务外调用,结果仅供展示。
type Repository interface {
	// CountAvailable 统计某书目AVAILABLE副本数
	CountAvailable(ctx context.Context, bookID uint) (int, error)

	// CountAvailableByBookIDs 批量统计,没有副本的书目返回0
	CountAvailableByBookIDs(ctx context.Context, bookIDs []uint) (map[uint]int, error)

	// CountByStatus 按状态统计某书目的副本数
	CountByStatus(ctx context.Context, bookID uint) (map[Status]int, error)

	// LockAvailable 挑选并锁定最多limit个AVAILABLE副本
	// SELECT ... WHERE book_id=? AND status='AVAILABLE' ORDER BY created_at, id LIMIT ? FOR UPDATE
	// 返回数量可能少于limit(被并发事务抢走),由调用方判定
	LockAvailable(ctx context.Context, bookID uint, limit int) ([]*Copy, error)

	// FindByIDs 批量查询副本
	FindByIDs(ctx context.Context, ids []uint) ([]*Copy, error)

	// TransitionStatus 条件更新:仅把状态为from的副本改为to,返回实际更新行数
	TransitionStatus(ctx context.Context, ids []uint, from, to Status) (int64, error)
}
