package cart

import (
	"context"
)

// Repository 借书车仓储接口
type Repository interface {
	// AddQuantity 插入或累加(INSERT ... ON DUPLICATE KEY UPDATE quantity = quantity + ?)
	AddQuantity(ctx context.Context, userID, bookID uint, delta int) (*Line, error)

	// SetQuantity 覆盖数量,条目不存在返回ErrCartItemNotFound
	SetQuantity(ctx context.Context, userID, bookID uint, quantity int) (*Line, error)

	// Delete 删除单个条目(不存在也不报错)
	Delete(ctx context.Context, userID, bookID uint) error

	// DeleteByUser 清空读者的借书车,返回删除行数
	DeleteByUser(ctx context.Context, userID uint) (int64, error)

	// Find 查询单个条目,不存在返回ErrCartItemNotFound
	Find(ctx context.Context, userID, bookID uint) (*Line, error)

	// ListByUser 按加入时间倒序返回读者的全部条目
	ListByUser(ctx context.Context, userID uint) ([]*Line, error)
}
