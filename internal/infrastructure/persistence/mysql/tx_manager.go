package mysql

import (
	"context"

	"gorm.io/gorm"
)

// TxManager 事务管理器
// fn内的仓储调用通过ctx共享同一个事务;fn返回error时ROLLBACK,返回nil时COMMIT
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    copies, err := copyRepo.LockAvailable(ctx, bookID, n)
//	    ...
//	    return ticketRepo.AddLines(ctx, ticketID, lines)
//	})
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// 提交阶段的死锁等错误同样翻译为Conflict
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
	return translateError(err, "数据库事务失败")
}
