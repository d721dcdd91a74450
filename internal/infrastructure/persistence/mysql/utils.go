package mysql

import (
	"context"
	"errors"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// MySQL错误码
const (
	errDeadlock        = 1213 // Deadlock found when trying to get lock
	errLockWaitTimeout = 1205 // Lock wait timeout exceeded
	errDuplicateEntry  = 1062 // Duplicate entry 'xxx' for key 'yyy'
	errNoReferencedRow = 1452 // Cannot add or update a child row
)

type txKey struct{}

// withTx 把事务DB放入context
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// getDB 从context获取事务DB,没有则使用默认DB
// 仓储方法必须通过它取DB,才能参与调用方开启的事务
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// isRaceError 死锁、锁等待超时、唯一索引冲突都说明有并发写入抢先,调用方可以整体重试
func isRaceError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case errDeadlock, errLockWaitTimeout, errDuplicateEntry, errNoReferencedRow:
			return true
		}
	}
	return false
}

// translateError 数据库错误 → 业务错误
// 已经是AppError的原样返回
func translateError(err error, message string) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}
	if isRaceError(err) {
		return apperrors.ErrConflict.WithErr(err)
	}
	return apperrors.New(apperrors.ErrCodeDatabaseError, message).WithErr(err)
}
