package mysql

import (
	"context"
	"errors"
	"fmt"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		conflict bool
	}{
		{"死锁", &gomysql.MySQLError{Number: 1213, Message: "Deadlock found"}, true},
		{"锁等待超时", &gomysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}, true},
		{"唯一索引冲突", &gomysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true},
		{"gorm翻译后的唯一索引冲突", gorm.ErrDuplicatedKey, true},
		{"包装后的死锁", fmt.Errorf("commit: %w", &gomysql.MySQLError{Number: 1213}), true},
		{"语法错误", &gomysql.MySQLError{Number: 1064, Message: "syntax"}, false},
		{"连接断开", errors.New("invalid connection"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err, "操作失败")
			assert.Equal(t, tt.conflict, apperrors.IsConflict(got))
			assert.ErrorIs(t, got, tt.err, "原始错误应保留在错误链中")
			if !tt.conflict {
				assert.Equal(t, apperrors.ErrCodeDatabaseError, apperrors.GetAppError(got).Code)
			}
		})
	}

	t.Run("AppError原样返回", func(t *testing.T) {
		assert.Same(t, apperrors.ErrBookNotFound, translateError(apperrors.ErrBookNotFound, "x"))
	})

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, translateError(nil, "x"))
	})
}

func TestGetDBPrefersTx(t *testing.T) {
	base := &gorm.DB{Config: &gorm.Config{}}
	tx := &gorm.DB{Config: &gorm.Config{}}

	assert.Same(t, tx, getDB(withTx(context.Background(), tx), base))
}
