package borrow

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var (
	// ErrTicketNotFound 借阅单不存在
	ErrTicketNotFound = apperrors.New(apperrors.ErrCodeTicketNotFound, "借阅单不存在")

	// ErrInvalidStatusTransition 借阅单状态不允许此操作
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidTicketStatus, "借阅单状态不允许此操作")

	// ErrEmptyItems 结算列表为空
	ErrEmptyItems = apperrors.New(apperrors.ErrCodeInvalidParams, "借阅列表不能为空")

	// ErrTooManyItems 单次结算书目过多
	ErrTooManyItems = apperrors.New(apperrors.ErrCodeInvalidParams, "单次借阅的图书种类过多")

	// ErrInvalidQuantity 数量必须大于0
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "借阅数量必须大于0")

	// ErrQuantityExceeded 同一书目合并后的数量超过单行上限
	ErrQuantityExceeded = apperrors.New(apperrors.ErrCodeInvalidParams, "同一图书的借阅数量超过上限")

	// ErrInvalidUser 缺少读者身份
	ErrInvalidUser = apperrors.New(apperrors.ErrCodeInvalidParams, "读者ID不能为空")

	// ErrInvalidTicketNumber 借阅单号格式错误
	ErrInvalidTicketNumber = apperrors.New(apperrors.ErrCodeInvalidParams, "借阅单号格式错误")

	// ErrCopyRaced 锁定副本时数量不足,说明被并发事务抢先
	ErrCopyRaced = apperrors.ErrConflict
)
