package bookcopy

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var (
	// ErrCopyNotFound 副本不存在
	ErrCopyNotFound = apperrors.New(apperrors.ErrCodeCopyNotFound, "馆藏副本不存在")

	// ErrInvalidStatusTransition 非法的副本状态流转
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidCopyStatus, "副本状态不允许此操作")

	// ErrCopyStatusChanged 条件更新命中行数不足:副本已被其他事务改动
	ErrCopyStatusChanged = apperrors.ErrConflict
)
