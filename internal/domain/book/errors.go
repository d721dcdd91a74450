package book

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.ErrBookNotFound

	// ErrInvalidBookID 图书ID非法
	ErrInvalidBookID = apperrors.New(apperrors.ErrCodeInvalidParams, "图书ID不能为空")
)
