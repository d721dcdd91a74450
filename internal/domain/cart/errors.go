package cart

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var (
	// ErrInvalidQuantity 数量必须大于0
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")

	// ErrQuantityExceeded 单个条目数量超过上限
	ErrQuantityExceeded = apperrors.New(apperrors.ErrCodeInvalidParams, "借书车中同一图书的数量超过上限")

	// ErrInvalidUser 缺少读者身份
	ErrInvalidUser = apperrors.New(apperrors.ErrCodeInvalidParams, "读者ID不能为空")

	// ErrCartItemNotFound 借书车中没有该图书
	ErrCartItemNotFound = apperrors.New(apperrors.ErrCodeCartItemNotFound, "借书车中没有该图书")
)
