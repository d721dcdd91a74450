package borrow

import (
	"fmt"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Shortfall 单个书目的可借数量缺口
type Shortfall struct {
	BookID    uint   `json:"book_id"`
	Title     string `json:"title"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Message   string `json:"message"`
}

// NewShortfall 构造缺口记录
func NewShortfall(bookID uint, title string, requested, available int) Shortfall {
	return Shortfall{
		BookID:    bookID,
		Title:     title,
		Requested: requested,
		Available: available,
		Message:   fmt.Sprintf("《%s》仅剩%d本可借,您申请了%d本", title, available, requested),
	}
}

// NewInsufficientStockError 库存不足错误,Details携带全部缺口
func NewInsufficientStockError(shortfalls []Shortfall) *apperrors.AppError {
	return apperrors.ErrInsufficientStock.WithDetails(shortfalls)
}

// ShortfallsOf 从错误中取出缺口列表
func ShortfallsOf(err error) []Shortfall {
	if !apperrors.IsInsufficientStock(err) {
		return nil
	}
	s, _ := apperrors.GetAppError(err).Details.([]Shortfall)
	return s
}
