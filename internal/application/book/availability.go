package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/bookcopy"
)

// GetAvailabilityUseCase 单个书目的馆藏状态分布
// 直接查库,不走快照缓存
type GetAvailabilityUseCase struct {
	books  book.Repository
	copies bookcopy.Repository
}

// NewGetAvailabilityUseCase 创建馆藏状态查询用例
func NewGetAvailabilityUseCase(books book.Repository, copies bookcopy.Repository) *GetAvailabilityUseCase {
	return &GetAvailabilityUseCase{books: books, copies: copies}
}

// AvailabilityResponse 馆藏状态
type AvailabilityResponse struct {
	BookID    uint           `json:"book_id"`
	Title     string         `json:"title"`
	Available int            `json:"available"`
	Total     int            `json:"total"`
	ByStatus  map[string]int `json:"by_status"`
}

// Execute 查询
func (uc *GetAvailabilityUseCase) Execute(ctx context.Context, bookID uint) (*AvailabilityResponse, error) {
	if bookID == 0 {
		return nil, book.ErrInvalidBookID
	}
	b, err := uc.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	counts, err := uc.copies.CountByStatus(ctx, bookID)
	if err != nil {
		return nil, err
	}

	resp := &AvailabilityResponse{
		BookID:   b.ID,
		Title:    b.Title,
		ByStatus: make(map[string]int, len(counts)),
	}
	for st, n := range counts {
		resp.ByStatus[string(st)] = n
		resp.Total += n
	}
	resp.Available = counts[bookcopy.StatusAvailable]
	return resp, nil
}
