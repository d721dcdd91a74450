package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/bookcopy"
	"github.com/xiebiao/library/pkg/response"
)

// ListBooksUseCase 书目列表(含可借数量)
// 可借数量来自快照缓存,只用于展示,可能与结算时的真实数量不同
type ListBooksUseCase struct {
	books        book.Repository
	availability bookcopy.AvailabilityCalculator
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(books book.Repository, availability bookcopy.AvailabilityCalculator) *ListBooksUseCase {
	return &ListBooksUseCase{books: books, availability: availability}
}

// ListBooksRequest 列表查询请求
type ListBooksRequest struct {
	Page     int
	PageSize int
	Keyword  string // 搜索标题、作者、出版社
	SortBy   string // title_asc, created_at_desc
}

// BookListItem 列表项(不含简介)
type BookListItem struct {
	ID             uint   `json:"id"`
	ISBN           string `json:"isbn"`
	Title          string `json:"title"`
	Author         string `json:"author"`
	Publisher      string `json:"publisher"`
	CoverURL       string `json:"cover_url"`
	AvailableCount int    `json:"available_count"`
	CreatedAt      string `json:"created_at"`
}

// Execute 分页查询
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*response.PageData, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	books, total, err := uc.books.List(ctx, book.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		SortBy:   req.SortBy,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	counts, err := uc.availability.AvailableBatch(ctx, ids)
	if err != nil {
		return nil, err
	}

	list := make([]BookListItem, len(books))
	for i, b := range books {
		list[i] = BookListItem{
			ID:             b.ID,
			ISBN:           b.ISBN,
			Title:          b.Title,
			Author:         b.Author,
			Publisher:      b.Publisher,
			CoverURL:       b.CoverURL,
			AvailableCount: counts[b.ID],
			CreatedAt:      b.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}

	return response.NewPageData(list, total, req.Page, req.PageSize), nil
}
