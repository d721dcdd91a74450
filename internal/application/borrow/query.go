package borrow

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/borrow"
)

// TicketDTO 借阅单视图
type TicketDTO struct {
	ID          uint            `json:"id"`
	TicketNo    string          `json:"ticket_no"`
	UserID      uint            `json:"user_id"`
	Status      string          `json:"status"`
	StatusLabel string          `json:"status_label"`
	BorrowDate  time.Time       `json:"borrow_date"`
	DueDate     time.Time       `json:"due_date"`
	ReturnedAt  *time.Time      `json:"returned_at,omitempty"`
	Overdue     bool            `json:"overdue"`
	Lines       []TicketLineDTO `json:"lines"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TicketLineDTO 借阅明细视图
type TicketLineDTO struct {
	CopyID uint   `json:"copy_id"`
	BookID uint   `json:"book_id"`
	Title  string `json:"book_title,omitempty"`
}

func toTicketDTO(t *borrow.Ticket) *TicketDTO {
	lines := make([]TicketLineDTO, len(t.Lines))
	for i, l := range t.Lines {
		lines[i] = TicketLineDTO{CopyID: l.CopyID, BookID: l.BookID}
	}
	return &TicketDTO{
		ID:          t.ID,
		TicketNo:    t.Number(),
		UserID:      t.UserID,
		Status:      string(t.Status),
		StatusLabel: t.Status.Label(),
		BorrowDate:  t.BorrowDate,
		DueDate:     t.DueDate,
		ReturnedAt:  t.ReturnedAt,
		Overdue:     t.IsOverdue(time.Now()),
		Lines:       lines,
		CreatedAt:   t.CreatedAt,
	}
}

// QueryUseCase 借阅单查询
type QueryUseCase struct {
	tickets borrow.Repository
	books   book.Repository
}

// NewQueryUseCase 创建查询用例
func NewQueryUseCase(tickets borrow.Repository, books book.Repository) *QueryUseCase {
	return &QueryUseCase{tickets: tickets, books: books}
}

// Get 查询单个借阅单;非本人的借阅单返回不存在
func (uc *QueryUseCase) Get(ctx context.Context, userID, ticketID uint) (*TicketDTO, error) {
	t, err := uc.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !t.IsOwnedBy(userID) {
		return nil, borrow.ErrTicketNotFound
	}

	dtos := []*TicketDTO{toTicketDTO(t)}
	uc.fillTitles(ctx, dtos)
	return dtos[0], nil
}

// GetByNumber 按借阅单号查询(馆员在服务台使用,不校验归属)
func (uc *QueryUseCase) GetByNumber(ctx context.Context, ticketNo string) (*TicketDTO, error) {
	id, err := borrow.ParseTicketNumber(ticketNo)
	if err != nil {
		return nil, err
	}
	t, err := uc.tickets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dtos := []*TicketDTO{toTicketDTO(t)}
	uc.fillTitles(ctx, dtos)
	return dtos[0], nil
}

// List 分页查询读者的借阅单(按创建时间倒序)
func (uc *QueryUseCase) List(ctx context.Context, userID uint, page, pageSize int) ([]*TicketDTO, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	tickets, total, err := uc.tickets.ListByUserID(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]*TicketDTO, len(tickets))
	for i, t := range tickets {
		dtos[i] = toTicketDTO(t)
	}
	uc.fillTitles(ctx, dtos)
	return dtos, total, nil
}

// fillTitles 补充书名;查询失败时不填,不影响主流程
func (uc *QueryUseCase) fillTitles(ctx context.Context, dtos []*TicketDTO) {
	var ids []uint
	for _, d := range dtos {
		for _, l := range d.Lines {
			ids = append(ids, l.BookID)
		}
	}
	if len(ids) == 0 || uc.books == nil {
		return
	}

	books, err := uc.books.FindByIDs(ctx, ids)
	if err != nil {
		return
	}
	for _, d := range dtos {
		for i := range d.Lines {
			if b, ok := books[d.Lines[i].BookID]; ok {
				d.Lines[i].Title = b.Title
			}
		}
	}
}
