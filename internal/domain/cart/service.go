package cart

import (
	"context"
	"errors"
	"log/slog"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/bookcopy"
)

// Service 借书车领域服务
// 设计说明:
// 借书车只记录意向,与副本台账解耦,浏览和加车不会和结算争抢副本行锁;
// 代价是结算时必须重新校验全部条目。
type Service interface {
	// AddItem 加入借书车,返回累加后的条目和当前可借数量(仅供提示,不因此拒绝)
	AddItem(ctx context.Context, userID, bookID uint, quantity int) (*Line, int, error)

	// UpdateQuantity 覆盖数量;quantity<=0等同于RemoveItem,此时返回nil条目
	UpdateQuantity(ctx context.Context, userID, bookID uint, quantity int) (*Line, error)

	// RemoveItem 删除条目
	RemoveItem(ctx context.Context, userID, bookID uint) error

	// ClearCart 清空借书车
	ClearCart(ctx context.Context, userID uint) error

	// GetCartWithSummary 条目+书目信息+可借数量快照+汇总
	GetCartWithSummary(ctx context.Context, userID uint) (*Snapshot, error)
}

// Limits 借书车数量限制
type Limits struct {
	MaxQuantityPerLine int // 单个条目的最大数量,0表示不限制
}

// exceeds 数量是否超过单行上限
func (l Limits) exceeds(quantity int) bool {
	return l.MaxQuantityPerLine > 0 && quantity > l.MaxQuantityPerLine
}

type service struct {
	repo         Repository
	books        book.Repository
	availability bookcopy.AvailabilityCalculator
	limits       Limits
}

// NewService 创建借书车服务
func NewService(repo Repository, books book.Repository, availability bookcopy.AvailabilityCalculator, limits Limits) Service {
	return &service{
		repo:         repo,
		books:        books,
		availability: availability,
		limits:       limits,
	}
}

func (s *service) AddItem(ctx context.Context, userID, bookID uint, quantity int) (*Line, int, error) {
	// 1. 参数校验
	if userID == 0 {
		return nil, 0, ErrInvalidUser
	}
	if bookID == 0 {
		return nil, 0, book.ErrInvalidBookID
	}
	if quantity < 1 {
		return nil, 0, ErrInvalidQuantity
	}
	if s.limits.exceeds(quantity) {
		return nil, 0, ErrQuantityExceeded
	}

	// 2. 确认书目存在
	if _, err := s.books.FindByID(ctx, bookID); err != nil {
		return nil, 0, err
	}

	// 累加后的数量也不能超过上限;并发加车的极端情况由结算时再次校验兜底
	if s.limits.MaxQuantityPerLine > 0 {
		existing, err := s.repo.Find(ctx, userID, bookID)
		switch {
		case err == nil:
			if s.limits.exceeds(existing.Quantity + quantity) {
				return nil, 0, ErrQuantityExceeded
			}
		case !errors.Is(err, ErrCartItemNotFound):
			return nil, 0, err
		}
	}

	// 3. 可借数量只用于提示
	available, err := s.availability.Available(ctx, bookID)
	if err != nil {
		return nil, 0, err
	}

	// 4. 单行upsert累加
	line, err := s.repo.AddQuantity(ctx, userID, bookID, quantity)
	if err != nil {
		return nil, 0, err
	}

	slog.InfoContext(ctx, "cart item added",
		"user_id", userID,
		"book_id", bookID,
		"quantity", line.Quantity,
		"available", available,
	)
	return line, available, nil
}

func (s *service) UpdateQuantity(ctx context.Context, userID, bookID uint, quantity int) (*Line, error) {
	if userID == 0 {
		return nil, ErrInvalidUser
	}
	if bookID == 0 {
		return nil, book.ErrInvalidBookID
	}
	if quantity <= 0 {
		return nil, s.RemoveItem(ctx, userID, bookID)
	}
	if s.limits.exceeds(quantity) {
		return nil, ErrQuantityExceeded
	}
	return s.repo.SetQuantity(ctx, userID, bookID, quantity)
}

func (s *service) RemoveItem(ctx context.Context, userID, bookID uint) error {
	if userID == 0 {
		return ErrInvalidUser
	}
	return s.repo.Delete(ctx, userID, bookID)
}

func (s *service) ClearCart(ctx context.Context, userID uint) error {
	if userID == 0 {
		return ErrInvalidUser
	}
	_, err := s.repo.DeleteByUser(ctx, userID)
	return err
}

func (s *service) GetCartWithSummary(ctx context.Context, userID uint) (*Snapshot, error) {
	if userID == 0 {
		return nil, ErrInvalidUser
	}

	lines, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return &Snapshot{Items: []SnapshotItem{}}, nil
	}

	ids := make([]uint, len(lines))
	for i, l := range lines {
		ids[i] = l.BookID
	}

	books, err := s.books.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	available, err := s.availability.AvailableBatch(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]SnapshotItem, len(lines))
	for i, l := range lines {
		b := books[l.BookID]
		item := SnapshotItem{
			ID:               l.ID,
			BookID:           l.BookID,
			Quantity:         l.Quantity,
			Title:            b.DisplayTitle(),
			AvailableCount:   available[l.BookID],
			ExceedsAvailable: l.Quantity > available[l.BookID],
			CreatedAt:        l.CreatedAt,
			UpdatedAt:        l.UpdatedAt,
		}
		if b != nil {
			item.Author = b.Author
			item.CoverURL = b.CoverURL
		}
		items[i] = item
	}

	return &Snapshot{
		Items:   items,
		Summary: Summarize(items),
	}, nil
}
