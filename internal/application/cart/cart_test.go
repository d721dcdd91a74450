package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/cart"
)

// stubService 记录调用的借书车服务
type stubService struct {
	lines map[uint]int
	calls []string
}

func newStubService() *stubService {
	return &stubService{lines: map[uint]int{}}
}

func (s *stubService) AddItem(_ context.Context, userID, bookID uint, quantity int) (*cart.Line, int, error) {
	s.calls = append(s.calls, "add")
	s.lines[bookID] += quantity
	return &cart.Line{UserID: userID, BookID: bookID, Quantity: s.lines[bookID]}, 3, nil
}

func (s *stubService) UpdateQuantity(_ context.Context, userID, bookID uint, quantity int) (*cart.Line, error) {
	s.calls = append(s.calls, "update")
	if quantity <= 0 {
		delete(s.lines, bookID)
		return nil, nil
	}
	s.lines[bookID] = quantity
	return &cart.Line{UserID: userID, BookID: bookID, Quantity: quantity}, nil
}

func (s *stubService) RemoveItem(_ context.Context, _, bookID uint) error {
	s.calls = append(s.calls, "remove")
	if _, ok := s.lines[bookID]; !ok {
		return cart.ErrCartItemNotFound
	}
	delete(s.lines, bookID)
	return nil
}

func (s *stubService) ClearCart(context.Context, uint) error {
	s.calls = append(s.calls, "clear")
	s.lines = map[uint]int{}
	return nil
}

func (s *stubService) GetCartWithSummary(context.Context, uint) (*cart.Snapshot, error) {
	s.calls = append(s.calls, "get")
	items := []cart.SnapshotItem{}
	for id, q := range s.lines {
		items = append(items, cart.SnapshotItem{BookID: id, Quantity: q})
	}
	return &cart.Snapshot{Items: items, Summary: cart.Summarize(items)}, nil
}

func TestCartUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("加车后返回累加数量和最新快照", func(t *testing.T) {
		svc := newStubService()
		uc := NewCartUseCase(svc)

		_, err := uc.AddItem(ctx, 7, 1, 2)
		require.NoError(t, err)
		resp, err := uc.AddItem(ctx, 7, 1, 3)
		require.NoError(t, err)

		assert.Equal(t, 5, resp.Quantity)
		assert.Equal(t, 3, resp.Available)
		assert.Equal(t, 5, resp.Cart.Summary.TotalBooks)
		assert.Equal(t, 1, resp.Cart.Summary.TotalItems)
	})

	t.Run("数量改为0删除条目", func(t *testing.T) {
		svc := newStubService()
		uc := NewCartUseCase(svc)
		_, err := uc.AddItem(ctx, 7, 1, 2)
		require.NoError(t, err)

		snap, err := uc.UpdateQuantity(ctx, 7, 1, 0)
		require.NoError(t, err)
		assert.Empty(t, snap.Items)
	})

	t.Run("删除失败时透传错误且不查询快照", func(t *testing.T) {
		svc := newStubService()
		uc := NewCartUseCase(svc)

		_, err := uc.RemoveItem(ctx, 7, 9)
		assert.ErrorIs(t, err, cart.ErrCartItemNotFound)
		assert.Equal(t, []string{"remove"}, svc.calls)
	})

	t.Run("清空", func(t *testing.T) {
		svc := newStubService()
		uc := NewCartUseCase(svc)
		_, _ = uc.AddItem(ctx, 7, 1, 2)

		require.NoError(t, uc.Clear(ctx, 7))
		snap, err := uc.Get(ctx, 7)
		require.NoError(t, err)
		assert.Empty(t, snap.Items)
	})
}
