package cart

import (
	"context"

	"github.com/xiebiao/library/internal/domain/cart"
	"github.com/xiebiao/library/pkg/metrics"
)

// CartUseCase 借书车用例
// 每次变更后返回最新的借书车快照,前端无需再查一次
type CartUseCase struct {
	svc cart.Service
}

// NewCartUseCase 创建借书车用例
func NewCartUseCase(svc cart.Service) *CartUseCase {
	return &CartUseCase{svc: svc}
}

// AddItemResponse 加入借书车结果
type AddItemResponse struct {
	BookID    uint           `json:"book_id"`
	Quantity  int            `json:"quantity"`  // 累加后的数量
	Available int            `json:"available"` // 当前可借数量(仅提示)
	Cart      *cart.Snapshot `json:"cart"`
}

// AddItem 加入借书车,同一书目累加数量
func (uc *CartUseCase) AddItem(ctx context.Context, userID, bookID uint, quantity int) (*AddItemResponse, error) {
	line, available, err := uc.svc.AddItem(ctx, userID, bookID, quantity)
	if err != nil {
		return nil, err
	}
	metrics.CartMutationsTotal.WithLabelValues("add").Inc()

	snap, err := uc.svc.GetCartWithSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &AddItemResponse{
		BookID:    line.BookID,
		Quantity:  line.Quantity,
		Available: available,
		Cart:      snap,
	}, nil
}

// UpdateQuantity 修改数量,quantity<=0时删除该条目
func (uc *CartUseCase) UpdateQuantity(ctx context.Context, userID, bookID uint, quantity int) (*cart.Snapshot, error) {
	if _, err := uc.svc.UpdateQuantity(ctx, userID, bookID, quantity); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		metrics.CartMutationsTotal.WithLabelValues("remove").Inc()
	} else {
		metrics.CartMutationsTotal.WithLabelValues("update").Inc()
	}
	return uc.svc.GetCartWithSummary(ctx, userID)
}

// RemoveItem 删除条目
func (uc *CartUseCase) RemoveItem(ctx context.Context, userID, bookID uint) (*cart.Snapshot, error) {
	if err := uc.svc.RemoveItem(ctx, userID, bookID); err != nil {
		return nil, err
	}
	metrics.CartMutationsTotal.WithLabelValues("remove").Inc()
	return uc.svc.GetCartWithSummary(ctx, userID)
}

// Clear 清空借书车
func (uc *CartUseCase) Clear(ctx context.Context, userID uint) error {
	if err := uc.svc.ClearCart(ctx, userID); err != nil {
		return err
	}
	metrics.CartMutationsTotal.WithLabelValues("clear").Inc()
	return nil
}

// Get 查询借书车
func (uc *CartUseCase) Get(ctx context.Context, userID uint) (*cart.Snapshot, error) {
	return uc.svc.GetCartWithSummary(ctx, userID)
}
