package bookcopy

import (
	"context"
	"log/slog"
)

// AvailabilityCalculator 可借数量计算器
//
// 只读,不加锁。结果可能是过期快照,只能用于展示;
// 结算时的真实可借数量必须在事务内通过Repository重新统计。
type AvailabilityCalculator interface {
	Available(ctx context.Context, bookID uint) (int, error)
	AvailableBatch(ctx context.Context, bookIDs []uint) (map[uint]int, error)
}

// SnapshotCache 可借数量快照缓存(Redis实现见persistence/redis)
type SnapshotCache interface {
	// GetMany 返回命中的部分,未命中的ID不出现在结果中
	GetMany(ctx context.Context, bookIDs []uint) (map[uint]int, error)
	SetMany(ctx context.Context, counts map[uint]int) error
	Invalidate(ctx context.Context, bookIDs ...uint) error
}

type availabilityCalculator struct {
	repo  Repository
	cache SnapshotCache // 可以为nil
}

// NewAvailabilityCalculator 创建计算器,cache为nil时直接查库
func NewAvailabilityCalculator(repo Repository, cache SnapshotCache) AvailabilityCalculator {
	return &availabilityCalculator{repo: repo, cache: cache}
}

func (a *availabilityCalculator) Available(ctx context.Context, bookID uint) (int, error) {
	counts, err := a.AvailableBatch(ctx, []uint{bookID})
	if err != nil {
		return 0, err
	}
	return counts[bookID], nil
}

func (a *availabilityCalculator) AvailableBatch(ctx context.Context, bookIDs []uint) (map[uint]int, error) {
	result := make(map[uint]int, len(bookIDs))
	if len(bookIDs) == 0 {
		return result, nil
	}

	missing := bookIDs
	if a.cache != nil {
		cached, err := a.cache.GetMany(ctx, bookIDs)
		if err != nil {
			// 缓存故障降级为查库
			slog.WarnContext(ctx, "availability cache read failed", "error", err)
		} else {
			missing = make([]uint, 0, len(bookIDs))
			for _, id := range bookIDs {
				if n, ok := cached[id]; ok {
					result[id] = n
				} else {
					missing = append(missing, id)
				}
			}
		}
	}

	if len(missing) == 0 {
		return result, nil
	}

	counts, err := a.repo.CountAvailableByBookIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	fresh := make(map[uint]int, len(missing))
	for _, id := range missing {
		result[id] = counts[id]
		fresh[id] = counts[id]
	}

	if a.cache != nil {
		if err := a.cache.SetMany(ctx, fresh); err != nil {
			slog.WarnContext(ctx, "availability cache write failed", "error", err)
		}
	}
	return result, nil
}
