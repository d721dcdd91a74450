package bookcopy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	Repository
	counts map[uint]int
	calls  int
}

func (r *countingRepo) CountAvailableByBookIDs(_ context.Context, ids []uint) (map[uint]int, error) {
	r.calls++
	out := make(map[uint]int)
	for _, id := range ids {
		if n, ok := r.counts[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

type mapCache struct {
	data    map[uint]int
	readErr error
}

func (c *mapCache) GetMany(_ context.Context, ids []uint) (map[uint]int, error) {
	if c.readErr != nil {
		return nil, c.readErr
	}
	out := make(map[uint]int)
	for _, id := range ids {
		if n, ok := c.data[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func (c *mapCache) SetMany(_ context.Context, counts map[uint]int) error {
	for k, v := range counts {
		c.data[k] = v
	}
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, ids ...uint) error {
	for _, id := range ids {
		delete(c.data, id)
	}
	return nil
}

func TestAvailabilityCalculator(t *testing.T) {
	ctx := context.Background()

	t.Run("无缓存直接查库,无副本的书目为0", func(t *testing.T) {
		repo := &countingRepo{counts: map[uint]int{1: 3}}
		calc := NewAvailabilityCalculator(repo, nil)

		got, err := calc.AvailableBatch(ctx, []uint{1, 2})
		require.NoError(t, err)
		assert.Equal(t, map[uint]int{1: 3, 2: 0}, got)
	})

	t.Run("命中缓存不再查库", func(t *testing.T) {
		repo := &countingRepo{counts: map[uint]int{1: 3}}
		cache := &mapCache{data: map[uint]int{}}
		calc := NewAvailabilityCalculator(repo, cache)

		n, err := calc.Available(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, 3, cache.data[1], "首次查询写入缓存")

		n, err = calc.Available(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, 1, repo.calls)
	})

	t.Run("缓存故障降级查库", func(t *testing.T) {
		repo := &countingRepo{counts: map[uint]int{1: 2}}
		cache := &mapCache{data: map[uint]int{}, readErr: errors.New("redis down")}
		calc := NewAvailabilityCalculator(repo, cache)

		n, err := calc.Available(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}
