package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// AvailabilityCache 可借数量快照缓存
// Key: availability:{book_id} → 可借副本数
//
// 只服务于列表和借书车展示;借阅状态变化后由结算/流转用例主动失效,
// 其余情况(馆员在编目系统里改副本)靠TTL兜底。
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache 创建缓存
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AvailabilityCache{client: client, ttl: ttl}
}

func availabilityKey(bookID uint) string {
	return fmt.Sprintf("availability:%d", bookID)
}

// GetMany MGET批量读取,未命中或值无法解析的ID不出现在结果中
func (c *AvailabilityCache) GetMany(ctx context.Context, bookIDs []uint) (map[uint]int, error) {
	result := make(map[uint]int, len(bookIDs))
	if len(bookIDs) == 0 {
		return result, nil
	}

	keys := make([]string, len(bookIDs))
	for i, id := range bookIDs {
		keys[i] = availabilityKey(id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeRedisError, "读取可借数量缓存失败").WithErr(err)
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue // nil:未命中
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			continue
		}
		result[bookIDs[i]] = n
	}
	return result, nil
}

// SetMany pipeline批量写入,统一TTL
func (c *AvailabilityCache) SetMany(ctx context.Context, counts map[uint]int) error {
	if len(counts) == 0 {
		return nil
	}
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for id, n := range counts {
			pipe.Set(ctx, availabilityKey(id), n, c.ttl)
		}
		return nil
	})
	if err != nil {
		return apperrors.New(apperrors.ErrCodeRedisError, "写入可借数量缓存失败").WithErr(err)
	}
	return nil
}

// Invalidate 删除缓存
func (c *AvailabilityCache) Invalidate(ctx context.Context, bookIDs ...uint) error {
	if len(bookIDs) == 0 {
		return nil
	}
	keys := make([]string, len(bookIDs))
	for i, id := range bookIDs {
		keys[i] = availabilityKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return apperrors.New(apperrors.ErrCodeRedisError, "删除可借数量缓存失败").WithErr(err)
	}
	return nil
}
