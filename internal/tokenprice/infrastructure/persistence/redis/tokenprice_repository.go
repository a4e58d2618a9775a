package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/tokenfolio/internal/tokenprice/domain"
)

// TokenPriceRedisRepository 行情行的 Redis 读模型缓存
type TokenPriceRedisRepository struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewTokenPriceRedisRepository 创建基于 Redis 的行情读模型仓储
func NewTokenPriceRedisRepository(client redis.UniversalClient) *TokenPriceRedisRepository {
	return &TokenPriceRedisRepository{
		client: client,
		prefix: "tokenfolio:price:",
		ttl:    24 * time.Hour,
	}
}

// Save 写入一行行情缓存
func (r *TokenPriceRedisRepository) Save(ctx context.Context, price *domain.TokenPrice) error {
	if price == nil {
		return nil
	}
	key := r.prefix + price.Token
	data, err := json.Marshal(price)
	if err != nil {
		return fmt.Errorf("failed to marshal token price: %w", err)
	}
	return r.client.Set(ctx, key, data, r.ttl).Err()
}

// GetByToken 读取一行行情缓存，未命中返回 nil
func (r *TokenPriceRedisRepository) GetByToken(ctx context.Context, token string) (*domain.TokenPrice, error) {
	key := r.prefix + strings.ToUpper(token)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token price from redis: %w", err)
	}

	var price domain.TokenPrice
	if err := json.Unmarshal(data, &price); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token price: %w", err)
	}
	return &price, nil
}
