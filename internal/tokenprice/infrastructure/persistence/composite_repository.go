// Package persistence 组合 MySQL 持久化与 Redis 读缓存
package persistence

import (
	"context"
	"time"

	"github.com/wyfcoding/tokenfolio/internal/tokenprice/domain"
	persistence_redis "github.com/wyfcoding/tokenfolio/internal/tokenprice/infrastructure/persistence/redis"
	"github.com/wyfcoding/tokenfolio/pkg/logger"
)

type compositeTokenPriceRepository struct {
	mysql domain.TokenPriceRepository
	redis *persistence_redis.TokenPriceRedisRepository
}

// NewCompositeTokenPriceRepository 创建组合仓储：MySQL 为准，Redis 做单行读加速。
// 缓存层任何失败都只记日志，不影响主路径。
func NewCompositeTokenPriceRepository(mysql domain.TokenPriceRepository, redis *persistence_redis.TokenPriceRedisRepository) domain.TokenPriceRepository {
	return &compositeTokenPriceRepository{
		mysql: mysql,
		redis: redis,
	}
}

func (r *compositeTokenPriceRepository) Upsert(ctx context.Context, price *domain.TokenPrice) error {
	// 双写：先 MySQL（持久化），后 Redis（缓存）
	if err := r.mysql.Upsert(ctx, price); err != nil {
		return err
	}
	if err := r.redis.Save(ctx, price); err != nil {
		logger.Warn(ctx, "failed to refresh price cache", "token", price.Token, "error", err)
	}
	return nil
}

func (r *compositeTokenPriceRepository) SeedPlaceholder(ctx context.Context, token string) (bool, error) {
	return r.mysql.SeedPlaceholder(ctx, token)
}

func (r *compositeTokenPriceRepository) GetByToken(ctx context.Context, token string) (*domain.TokenPrice, error) {
	price, err := r.redis.GetByToken(ctx, token)
	if err == nil && price != nil {
		return price, nil
	}
	if err != nil {
		logger.Warn(ctx, "price cache read failed, falling back to mysql", "token", token, "error", err)
	}
	return r.mysql.GetByToken(ctx, token)
}

func (r *compositeTokenPriceRepository) GetByTokens(ctx context.Context, tokens []string) ([]*domain.TokenPrice, error) {
	return r.mysql.GetByTokens(ctx, tokens)
}

func (r *compositeTokenPriceRepository) GetAll(ctx context.Context) ([]*domain.TokenPrice, error) {
	return r.mysql.GetAll(ctx)
}

func (r *compositeTokenPriceRepository) LastUpdated(ctx context.Context) (*time.Time, error) {
	return r.mysql.LastUpdated(ctx)
}
