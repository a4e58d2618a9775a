package mysql

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wyfcoding/tokenfolio/internal/tokenprice/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type tokenPriceRepository struct {
	db *gorm.DB
}

// NewTokenPriceRepository 创建行情表仓储实例
func NewTokenPriceRepository(db *gorm.DB) domain.TokenPriceRepository {
	return &tokenPriceRepository{db: db}
}

// Upsert 按 token 原子插入或覆盖，last_updated 置为当前时间。
// 单条 upsert 即单条原子写，读方不会看到半行数据。
func (r *tokenPriceRepository) Upsert(ctx context.Context, price *domain.TokenPrice) error {
	now := time.Now()
	model := toModel(price)
	model.LastUpdated = &now

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"price_usdt",
			"price_change_24h",
			"price_change_24h_usdt",
			"volume_24h",
			"market_cap",
			"last_updated",
		}),
	}).Create(model).Error
}

// SeedPlaceholder 不存在时插入占位行；已有行（含真实行情）保持原样
func (r *tokenPriceRepository) SeedPlaceholder(ctx context.Context, token string) (bool, error) {
	model := toModel(domain.NewPlaceholder(strings.ToUpper(token)))

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoNothing: true,
	}).Create(model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *tokenPriceRepository) GetByToken(ctx context.Context, token string) (*domain.TokenPrice, error) {
	var model TokenPriceModel
	err := r.db.WithContext(ctx).
		Where("token = ?", strings.ToUpper(token)).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toTokenPrice(&model), nil
}

func (r *tokenPriceRepository) GetByTokens(ctx context.Context, tokens []string) ([]*domain.TokenPrice, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	upper := make([]string, len(tokens))
	for i, t := range tokens {
		upper[i] = strings.ToUpper(t)
	}

	var models []*TokenPriceModel
	err := r.db.WithContext(ctx).
		Where("token IN ?", upper).
		Order("token").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	prices := make([]*domain.TokenPrice, len(models))
	for i, m := range models {
		prices[i] = toTokenPrice(m)
	}
	return prices, nil
}

func (r *tokenPriceRepository) GetAll(ctx context.Context) ([]*domain.TokenPrice, error) {
	var models []*TokenPriceModel
	err := r.db.WithContext(ctx).
		Order("token").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	prices := make([]*domain.TokenPrice, len(models))
	for i, m := range models {
		prices[i] = toTokenPrice(m)
	}
	return prices, nil
}

func (r *tokenPriceRepository) LastUpdated(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	err := r.db.WithContext(ctx).
		Model(&TokenPriceModel{}).
		Select("MAX(last_updated)").
		Scan(&last).Error
	if err != nil {
		return nil, err
	}
	return last, nil
}
