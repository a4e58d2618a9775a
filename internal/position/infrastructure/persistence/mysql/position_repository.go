package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/wyfcoding/tokenfolio/internal/position/domain"
)

// PositionRepository 仓位操作的 MySQL 仓储实现
type PositionRepository struct {
	db *gorm.DB
}

// NewPositionRepository 创建仓位操作仓储
func NewPositionRepository(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// Name 实现 TokenSource 接口，标识发现来源
func (r *PositionRepository) Name() string { return "position_operations" }

func (r *PositionRepository) Create(ctx context.Context, op *domain.PositionOperation) error {
	if err := r.db.WithContext(ctx).Create(op).Error; err != nil {
		return fmt.Errorf("create position operation: %w", err)
	}
	return nil
}

func (r *PositionRepository) Update(ctx context.Context, op *domain.PositionOperation) error {
	if err := r.db.WithContext(ctx).Save(op).Error; err != nil {
		return fmt.Errorf("update position operation %d: %w", op.ID, err)
	}
	return nil
}

func (r *PositionRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&domain.PositionOperation{}, id).Error; err != nil {
		return fmt.Errorf("delete position operation %d: %w", id, err)
	}
	return nil
}

func (r *PositionRepository) GetByID(ctx context.Context, id uint) (*domain.PositionOperation, error) {
	var op domain.PositionOperation
	err := r.db.WithContext(ctx).First(&op, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get position operation %d: %w", id, err)
	}
	return &op, nil
}

func (r *PositionRepository) List(ctx context.Context) ([]*domain.PositionOperation, error) {
	var ops []*domain.PositionOperation
	if err := r.db.WithContext(ctx).Order("operation_date DESC").Find(&ops).Error; err != nil {
		return nil, fmt.Errorf("list position operations: %w", err)
	}
	return ops, nil
}

func (r *PositionRepository) ListByToken(ctx context.Context, tokenSymbol string) ([]*domain.PositionOperation, error) {
	var ops []*domain.PositionOperation
	err := r.db.WithContext(ctx).
		Where("token_symbol = ?", tokenSymbol).
		Order("operation_date DESC").
		Find(&ops).Error
	if err != nil {
		return nil, fmt.Errorf("list position operations for %s: %w", tokenSymbol, err)
	}
	return ops, nil
}

// SummaryByToken 按 Token 汇总买卖数量与金额
func (r *PositionRepository) SummaryByToken(ctx context.Context) ([]*domain.TokenSummary, error) {
	var rows []*domain.TokenSummary
	err := r.db.WithContext(ctx).
		Model(&domain.PositionOperation{}).
		Select(`token_symbol,
			MAX(token_name) AS token_name,
			COALESCE(SUM(CASE WHEN operation_type = 'buy' THEN quantity ELSE 0 END), 0) AS total_buy_qty,
			COALESCE(SUM(CASE WHEN operation_type = 'sell' THEN quantity ELSE 0 END), 0) AS total_sell_qty,
			COALESCE(SUM(CASE WHEN operation_type = 'buy' THEN total_amount ELSE 0 END), 0) AS total_buy_amount,
			COALESCE(SUM(CASE WHEN operation_type = 'sell' THEN total_amount ELSE 0 END), 0) AS total_sell_amount`).
		Group("token_symbol").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("summary by token: %w", err)
	}
	return rows, nil
}

func (r *PositionRepository) DistinctTokens(ctx context.Context) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).
		Model(&domain.PositionOperation{}).
		Distinct("token_symbol").
		Where("token_symbol IS NOT NULL AND token_symbol != ''").
		Pluck("token_symbol", &tokens).Error
	if err != nil {
		return nil, fmt.Errorf("distinct tokens from position operations: %w", err)
	}
	return tokens, nil
}
