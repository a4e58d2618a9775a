package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/wyfcoding/tokenfolio/internal/defi/domain"
)

// DefiRepository DeFi 操作的 MySQL 仓储实现
type DefiRepository struct {
	db *gorm.DB
}

// NewDefiRepository 创建 DeFi 操作仓储
func NewDefiRepository(db *gorm.DB) *DefiRepository {
	return &DefiRepository{db: db}
}

// Name 实现 TokenSource 接口，标识发现来源
func (r *DefiRepository) Name() string { return "defi_operations" }

func (r *DefiRepository) Create(ctx context.Context, op *domain.DefiOperation) error {
	if err := r.db.WithContext(ctx).Create(op).Error; err != nil {
		return fmt.Errorf("create defi operation: %w", err)
	}
	return nil
}

func (r *DefiRepository) Update(ctx context.Context, op *domain.DefiOperation) error {
	if err := r.db.WithContext(ctx).Save(op).Error; err != nil {
		return fmt.Errorf("update defi operation %d: %w", op.ID, err)
	}
	return nil
}

func (r *DefiRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&domain.DefiOperation{}, id).Error; err != nil {
		return fmt.Errorf("delete defi operation %d: %w", id, err)
	}
	return nil
}

func (r *DefiRepository) GetByID(ctx context.Context, id uint) (*domain.DefiOperation, error) {
	var op domain.DefiOperation
	err := r.db.WithContext(ctx).First(&op, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get defi operation %d: %w", id, err)
	}
	return &op, nil
}

func (r *DefiRepository) List(ctx context.Context) ([]*domain.DefiOperation, error) {
	var ops []*domain.DefiOperation
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&ops).Error; err != nil {
		return nil, fmt.Errorf("list defi operations: %w", err)
	}
	return ops, nil
}

func (r *DefiRepository) ListByProject(ctx context.Context, project string) ([]*domain.DefiOperation, error) {
	var ops []*domain.DefiOperation
	err := r.db.WithContext(ctx).
		Where("project = ?", project).
		Order("created_at DESC").
		Find(&ops).Error
	if err != nil {
		return nil, fmt.Errorf("list defi operations for %s: %w", project, err)
	}
	return ops, nil
}

// SummaryByProject 按项目与 Token 汇总仍在场内的数量
func (r *DefiRepository) SummaryByProject(ctx context.Context) ([]*domain.ProjectSummary, error) {
	var rows []*domain.ProjectSummary
	err := r.db.WithContext(ctx).
		Model(&domain.DefiOperation{}).
		Select(`project, token,
			COALESCE(SUM(CASE WHEN exit_time IS NULL THEN quantity ELSE 0 END), 0) AS total_quantity,
			COUNT(*) AS operations`).
		Group("project, token").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("summary by project: %w", err)
	}
	return rows, nil
}

func (r *DefiRepository) DistinctTokens(ctx context.Context) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).
		Model(&domain.DefiOperation{}).
		Distinct("token").
		Where("token IS NOT NULL AND token != ''").
		Pluck("token", &tokens).Error
	if err != nil {
		return nil, fmt.Errorf("distinct tokens from defi operations: %w", err)
	}
	return tokens, nil
}
