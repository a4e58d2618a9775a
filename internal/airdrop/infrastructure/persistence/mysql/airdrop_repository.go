package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/wyfcoding/tokenfolio/internal/airdrop/domain"
)

// AirdropRepository 空投参与的 MySQL 仓储实现
type AirdropRepository struct {
	db *gorm.DB
}

// NewAirdropRepository 创建空投参与仓储
func NewAirdropRepository(db *gorm.DB) *AirdropRepository {
	return &AirdropRepository{db: db}
}

// Name 实现 TokenSource 接口，标识发现来源
func (r *AirdropRepository) Name() string { return "airdrop_participations" }

func (r *AirdropRepository) Create(ctx context.Context, p *domain.AirdropParticipation) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create airdrop participation: %w", err)
	}
	return nil
}

func (r *AirdropRepository) Update(ctx context.Context, p *domain.AirdropParticipation) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("update airdrop participation %d: %w", p.ID, err)
	}
	return nil
}

func (r *AirdropRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&domain.AirdropParticipation{}, id).Error; err != nil {
		return fmt.Errorf("delete airdrop participation %d: %w", id, err)
	}
	return nil
}

func (r *AirdropRepository) GetByID(ctx context.Context, id uint) (*domain.AirdropParticipation, error) {
	var p domain.AirdropParticipation
	err := r.db.WithContext(ctx).First(&p, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get airdrop participation %d: %w", id, err)
	}
	return &p, nil
}

func (r *AirdropRepository) List(ctx context.Context) ([]*domain.AirdropParticipation, error) {
	var ps []*domain.AirdropParticipation
	if err := r.db.WithContext(ctx).Order("participation_date DESC").Find(&ps).Error; err != nil {
		return nil, fmt.Errorf("list airdrop participations: %w", err)
	}
	return ps, nil
}

func (r *AirdropRepository) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.AirdropParticipation, error) {
	var ps []*domain.AirdropParticipation
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("participation_date DESC").
		Find(&ps).Error
	if err != nil {
		return nil, fmt.Errorf("list airdrop participations with status %s: %w", status, err)
	}
	return ps, nil
}

func (r *AirdropRepository) ListByType(ctx context.Context, ptype domain.ParticipationType) ([]*domain.AirdropParticipation, error) {
	var ps []*domain.AirdropParticipation
	err := r.db.WithContext(ctx).
		Where("participation_type = ?", ptype).
		Order("participation_date DESC").
		Find(&ps).Error
	if err != nil {
		return nil, fmt.Errorf("list airdrop participations with type %s: %w", ptype, err)
	}
	return ps, nil
}

func (r *AirdropRepository) DistinctTokens(ctx context.Context) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).
		Model(&domain.AirdropParticipation{}).
		Distinct("participation_token").
		Where("participation_token IS NOT NULL AND participation_token != ''").
		Pluck("participation_token", &tokens).Error
	if err != nil {
		return nil, fmt.Errorf("distinct tokens from airdrop participations: %w", err)
	}
	return tokens, nil
}
