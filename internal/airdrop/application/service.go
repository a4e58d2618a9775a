// Package application 实现空投参与记录的应用服务
package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/tokenfolio/internal/airdrop/domain"
	"github.com/wyfcoding/tokenfolio/pkg/logger"
)

// AirdropService 空投参与应用服务
type AirdropService struct {
	repo domain.AirdropRepository
}

// NewAirdropService 创建空投应用服务
func NewAirdropService(repo domain.AirdropRepository) *AirdropService {
	return &AirdropService{repo: repo}
}

// Record 登记一笔空投参与
func (s *AirdropService) Record(ctx context.Context, p *domain.AirdropParticipation) error {
	p.ProjectName = strings.TrimSpace(p.ProjectName)
	if p.ProjectName == "" {
		return fmt.Errorf("project name is required")
	}
	p.ParticipationToken = strings.ToUpper(strings.TrimSpace(p.ParticipationToken))
	if p.Status == "" {
		p.Status = domain.StatusPending
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	logger.Info(ctx, "空投参与已记录",
		"project", p.ProjectName, "type", p.ParticipationType, "token", p.ParticipationToken)
	return nil
}

// SettleResult 空投到账结算参数
type SettleResult struct {
	Status       domain.Status
	ActualReward string
	ActualAPR    *decimal.Decimal
}

// Settle 更新空投结果状态
func (s *AirdropService) Settle(ctx context.Context, id uint, result SettleResult) (*domain.AirdropParticipation, error) {
	if result.Status != domain.StatusReceived && result.Status != domain.StatusFailed {
		return nil, fmt.Errorf("invalid settle status %q", result.Status)
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	p.Status = result.Status
	p.ActualReward = result.ActualReward
	p.ActualAPR = result.ActualAPR
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete 删除一笔参与记录
func (s *AirdropService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// List 列出参与记录，可按状态或参与方式过滤，状态优先
func (s *AirdropService) List(ctx context.Context, status, ptype string) ([]*domain.AirdropParticipation, error) {
	if status != "" {
		return s.repo.ListByStatus(ctx, domain.Status(status))
	}
	if ptype != "" {
		return s.repo.ListByType(ctx, domain.ParticipationType(ptype))
	}
	return s.repo.List(ctx)
}
