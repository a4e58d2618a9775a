// Package application 实现 DeFi 操作记录的应用服务
package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wyfcoding/tokenfolio/internal/defi/domain"
	"github.com/wyfcoding/tokenfolio/pkg/logger"
)

// DefiService DeFi 操作应用服务
type DefiService struct {
	repo domain.DefiRepository
}

// NewDefiService 创建 DeFi 应用服务
func NewDefiService(repo domain.DefiRepository) *DefiService {
	return &DefiService{repo: repo}
}

// Record 登记一笔 DeFi 操作
func (s *DefiService) Record(ctx context.Context, op *domain.DefiOperation) error {
	op.Project = strings.TrimSpace(op.Project)
	op.Token = strings.ToUpper(strings.TrimSpace(op.Token))
	if op.Project == "" {
		return fmt.Errorf("project is required")
	}
	if op.Token == "" {
		return fmt.Errorf("token is required")
	}
	if err := s.repo.Create(ctx, op); err != nil {
		return err
	}
	logger.Info(ctx, "DeFi 操作已记录",
		"project", op.Project, "operation_type", op.OperationType, "token", op.Token)
	return nil
}

// MarkExited 标记某笔操作已退出
func (s *DefiService) MarkExited(ctx context.Context, id uint, exitTime time.Time) (*domain.DefiOperation, error) {
	op, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, nil
	}
	op.ExitTime = &exitTime
	if err := s.repo.Update(ctx, op); err != nil {
		return nil, err
	}
	return op, nil
}

// Delete 删除一笔操作记录
func (s *DefiService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// List 列出操作记录，可按项目过滤
func (s *DefiService) List(ctx context.Context, project string) ([]*domain.DefiOperation, error) {
	if project != "" {
		return s.repo.ListByProject(ctx, project)
	}
	return s.repo.List(ctx)
}

// Summary 按项目汇总在场数量
func (s *DefiService) Summary(ctx context.Context) ([]*domain.ProjectSummary, error) {
	return s.repo.SummaryByProject(ctx)
}
