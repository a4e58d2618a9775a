// Package application 实现仓位记录的应用服务
package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/tokenfolio/internal/fallback"
	"github.com/wyfcoding/tokenfolio/internal/position/domain"
	"github.com/wyfcoding/tokenfolio/pkg/logger"
)

// Holding 持仓快照，汇总买卖后按当前价估值
type Holding struct {
	TokenSymbol   string          `json:"token_symbol"`
	TokenName     string          `json:"token_name"`
	NetQuantity   decimal.Decimal `json:"net_quantity"`
	CostAmount    decimal.Decimal `json:"cost_amount"`
	AvgCost       decimal.Decimal `json:"avg_cost"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
}

// PositionService 仓位记录应用服务
type PositionService struct {
	repo   domain.PositionRepository
	prices *fallback.PriceCache
}

// NewPositionService 创建仓位应用服务；prices 可为 nil，此时持仓估值为零
func NewPositionService(repo domain.PositionRepository, prices *fallback.PriceCache) *PositionService {
	return &PositionService{repo: repo, prices: prices}
}

// Record 登记一笔买入或卖出操作
func (s *PositionService) Record(ctx context.Context, op *domain.PositionOperation) error {
	if op.OperationType != domain.OperationTypeBuy && op.OperationType != domain.OperationTypeSell {
		return fmt.Errorf("invalid operation type %q", op.OperationType)
	}
	op.TokenSymbol = strings.ToUpper(strings.TrimSpace(op.TokenSymbol))
	if op.TokenSymbol == "" {
		return fmt.Errorf("token symbol is required")
	}
	if op.TotalAmount.IsZero() {
		op.TotalAmount = op.Quantity.Mul(op.Price)
	}
	if err := s.repo.Create(ctx, op); err != nil {
		return err
	}
	logger.Info(ctx, "仓位操作已记录",
		"operation_type", op.OperationType, "token", op.TokenSymbol, "quantity", op.Quantity.String())
	return nil
}

// UpdateReview 为操作补充评分与复盘记录
func (s *PositionService) UpdateReview(ctx context.Context, id uint, score int, review string) (*domain.PositionOperation, error) {
	if score < 1 || score > 10 {
		return nil, fmt.Errorf("score must be between 1 and 10")
	}
	op, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, nil
	}
	now := time.Now()
	op.Score = &score
	op.Review = review
	op.ReviewDate = &now
	if err := s.repo.Update(ctx, op); err != nil {
		return nil, err
	}
	return op, nil
}

// Delete 删除一笔操作记录
func (s *PositionService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// List 列出全部操作记录，可按 Token 过滤
func (s *PositionService) List(ctx context.Context, tokenSymbol string) ([]*domain.PositionOperation, error) {
	if tokenSymbol != "" {
		return s.repo.ListByToken(ctx, strings.ToUpper(strings.TrimSpace(tokenSymbol)))
	}
	return s.repo.List(ctx)
}

// Holdings 计算净持仓并用当前价估值
func (s *PositionService) Holdings(ctx context.Context) ([]*Holding, error) {
	summaries, err := s.repo.SummaryByToken(ctx)
	if err != nil {
		return nil, err
	}

	holdings := make([]*Holding, 0, len(summaries))
	symbols := make([]string, 0, len(summaries))
	for _, sum := range summaries {
		net := sum.TotalBuyQty.Sub(sum.TotalSellQty)
		if net.IsZero() || net.IsNegative() {
			continue
		}
		cost := sum.TotalBuyAmount.Sub(sum.TotalSellAmount)
		holdings = append(holdings, &Holding{
			TokenSymbol: sum.TokenSymbol,
			TokenName:   sum.TokenName,
			NetQuantity: net,
			CostAmount:  cost,
			AvgCost:     cost.Div(net).Round(8),
		})
		symbols = append(symbols, sum.TokenSymbol)
	}

	if s.prices != nil && len(symbols) > 0 {
		priceMap := s.prices.GetBatch(ctx, symbols)
		for _, h := range holdings {
			data, ok := priceMap[h.TokenSymbol]
			if !ok {
				continue
			}
			h.CurrentPrice = data.CurrentPrice
			h.CurrentValue = h.NetQuantity.Mul(data.CurrentPrice)
			h.UnrealizedPnL = h.CurrentValue.Sub(h.CostAmount)
		}
	}
	return holdings, nil
}
