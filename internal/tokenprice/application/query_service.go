package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wyfcoding/tokenfolio/internal/tokenprice/domain"
	"github.com/wyfcoding/tokenfolio/pkg/logger"
)

// MaxBatchTokens 单次批量查询允许的最大 Token 数
const MaxBatchTokens = 100

// ErrTooManyTokens 批量查询超过上限
var ErrTooManyTokens = fmt.Errorf("at most %d tokens per batch request", MaxBatchTokens)

// ErrEmptyTokens 批量查询参数为空
var ErrEmptyTokens = errors.New("tokens must be a non-empty list")

// StatusProvider 同步服务运行状态
type StatusProvider interface {
	IsRunning() bool
}

// QueryService 行情只读查询门面
type QueryService struct {
	repo    domain.TokenPriceRepository
	symbols *domain.SymbolTable
	status  StatusProvider
}

// NewQueryService 创建行情查询服务
func NewQueryService(repo domain.TokenPriceRepository, symbols *domain.SymbolTable, status StatusProvider) *QueryService {
	return &QueryService{
		repo:    repo,
		symbols: symbols,
		status:  status,
	}
}

// GetPrice 单 Token 查询，大小写不敏感；未找到返回 nil
func (q *QueryService) GetPrice(ctx context.Context, token string) (*TokenPriceDTO, error) {
	price, err := q.repo.GetByToken(ctx, strings.ToUpper(token))
	if err != nil {
		logger.Error(ctx, "failed to get token price", "token", token, "error", err)
		return nil, fmt.Errorf("failed to get token price: %w", err)
	}
	if price == nil {
		return nil, nil
	}
	return toTokenPriceDTO(price), nil
}

// GetBatchPrices 批量查询。结果只包含已存在的行，缺席的 Token 表示
// “尚未定价”，不是错误；超过 MaxBatchTokens 返回校验错误。
func (q *QueryService) GetBatchPrices(ctx context.Context, tokens []string) ([]*TokenPriceDTO, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyTokens
	}
	if len(tokens) > MaxBatchTokens {
		return nil, ErrTooManyTokens
	}

	prices, err := q.repo.GetByTokens(ctx, tokens)
	if err != nil {
		logger.Error(ctx, "failed to get batch token prices", "count", len(tokens), "error", err)
		return nil, fmt.Errorf("failed to get batch token prices: %w", err)
	}

	dtos := make([]*TokenPriceDTO, len(prices))
	for i, p := range prices {
		dtos[i] = toTokenPriceDTO(p)
	}
	return dtos, nil
}

// GetAllPrices 全量查询，按 token 排序
func (q *QueryService) GetAllPrices(ctx context.Context) ([]*TokenPriceDTO, error) {
	prices, err := q.repo.GetAll(ctx)
	if err != nil {
		logger.Error(ctx, "failed to get all token prices", "error", err)
		return nil, fmt.Errorf("failed to get all token prices: %w", err)
	}

	dtos := make([]*TokenPriceDTO, len(prices))
	for i, p := range prices {
		dtos[i] = toTokenPriceDTO(p)
	}
	return dtos, nil
}

// Health 服务健康状态。supported_tokens_count 取符号表大小（可被主动刷新的
// Token 数），不是行情表行数。
func (q *QueryService) Health(ctx context.Context) (*HealthDTO, error) {
	last, err := q.repo.LastUpdated(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read last update time: %w", err)
	}

	status := "stopped"
	if q.status != nil && q.status.IsRunning() {
		status = "running"
	}

	var lastUpdate *string
	if last != nil {
		s := last.Format(time.RFC3339)
		lastUpdate = &s
	}

	return &HealthDTO{
		ServiceStatus:        status,
		LastUpdate:           lastUpdate,
		SupportedTokensCount: q.symbols.Size(),
	}, nil
}
