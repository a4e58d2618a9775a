package domain

import (
	"context"
	"time"
)

// TokenPriceRepository 行情表仓储
type TokenPriceRepository interface {
	// Upsert 按 token 插入或覆盖一行，并把 last_updated 置为当前时间
	Upsert(ctx context.Context, price *TokenPrice) error
	// SeedPlaceholder 不存在时插入占位行，已存在时不做任何修改
	SeedPlaceholder(ctx context.Context, token string) (created bool, err error)
	// GetByToken 按 token 查询，未找到返回 nil
	GetByToken(ctx context.Context, token string) (*TokenPrice, error)
	// GetByTokens 批量查询，结果只包含存在的行
	GetByTokens(ctx context.Context, tokens []string) ([]*TokenPrice, error)
	// GetAll 全量查询，按 token 排序
	GetAll(ctx context.Context) ([]*TokenPrice, error)
	// LastUpdated 全表最大 last_updated，空表返回 nil
	LastUpdated(ctx context.Context) (*time.Time, error)
}

// TickerFetcher 外部行情源
type TickerFetcher interface {
	// FetchTickers 拉取指定交易对的 24 小时行情。
	// 部分批次失败时返回成功部分，完全失败时返回空切片，不返回传输层错误。
	FetchTickers(ctx context.Context, pairs []string) []Ticker
}

// TokenSource 业务表 Token 来源，供发现流程扫描
type TokenSource interface {
	// Name 来源名称，仅用于日志
	Name() string
	// DistinctTokens 去重后的 Token 列表
	DistinctTokens(ctx context.Context) ([]string, error)
}

// EventPublisher 行情更新事件发布
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
