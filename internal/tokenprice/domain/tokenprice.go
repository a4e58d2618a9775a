package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlaceholderPrice 占位价格：Token 已被发现但尚未拉取过真实行情时写入的默认价
var PlaceholderPrice = decimal.NewFromInt(1)

// TokenPrice Token 行情实体，token_market 表一行
type TokenPrice struct {
	// Token 标识，大写，表内唯一
	Token string
	// 以 USDT 计价的最新价
	PriceUSDT decimal.Decimal
	// 24 小时涨跌幅（百分比，带符号）
	PriceChange24h decimal.Decimal
	// 24 小时涨跌额（USDT）
	PriceChange24hAbs decimal.Decimal
	// 24 小时成交量
	Volume24h decimal.Decimal
	// 市值（取 quote volume，沿用上游口径）
	MarketCap decimal.Decimal
	// 最近一次成功写入真实行情的时间，占位行为 nil
	LastUpdated *time.Time
}

// NewPlaceholder 创建占位行情：价格 1.0，其余字段为零，LastUpdated 为空
func NewPlaceholder(token string) *TokenPrice {
	return &TokenPrice{
		Token:             token,
		PriceUSDT:         PlaceholderPrice,
		PriceChange24h:    decimal.Zero,
		PriceChange24hAbs: decimal.Zero,
		Volume24h:         decimal.Zero,
		MarketCap:         decimal.Zero,
	}
}

// IsPlaceholder 该行是否从未被真实行情覆盖过
func (p *TokenPrice) IsPlaceholder() bool {
	return p.LastUpdated == nil
}
