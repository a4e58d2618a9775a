package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/tokenfolio/internal/tokenprice/domain"
)

// TokenPriceModel MySQL 行情表映射
type TokenPriceModel struct {
	ID                uint            `gorm:"primaryKey;autoIncrement"`
	CreatedAt         time.Time       `gorm:"column:created_at"`
	Token             string          `gorm:"column:token;type:varchar(32);uniqueIndex;not null;comment:Token 标识"`
	PriceUSDT         decimal.Decimal `gorm:"column:price_usdt;type:decimal(32,18);not null"`
	PriceChange24h    decimal.Decimal `gorm:"column:price_change_24h;type:decimal(16,4);not null"`
	PriceChange24hAbs decimal.Decimal `gorm:"column:price_change_24h_usdt;type:decimal(32,18);not null"`
	Volume24h         decimal.Decimal `gorm:"column:volume_24h;type:decimal(32,18);not null"`
	MarketCap         decimal.Decimal `gorm:"column:market_cap;type:decimal(32,18);not null"`
	LastUpdated       *time.Time      `gorm:"column:last_updated;index"`
}

func (TokenPriceModel) TableName() string { return "token_market" }

func toModel(p *domain.TokenPrice) *TokenPriceModel {
	if p == nil {
		return nil
	}
	return &TokenPriceModel{
		Token:             p.Token,
		PriceUSDT:         p.PriceUSDT,
		PriceChange24h:    p.PriceChange24h,
		PriceChange24hAbs: p.PriceChange24hAbs,
		Volume24h:         p.Volume24h,
		MarketCap:         p.MarketCap,
		LastUpdated:       p.LastUpdated,
	}
}

func toTokenPrice(m *TokenPriceModel) *domain.TokenPrice {
	if m == nil {
		return nil
	}
	return &domain.TokenPrice{
		Token:             m.Token,
		PriceUSDT:         m.PriceUSDT,
		PriceChange24h:    m.PriceChange24h,
		PriceChange24hAbs: m.PriceChange24hAbs,
		Volume24h:         m.Volume24h,
		MarketCap:         m.MarketCap,
		LastUpdated:       m.LastUpdated,
	}
}
