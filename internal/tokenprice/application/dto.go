package application

import (
	"time"

	"github.com/wyfcoding/tokenfolio/internal/tokenprice/domain"
)

// TokenPriceDTO 行情行对外表示，数值字段序列化为字符串以保留精度
type TokenPriceDTO struct {
	Token             string  `json:"token"`
	PriceUSDT         string  `json:"price_usdt"`
	PriceChange24h    string  `json:"price_change_24h"`
	PriceChange24hAbs string  `json:"price_change_24h_usdt"`
	Volume24h         string  `json:"volume_24h"`
	MarketCap         string  `json:"market_cap"`
	LastUpdated       *string `json:"last_updated"`
}

// HealthDTO 服务健康状态
type HealthDTO struct {
	ServiceStatus        string  `json:"service_status"`
	LastUpdate           *string `json:"last_update"`
	SupportedTokensCount int     `json:"supported_tokens_count"`
}

func toTokenPriceDTO(p *domain.TokenPrice) *TokenPriceDTO {
	if p == nil {
		return nil
	}
	var lastUpdated *string
	if p.LastUpdated != nil {
		s := p.LastUpdated.Format(time.RFC3339)
		lastUpdated = &s
	}
	return &TokenPriceDTO{
		Token:             p.Token,
		PriceUSDT:         p.PriceUSDT.String(),
		PriceChange24h:    p.PriceChange24h.String(),
		PriceChange24hAbs: p.PriceChange24hAbs.String(),
		Volume24h:         p.Volume24h.String(),
		MarketCap:         p.MarketCap.String(),
		LastUpdated:       lastUpdated,
	}
}
