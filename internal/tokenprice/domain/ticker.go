package domain

import "github.com/shopspring/decimal"

// Ticker 交易所 24 小时行情快照，一条对应一个交易对
type Ticker struct {
	// 交易对标识，例如 BTCUSDT
	Pair string
	// 最新成交价
	LastPrice decimal.Decimal
	// 24 小时涨跌幅（百分比）
	PriceChangePercent decimal.Decimal
	// 24 小时涨跌额
	PriceChange decimal.Decimal
	// 24 小时成交量（基础币）
	Volume decimal.Decimal
	// 24 小时成交额（计价币）
	QuoteVolume decimal.Decimal
}
