package domain

import (
	"sort"
	"strings"
)

// SymbolTable Token 与交易所交易对的静态双向映射。
// 启动时构建，之后只读；映射之外的 Token 视为“不支持”，不是错误。
type SymbolTable struct {
	tokenToPair map[string]string
	pairToToken map[string]string
}

// NewSymbolTable 由 token→pair 映射构建符号表，token 统一转大写
func NewSymbolTable(mapping map[string]string) *SymbolTable {
	t := &SymbolTable{
		tokenToPair: make(map[string]string, len(mapping)),
		pairToToken: make(map[string]string, len(mapping)),
	}
	for token, pair := range mapping {
		token = strings.ToUpper(token)
		t.tokenToPair[token] = pair
		t.pairToToken[pair] = token
	}
	return t
}

// DefaultSymbolTable 内置支持的 Token 集合
func DefaultSymbolTable() *SymbolTable {
	return NewSymbolTable(map[string]string{
		"BTC":   "BTCUSDT",
		"ETH":   "ETHUSDT",
		"BNB":   "BNBUSDT",
		"ADA":   "ADAUSDT",
		"XRP":   "XRPUSDT",
		"SOL":   "SOLUSDT",
		"SUI":   "SUIUSDT",
		"DOGE":  "DOGEUSDT",
		"MATIC": "MATICUSDT",
		"LINK":  "LINKUSDT",
		"UNI":   "UNIUSDT",
		"LTC":   "LTCUSDT",
		"ATOM":  "ATOMUSDT",
		"AAVE":  "AAVEUSDT",
		"CRV":   "CRVUSDT",
	})
}

// PairFor 查询 Token 对应的交易对
func (t *SymbolTable) PairFor(token string) (string, bool) {
	pair, ok := t.tokenToPair[strings.ToUpper(token)]
	return pair, ok
}

// TokenFor 查询交易对对应的 Token
func (t *SymbolTable) TokenFor(pair string) (string, bool) {
	token, ok := t.pairToToken[pair]
	return token, ok
}

// Pairs 返回全部交易对，按字典序排序
func (t *SymbolTable) Pairs() []string {
	pairs := make([]string, 0, len(t.pairToToken))
	for pair := range t.pairToToken {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)
	return pairs
}

// Size 支持的 Token 数量
func (t *SymbolTable) Size() int {
	return len(t.tokenToPair)
}
