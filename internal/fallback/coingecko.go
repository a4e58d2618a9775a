// Package fallback 提供独立于主行情表的备用价格查询：
// CoinGecko 即时价 + 进程内 TTL 缓存。
package fallback

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCoinGeckoBaseURL CoinGecko REST 基础地址
const DefaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// coinGeckoIDs 符号到 CoinGecko 币种 ID 的映射，覆盖面比主符号表更广
var coinGeckoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"DOT":   "polkadot",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
	"AAVE":  "aave",
	"MATIC": "matic-network",
	"BNB":   "binancecoin",
	"XRP":   "ripple",
	"LTC":   "litecoin",
	"BCH":   "bitcoin-cash",
	"XLM":   "stellar",
	"XMR":   "monero",
	"DASH":  "dash",
	"ZEC":   "zcash",
	"XTZ":   "tezos",
	"ATOM":  "cosmos",
	"FIL":   "filecoin",
	"AVAX":  "avalanche-2",
	"NEAR":  "near",
	"ALGO":  "algorand",
	"VET":   "vechain",
	"ICP":   "internet-computer",
	"FTM":   "fantom",
	"THETA": "theta-token",
	"EOS":   "eos",
	"TRX":   "tron",
	"IOTA":  "iota",
	"NEO":   "neo",
}

// CoinGeckoClient CoinGecko simple/price 客户端
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCoinGeckoClient 创建 CoinGecko 客户端
func NewCoinGeckoClient(baseURL string, timeout time.Duration) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CoinGeckoClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type simplePriceEntry struct {
	USD          decimal.Decimal `json:"usd"`
	USD24hChange decimal.Decimal `json:"usd_24h_change"`
}

// SpotPrice 查询单个符号的即时美元价
func (c *CoinGeckoClient) SpotPrice(ctx context.Context, symbol string) (PriceData, error) {
	id, ok := coinGeckoIDs[strings.ToUpper(symbol)]
	if !ok {
		return PriceData{}, fmt.Errorf("unsupported symbol: %s", symbol)
	}

	params := url.Values{}
	params.Set("ids", id)
	params.Set("vs_currencies", "usd")
	params.Set("include_24hr_change", "true")

	endpoint := fmt.Sprintf("%s/simple/price?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return PriceData{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return PriceData{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return PriceData{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload map[string]simplePriceEntry
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return PriceData{}, fmt.Errorf("failed to decode price response: %w", err)
	}

	entry, ok := payload[id]
	if !ok {
		return PriceData{}, fmt.Errorf("no price data for %s", symbol)
	}

	return PriceData{
		CurrentPrice:   entry.USD,
		PriceChange24h: entry.USD24hChange,
		LastUpdated:    time.Now(),
	}, nil
}
