// Package binance 实现基于 Binance REST API 的行情拉取
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/tokenfolio/internal/tokenprice/domain"
	"github.com/wyfcoding/tokenfolio/pkg/logger"
	"github.com/wyfcoding/tokenfolio/pkg/metrics"
)

// 默认参数，与 Binance /ticker/24hr 的限制对齐
const (
	DefaultBaseURL        = "https://api.binance.com/api/v3"
	DefaultBatchSize      = 100
	DefaultBatchDelay     = 200 * time.Millisecond
	DefaultRequestTimeout = 10 * time.Second
)

// Client Binance 行情客户端
type Client struct {
	baseURL        string
	batchSize      int
	batchDelay     time.Duration
	requestTimeout time.Duration
	httpClient     *http.Client
	metrics        *metrics.Metrics
}

// Option 配置 Client
type Option func(*Client)

// WithBaseURL 设置 API 基础地址
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithBatchSize 设置单次请求的最大交易对数量
func WithBatchSize(n int) Option {
	return func(c *Client) {
		if n > 0 && n <= DefaultBatchSize {
			c.batchSize = n
		}
	}
}

// WithBatchDelay 设置批次间隔
func WithBatchDelay(d time.Duration) Option {
	return func(c *Client) { c.batchDelay = d }
}

// WithRequestTimeout 设置单批次请求超时
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.requestTimeout = d
		c.httpClient.Timeout = d
	}
}

// WithMetrics 挂接指标采集
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient 创建 Binance 行情客户端
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		batchSize:      DefaultBatchSize,
		batchDelay:     DefaultBatchDelay,
		requestTimeout: DefaultRequestTimeout,
		httpClient:     &http.Client{Timeout: DefaultRequestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// tickerResponse /ticker/24hr 返回的单条记录，数值字段为字符串
type tickerResponse struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	PriceChange        string `json:"priceChange"`
	Volume             string `json:"volume"`
	QuoteVolume        string `json:"quoteVolume"`
}

// FetchTickers 拉取指定交易对的 24 小时行情。
// 输入去重后按批次顺序请求，批次间暂停以规避限频；
// 单批失败只丢弃该批，全部失败时返回空切片。
func (c *Client) FetchTickers(ctx context.Context, pairs []string) []domain.Ticker {
	pairs = dedup(pairs)
	if len(pairs) == 0 {
		return nil
	}

	var all []domain.Ticker
	for i := 0; i < len(pairs); i += c.batchSize {
		end := min(i+c.batchSize, len(pairs))
		batch := pairs[i:end]

		if i > 0 && c.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return all
			case <-time.After(c.batchDelay):
			}
		}

		tickers, err := c.fetchBatch(ctx, batch)
		if err != nil {
			logger.Warn(ctx, "ticker batch fetch failed", "pairs", len(batch), "error", err)
			if c.metrics != nil {
				c.metrics.FetchBatchErrorsTotal.Inc()
			}
			continue
		}
		all = append(all, tickers...)
	}

	return all
}

func (c *Client) fetchBatch(ctx context.Context, pairs []string) ([]domain.Ticker, error) {
	symbolsParam, err := json.Marshal(pairs)
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/ticker/24hr?symbols=%s", c.baseURL, url.QueryEscape(string(symbolsParam)))
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var raw []tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode ticker response: %w", err)
	}

	tickers := make([]domain.Ticker, 0, len(raw))
	for _, r := range raw {
		t, err := toTicker(r)
		if err != nil {
			logger.Warn(ctx, "skipping malformed ticker", "pair", r.Symbol, "error", err)
			continue
		}
		tickers = append(tickers, t)
	}
	return tickers, nil
}

func toTicker(r tickerResponse) (domain.Ticker, error) {
	lastPrice, err := decimal.NewFromString(r.LastPrice)
	if err != nil {
		return domain.Ticker{}, fmt.Errorf("lastPrice: %w", err)
	}
	changePercent, err := decimal.NewFromString(r.PriceChangePercent)
	if err != nil {
		return domain.Ticker{}, fmt.Errorf("priceChangePercent: %w", err)
	}
	change, err := decimal.NewFromString(r.PriceChange)
	if err != nil {
		return domain.Ticker{}, fmt.Errorf("priceChange: %w", err)
	}
	volume, err := decimal.NewFromString(r.Volume)
	if err != nil {
		return domain.Ticker{}, fmt.Errorf("volume: %w", err)
	}
	quoteVolume, err := decimal.NewFromString(r.QuoteVolume)
	if err != nil {
		return domain.Ticker{}, fmt.Errorf("quoteVolume: %w", err)
	}
	return domain.Ticker{
		Pair:               r.Symbol,
		LastPrice:          lastPrice,
		PriceChangePercent: changePercent,
		PriceChange:        change,
		Volume:             volume,
		QuoteVolume:        quoteVolume,
	}, nil
}

func dedup(pairs []string) []string {
	seen := make(map[string]struct{}, len(pairs))
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
