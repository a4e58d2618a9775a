package fallback

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/tokenfolio/pkg/logger"
)

// DefaultCacheTTL 缓存默认有效期
const DefaultCacheTTL = 5 * time.Minute

// PriceData 备用价格记录
type PriceData struct {
	CurrentPrice   decimal.Decimal `json:"current_price"`
	PriceChange24h decimal.Decimal `json:"price_change_24h"`
	LastUpdated    time.Time       `json:"last_updated"`
}

// SpotFetcher 即时价来源
type SpotFetcher interface {
	SpotPrice(ctx context.Context, symbol string) (PriceData, error)
}

type cacheEntry struct {
	data      PriceData
	fetchedAt time.Time
}

// EntryStatus 单条缓存的状态
type EntryStatus struct {
	AgeSeconds int  `json:"age"`
	Valid      bool `json:"valid"`
}

// PriceCache 进程内 TTL 价格缓存。过期只在读取时判断，没有后台清理线程；
// 拉取失败返回零值记录而不是错误，调用方拿到的永远是可展示的数据。
type PriceCache struct {
	fetcher SpotFetcher
	ttl     time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry

	// 可注入时钟，测试用
	now func() time.Time
}

// NewPriceCache 创建价格缓存
func NewPriceCache(fetcher SpotFetcher, ttl time.Duration) *PriceCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &PriceCache{
		fetcher: fetcher,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get 读取缓存，未写入过或已过期视为 miss
func (c *PriceCache) Get(symbol string) (PriceData, bool) {
	key := strings.ToUpper(symbol)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(entry.fetchedAt) >= c.ttl {
		return PriceData{}, false
	}
	return entry.data, true
}

// GetOrFetch 缓存 miss 时直接向外部源拉取并写入缓存。
// 拉取失败返回零值记录且不写缓存，下次调用会重试。
func (c *PriceCache) GetOrFetch(ctx context.Context, symbol string) PriceData {
	if data, ok := c.Get(symbol); ok {
		return data
	}

	data, err := c.fetcher.SpotPrice(ctx, symbol)
	if err != nil {
		logger.Warn(ctx, "fallback price fetch failed", "symbol", symbol, "error", err)
		return PriceData{
			CurrentPrice:   decimal.Zero,
			PriceChange24h: decimal.Zero,
			LastUpdated:    c.now(),
		}
	}

	key := strings.ToUpper(symbol)
	c.mu.Lock()
	c.entries[key] = cacheEntry{data: data, fetchedAt: c.now()}
	c.mu.Unlock()

	return data
}

// GetBatch 逐个解析符号，单个符号失败不影响其他符号
func (c *PriceCache) GetBatch(ctx context.Context, symbols []string) map[string]PriceData {
	result := make(map[string]PriceData, len(symbols))
	for _, symbol := range symbols {
		key := strings.ToUpper(symbol)
		if _, ok := result[key]; ok {
			continue
		}
		result[key] = c.GetOrFetch(ctx, symbol)
	}
	return result
}

// Clear 无条件清空缓存
func (c *PriceCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Status 每条缓存的年龄与有效性
func (c *PriceCache) Status() map[string]EntryStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	status := make(map[string]EntryStatus, len(c.entries))
	for key, entry := range c.entries {
		age := now.Sub(entry.fetchedAt)
		status[key] = EntryStatus{
			AgeSeconds: int(age.Seconds()),
			Valid:      age < c.ttl,
		}
	}
	return status
}
