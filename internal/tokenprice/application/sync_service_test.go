package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/tokenfolio/internal/tokenprice/domain"
)

// fakeRepo 内存行情仓储
type fakeRepo struct {
	mu         sync.Mutex
	prices     map[string]*domain.TokenPrice
	upsertErr  map[string]error
	probeErr   error
	upserts    int
	seedCalls  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{prices: make(map[string]*domain.TokenPrice)}
}

func (r *fakeRepo) Upsert(_ context.Context, price *domain.TokenPrice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.upsertErr[price.Token]; err != nil {
		return err
	}
	now := time.Now()
	p := *price
	p.LastUpdated = &now
	r.prices[p.Token] = &p
	r.upserts++
	return nil
}

func (r *fakeRepo) SeedPlaceholder(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seedCalls++
	if _, ok := r.prices[token]; ok {
		return false, nil
	}
	r.prices[token] = domain.NewPlaceholder(token)
	return true, nil
}

func (r *fakeRepo) GetByToken(_ context.Context, token string) (*domain.TokenPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prices[token], nil
}

func (r *fakeRepo) GetByTokens(_ context.Context, tokens []string) ([]*domain.TokenPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.TokenPrice
	for _, t := range tokens {
		if p, ok := r.prices[t]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetAll(_ context.Context) ([]*domain.TokenPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tokens := make([]string, 0, len(r.prices))
	for t := range r.prices {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	out := make([]*domain.TokenPrice, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, r.prices[t])
	}
	return out, nil
}

func (r *fakeRepo) LastUpdated(_ context.Context) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.probeErr != nil {
		return nil, r.probeErr
	}
	var last *time.Time
	for _, p := range r.prices {
		if p.LastUpdated != nil && (last == nil || p.LastUpdated.After(*last)) {
			last = p.LastUpdated
		}
	}
	return last, nil
}

// fakeFetcher 固定返回给定行情；release 不为 nil 时每次调用先通知 entered 再阻塞
type fakeFetcher struct {
	tickers []domain.Ticker
	entered chan struct{}
	release chan struct{}
}

func (f *fakeFetcher) FetchTickers(_ context.Context, _ []string) []domain.Ticker {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.tickers
}

type fakeSource struct {
	name   string
	tokens []string
	err    error
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) DistinctTokens(_ context.Context) ([]string, error) {
	return s.tokens, s.err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []PriceUpdatedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, _ string, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event.(PriceUpdatedEvent))
	return nil
}

func testSymbols() *domain.SymbolTable {
	return domain.NewSymbolTable(map[string]string{
		"BTC": "BTCUSDT",
		"ETH": "ETHUSDT",
	})
}

func ticker(pair, price string) domain.Ticker {
	return domain.Ticker{
		Pair:               pair,
		LastPrice:          decimal.RequireFromString(price),
		PriceChangePercent: decimal.RequireFromString("2.5"),
		PriceChange:        decimal.RequireFromString("100"),
		Volume:             decimal.RequireFromString("1000"),
		QuoteVolume:        decimal.RequireFromString("50000000"),
	}
}

func TestSyncServiceStartRunsFirstCycle(t *testing.T) {
	repo := newFakeRepo()
	fetcher := &fakeFetcher{tickers: []domain.Ticker{ticker("BTCUSDT", "50000"), ticker("ETHUSDT", "3000")}}
	publisher := &fakePublisher{}
	svc := NewSyncService(SyncServiceOptions{
		Repository: repo,
		Fetcher:    fetcher,
		Symbols:    testSymbols(),
		Sources:    []domain.TokenSource{&fakeSource{name: "positions", tokens: []string{"btc", "ARB"}}},
		Publisher:  publisher,
		Interval:   time.Hour,
	})

	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()

	assert.True(t, svc.IsRunning())
	assert.Equal(t, uint64(1), svc.CyclesCompleted())

	// 行情来自交易所数据
	btc, err := repo.GetByToken(context.Background(), "BTC")
	require.NoError(t, err)
	require.NotNil(t, btc)
	assert.Equal(t, "50000", btc.PriceUSDT.String())
	assert.NotNil(t, btc.LastUpdated)

	// 发现的未映射 Token 得到占位行
	arb, err := repo.GetByToken(context.Background(), "ARB")
	require.NoError(t, err)
	require.NotNil(t, arb)
	assert.True(t, arb.IsPlaceholder())

	// 周期完成后发布事件
	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	require.Len(t, publisher.events, 1)
	assert.Equal(t, 2, publisher.events[0].TokensUpdated)
}

func TestSyncServiceStartFailsWhenStoreUnavailable(t *testing.T) {
	repo := newFakeRepo()
	repo.probeErr = errors.New("dial tcp: connection refused")
	svc := NewSyncService(SyncServiceOptions{
		Repository: repo,
		Fetcher:    &fakeFetcher{},
		Symbols:    testSymbols(),
		Interval:   time.Hour,
	})

	err := svc.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateStopped, svc.State())
	assert.False(t, svc.IsRunning())
}

func TestSyncServiceStartTwiceIsNoop(t *testing.T) {
	repo := newFakeRepo()
	svc := NewSyncService(SyncServiceOptions{
		Repository: repo,
		Fetcher:    &fakeFetcher{tickers: []domain.Ticker{ticker("BTCUSDT", "1")}},
		Symbols:    testSymbols(),
		Interval:   time.Hour,
	})

	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()
	cycles := svc.CyclesCompleted()

	require.NoError(t, svc.Start(context.Background()))
	assert.Equal(t, cycles, svc.CyclesCompleted())
	assert.True(t, svc.IsRunning())
}

func TestSyncServiceStopIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewSyncService(SyncServiceOptions{
		Repository: repo,
		Fetcher:    &fakeFetcher{},
		Symbols:    testSymbols(),
		Interval:   time.Hour,
	})

	require.NoError(t, svc.Start(context.Background()))
	svc.Stop()
	assert.Equal(t, StateStopped, svc.State())

	// 对已停止的服务再次 Stop 不应 panic 或阻塞
	svc.Stop()
	assert.Equal(t, StateStopped, svc.State())
}

func TestSyncServiceRefreshRequiresRunning(t *testing.T) {
	svc := NewSyncService(SyncServiceOptions{
		Repository: newFakeRepo(),
		Fetcher:    &fakeFetcher{},
		Symbols:    testSymbols(),
		Interval:   time.Hour,
	})

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestSyncServiceOverlapGuardSkipsConcurrentCycle(t *testing.T) {
	repo := newFakeRepo()
	entered := make(chan struct{}, 4)
	release := make(chan struct{})
	fetcher := &fakeFetcher{tickers: []domain.Ticker{ticker("BTCUSDT", "1")}, entered: entered, release: release}
	svc := NewSyncService(SyncServiceOptions{
		Repository: repo,
		Fetcher:    fetcher,
		Symbols:    testSymbols(),
		Interval:   time.Hour,
	})

	// 放行启动时的首个周期
	go func() { release <- struct{}{} }()
	require.NoError(t, svc.Start(context.Background()))
	<-entered
	defer svc.Stop()

	// 手动触发一个周期并让它阻塞在拉取上
	firstDone := make(chan bool)
	go func() {
		ran, err := svc.Refresh(context.Background())
		assert.NoError(t, err)
		firstDone <- ran
	}()
	<-entered

	// 在途周期未结束时的触发被跳过，而非排队
	ran, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)

	release <- struct{}{}
	assert.True(t, <-firstDone)
}

func TestSyncServicePartialUpsertFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.upsertErr = map[string]error{"ETH": errors.New("deadlock")}
	fetcher := &fakeFetcher{tickers: []domain.Ticker{ticker("BTCUSDT", "50000"), ticker("ETHUSDT", "3000")}}
	publisher := &fakePublisher{}
	svc := NewSyncService(SyncServiceOptions{
		Repository: repo,
		Fetcher:    fetcher,
		Symbols:    testSymbols(),
		Publisher:  publisher,
		Interval:   time.Hour,
	})

	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()

	// 失败的 Token 不影响其余更新
	btc, _ := repo.GetByToken(context.Background(), "BTC")
	require.NotNil(t, btc)
	eth, _ := repo.GetByToken(context.Background(), "ETH")
	assert.Nil(t, eth)

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	require.Len(t, publisher.events, 1)
	assert.Equal(t, 1, publisher.events[0].TokensUpdated)
}

func TestSyncServiceDiscoverySkipsFailedSource(t *testing.T) {
	repo := newFakeRepo()
	svc := NewSyncService(SyncServiceOptions{
		Repository: repo,
		Fetcher:    &fakeFetcher{},
		Symbols:    testSymbols(),
		Sources: []domain.TokenSource{
			&fakeSource{name: "positions", err: errors.New("table missing")},
			&fakeSource{name: "defi", tokens: []string{"SUI", " sui ", ""}},
		},
		Interval: time.Hour,
	})

	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()

	// 失败的来源被跳过，其余来源正常；Token 规范化去重
	sui, err := repo.GetByToken(context.Background(), "SUI")
	require.NoError(t, err)
	require.NotNil(t, sui)
	assert.True(t, sui.IsPlaceholder())
}

func TestSyncServicePlaceholderNeverDowngradesRealPrice(t *testing.T) {
	repo := newFakeRepo()
	fetcher := &fakeFetcher{tickers: []domain.Ticker{ticker("BTCUSDT", "50000")}}
	svc := NewSyncService(SyncServiceOptions{
		Repository: repo,
		Fetcher:    fetcher,
		Symbols:    testSymbols(),
		Sources:    []domain.TokenSource{&fakeSource{name: "positions", tokens: []string{"BTC"}}},
		Interval:   time.Hour,
	})

	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()

	// BTC 已有真实价格，发现流程不得覆盖
	btc, _ := repo.GetByToken(context.Background(), "BTC")
	require.NotNil(t, btc)
	assert.Equal(t, "50000", btc.PriceUSDT.String())
	assert.False(t, btc.IsPlaceholder())
}

func TestSyncServicePublishFailureDoesNotAbortCycle(t *testing.T) {
	repo := newFakeRepo()
	fetcher := &fakeFetcher{tickers: []domain.Ticker{ticker("BTCUSDT", "50000")}}
	svc := NewSyncService(SyncServiceOptions{
		Repository: repo,
		Fetcher:    fetcher,
		Symbols:    testSymbols(),
		Publisher:  &fakePublisher{err: errors.New("broker down")},
		Interval:   time.Hour,
	})

	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()

	assert.Equal(t, uint64(1), svc.CyclesCompleted())
	btc, _ := repo.GetByToken(context.Background(), "BTC")
	assert.NotNil(t, btc)
}
