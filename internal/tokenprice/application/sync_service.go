package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wyfcoding/tokenfolio/internal/tokenprice/domain"
	"github.com/wyfcoding/tokenfolio/pkg/logger"
	"github.com/wyfcoding/tokenfolio/pkg/metrics"
)

// DefaultSyncInterval 默认刷新周期
const DefaultSyncInterval = 60 * time.Second

// ErrNotRunning 同步服务未启动
var ErrNotRunning = errors.New("price sync service is not running")

// State 同步服务状态机状态
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "stopped"
	}
}

// PriceUpdatedEvent 一次刷新周期完成后发布的事件
type PriceUpdatedEvent struct {
	TickersFetched int       `json:"tickers_fetched"`
	TokensUpdated  int       `json:"tokens_updated"`
	TokensSeeded   int       `json:"tokens_seeded"`
	CompletedAt    time.Time `json:"completed_at"`
}

// SyncServiceOptions SyncService 构造参数
type SyncServiceOptions struct {
	Repository domain.TokenPriceRepository
	Fetcher    domain.TickerFetcher
	Symbols    *domain.SymbolTable
	// 业务表 Token 来源，发现流程逐个扫描
	Sources []domain.TokenSource
	// 为 nil 时事件仅落日志
	Publisher domain.EventPublisher
	// 为 nil 时不采集指标
	Metrics *metrics.Metrics
	// 刷新周期，零值取 DefaultSyncInterval
	Interval time.Duration
	// 事件 topic
	Topic string
}

// SyncService 行情同步调度器。
// 持有显式状态机，同一时刻最多一个刷新周期在执行（CAS 守卫，
// 新的 tick 在上一周期未结束时被跳过而非排队）。
type SyncService struct {
	repo      domain.TokenPriceRepository
	fetcher   domain.TickerFetcher
	symbols   *domain.SymbolTable
	sources   []domain.TokenSource
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	interval  time.Duration
	topic     string

	state           atomic.Int32
	cycleInProgress atomic.Bool
	cyclesCompleted atomic.Uint64

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	cycleWG sync.WaitGroup
}

// NewSyncService 创建行情同步调度器
func NewSyncService(opts SyncServiceOptions) *SyncService {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	topic := opts.Topic
	if topic == "" {
		topic = "price.updated"
	}
	return &SyncService{
		repo:      opts.Repository,
		fetcher:   opts.Fetcher,
		symbols:   opts.Symbols,
		sources:   opts.Sources,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		interval:  interval,
		topic:     topic,
	}
}

// Start 启动同步服务：先做一次 Token 发现，执行首个刷新周期（完成即可，
// 不要求成功），然后进入定时调度。重复启动是 no-op，只记一条警告。
// 仓储不可达时快速失败并回到 Stopped。
func (s *SyncService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		logger.Warn(ctx, "price sync service already running, start ignored", "state", s.State().String())
		return nil
	}

	// 仓储探活，连不上存储直接放弃启动
	if _, err := s.repo.LastUpdated(ctx); err != nil {
		s.state.Store(int32(StateStopped))
		return fmt.Errorf("price store unavailable: %w", err)
	}

	s.discoverAndSeed(ctx)
	s.runCycleGuarded(ctx)

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.schedule(s.stopCh, s.doneCh)

	s.state.Store(int32(StateRunning))
	logger.Info(ctx, "price sync service started", "interval", s.interval, "supported_tokens", s.symbols.Size())
	return nil
}

// Stop 停止同步服务：取消定时器并等待在途周期结束。幂等，对已停止的服务是 no-op。
func (s *SyncService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return
	}

	close(s.stopCh)
	<-s.doneCh
	// 等手动触发的在途周期收尾，避免 upsert 写到一半丢资源
	s.cycleWG.Wait()

	s.state.Store(int32(StateStopped))
	logger.Info(context.Background(), "price sync service stopped")
}

// Refresh 手动触发一次刷新周期，受与定时 tick 相同的并发守卫约束。
// 返回值表示本次触发是否真正执行（false 即被在途周期挤掉）。
func (s *SyncService) Refresh(ctx context.Context) (bool, error) {
	if s.State() != StateRunning {
		return false, ErrNotRunning
	}
	return s.runCycleGuarded(ctx), nil
}

// State 当前状态
func (s *SyncService) State() State {
	return State(s.state.Load())
}

// IsRunning 是否处于运行态
func (s *SyncService) IsRunning() bool {
	return s.State() == StateRunning
}

// CyclesCompleted 已完成的刷新周期数
func (s *SyncService) CyclesCompleted() uint64 {
	return s.cyclesCompleted.Load()
}

func (s *SyncService) schedule(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.runCycleGuarded(context.Background())
		}
	}
}

// runCycleGuarded 在并发守卫下执行一个刷新周期；上一周期未结束时直接跳过
func (s *SyncService) runCycleGuarded(ctx context.Context) bool {
	if !s.cycleInProgress.CompareAndSwap(false, true) {
		logger.Warn(ctx, "refresh skipped: previous cycle still in progress")
		if s.metrics != nil {
			s.metrics.SyncCyclesSkipped.Inc()
		}
		return false
	}
	s.cycleWG.Add(1)
	defer func() {
		s.cycleInProgress.Store(false)
		s.cycleWG.Done()
	}()

	s.runCycle(ctx)
	return true
}

// runCycle 一个完整刷新周期：拉取 → 逐条 upsert → 发现新 Token。
// 部分失败不中断周期，失败的 Token 保留上一周期的值。
func (s *SyncService) runCycle(ctx context.Context) {
	start := time.Now()

	tickers := s.fetcher.FetchTickers(ctx, s.symbols.Pairs())
	if s.metrics != nil {
		s.metrics.TickersFetchedTotal.Add(float64(len(tickers)))
	}
	if len(tickers) == 0 {
		logger.Warn(ctx, "no ticker data this cycle")
	}

	updated := 0
	for _, ticker := range tickers {
		token, ok := s.symbols.TokenFor(ticker.Pair)
		if !ok {
			continue
		}
		price := &domain.TokenPrice{
			Token:             token,
			PriceUSDT:         ticker.LastPrice,
			PriceChange24h:    ticker.PriceChangePercent,
			PriceChange24hAbs: ticker.PriceChange,
			Volume24h:         ticker.Volume,
			MarketCap:         ticker.QuoteVolume,
		}
		if err := s.repo.Upsert(ctx, price); err != nil {
			logger.Error(ctx, "failed to upsert token price", "token", token, "error", err)
			continue
		}
		updated++
	}
	if s.metrics != nil {
		s.metrics.PriceUpsertsTotal.Add(float64(updated))
	}

	seeded := s.discoverAndSeed(ctx)

	s.cyclesCompleted.Add(1)
	if s.metrics != nil {
		s.metrics.SyncCyclesTotal.Inc()
		s.metrics.SyncCycleDuration.Observe(time.Since(start).Seconds())
	}

	logger.Info(ctx, "price refresh cycle completed",
		"fetched", len(tickers),
		"updated", updated,
		"seeded", seeded,
		"duration", time.Since(start),
	)

	if updated > 0 {
		s.publishEvent(ctx, PriceUpdatedEvent{
			TickersFetched: len(tickers),
			TokensUpdated:  updated,
			TokensSeeded:   seeded,
			CompletedAt:    time.Now(),
		})
	}
}

// discoverAndSeed 扫描业务表中的 Token，为行情表里还没有的补占位行。
// 单个来源失败只影响自身，补种是 skip-if-exists，不会覆盖真实价格。
func (s *SyncService) discoverAndSeed(ctx context.Context) int {
	discovered := make(map[string]struct{})
	for _, source := range s.sources {
		tokens, err := source.DistinctTokens(ctx)
		if err != nil {
			logger.Warn(ctx, "token source unavailable, skipped", "source", source.Name(), "error", err)
			continue
		}
		for _, token := range tokens {
			token = strings.ToUpper(strings.TrimSpace(token))
			if token == "" {
				continue
			}
			discovered[token] = struct{}{}
		}
	}

	seeded := 0
	for token := range discovered {
		created, err := s.repo.SeedPlaceholder(ctx, token)
		if err != nil {
			logger.Error(ctx, "failed to seed placeholder price", "token", token, "error", err)
			continue
		}
		if created {
			logger.Info(ctx, "new token added to price table", "token", token)
			seeded++
		}
	}
	if s.metrics != nil && seeded > 0 {
		s.metrics.TokensSeededTotal.Add(float64(seeded))
	}
	return seeded
}

// publishEvent 事件发布尽力而为，失败只记日志，绝不影响刷新周期
func (s *SyncService) publishEvent(ctx context.Context, event PriceUpdatedEvent) {
	if s.publisher == nil {
		logger.Debug(ctx, "price.updated event", "tokens_updated", event.TokensUpdated)
		return
	}
	if err := s.publisher.Publish(ctx, s.topic, "price", event); err != nil {
		logger.Warn(ctx, "failed to publish price.updated event", "error", err)
	}
}
