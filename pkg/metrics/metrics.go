// Package metrics 提供 Prometheus 指标定义与暴露
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/tokenfolio/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 行情刷新周期计数
	SyncCyclesTotal prometheus.Counter
	// 因上一周期未结束被跳过的刷新计数
	SyncCyclesSkipped prometheus.Counter
	// 刷新周期耗时
	SyncCycleDuration prometheus.Histogram
	// 拉取到的 ticker 总数
	TickersFetchedTotal prometheus.Counter
	// 拉取失败的批次计数
	FetchBatchErrorsTotal prometheus.Counter
	// 行情表 upsert 行数
	PriceUpsertsTotal prometheus.Counter
	// 发现并补种的新 Token 数
	TokensSeededTotal prometheus.Counter
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenfolio",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tokenfolio",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SyncCyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokenfolio",
			Subsystem: serviceName,
			Name:      "sync_cycles_total",
			Help:      "Total completed price refresh cycles",
		}),
		SyncCyclesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokenfolio",
			Subsystem: serviceName,
			Name:      "sync_cycles_skipped_total",
			Help:      "Refresh ticks skipped because the previous cycle was still running",
		}),
		SyncCycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tokenfolio",
			Subsystem: serviceName,
			Name:      "sync_cycle_duration_seconds",
			Help:      "Price refresh cycle duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		TickersFetchedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokenfolio",
			Subsystem: serviceName,
			Name:      "tickers_fetched_total",
			Help:      "Total ticker records fetched from the exchange API",
		}),
		FetchBatchErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokenfolio",
			Subsystem: serviceName,
			Name:      "fetch_batch_errors_total",
			Help:      "Ticker batches that failed or timed out",
		}),
		PriceUpsertsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokenfolio",
			Subsystem: serviceName,
			Name:      "price_upserts_total",
			Help:      "Rows upserted into the token_market table",
		}),
		TokensSeededTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokenfolio",
			Subsystem: serviceName,
			Name:      "tokens_seeded_total",
			Help:      "Newly discovered tokens seeded with a placeholder price",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SyncCyclesTotal,
		m.SyncCyclesSkipped,
		m.SyncCycleDuration,
		m.TickersFetchedTotal,
		m.FetchBatchErrorsTotal,
		m.PriceUpsertsTotal,
		m.TokensSeededTotal,
	}

	for _, c := range collectors {
		if err := prometheus.DefaultRegisterer.Register(c); err != nil {
			logger.Error(context.Background(), "failed to register metric", "error", err)
			return err
		}
	}
	return nil
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "starting metrics server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error(context.Background(), "metrics server exited", "error", err)
		}
	}()
}
