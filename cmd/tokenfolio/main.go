package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	airdropapp "github.com/wyfcoding/tokenfolio/internal/airdrop/application"
	airdropdomain "github.com/wyfcoding/tokenfolio/internal/airdrop/domain"
	airdropmysql "github.com/wyfcoding/tokenfolio/internal/airdrop/infrastructure/persistence/mysql"
	airdrophttp "github.com/wyfcoding/tokenfolio/internal/airdrop/interfaces/http"
	defiapp "github.com/wyfcoding/tokenfolio/internal/defi/application"
	defidomain "github.com/wyfcoding/tokenfolio/internal/defi/domain"
	defimysql "github.com/wyfcoding/tokenfolio/internal/defi/infrastructure/persistence/mysql"
	defihttp "github.com/wyfcoding/tokenfolio/internal/defi/interfaces/http"
	"github.com/wyfcoding/tokenfolio/internal/fallback"
	positionapp "github.com/wyfcoding/tokenfolio/internal/position/application"
	positiondomain "github.com/wyfcoding/tokenfolio/internal/position/domain"
	positionmysql "github.com/wyfcoding/tokenfolio/internal/position/infrastructure/persistence/mysql"
	positionhttp "github.com/wyfcoding/tokenfolio/internal/position/interfaces/http"
	"github.com/wyfcoding/tokenfolio/internal/tokenprice/application"
	"github.com/wyfcoding/tokenfolio/internal/tokenprice/domain"
	"github.com/wyfcoding/tokenfolio/internal/tokenprice/infrastructure/binance"
	"github.com/wyfcoding/tokenfolio/internal/tokenprice/infrastructure/persistence"
	pricemysql "github.com/wyfcoding/tokenfolio/internal/tokenprice/infrastructure/persistence/mysql"
	priceredis "github.com/wyfcoding/tokenfolio/internal/tokenprice/infrastructure/persistence/redis"
	pricehttp "github.com/wyfcoding/tokenfolio/internal/tokenprice/interfaces/http"
	"github.com/wyfcoding/tokenfolio/pkg/cache"
	"github.com/wyfcoding/tokenfolio/pkg/config"
	"github.com/wyfcoding/tokenfolio/pkg/db"
	"github.com/wyfcoding/tokenfolio/pkg/logger"
	"github.com/wyfcoding/tokenfolio/pkg/metrics"
	"github.com/wyfcoding/tokenfolio/pkg/mq"
)

// kafkaEventPublisher 将 Kafka 生产者适配为领域事件发布接口
type kafkaEventPublisher struct {
	producer *mq.KafkaProducer
}

func (p *kafkaEventPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	return p.producer.SendMessage(ctx, topic, key, event)
}

func main() {
	configPath := flag.String("config", "configs/config.toml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "服务启动中", "service", cfg.ServiceName, "environment", cfg.Environment)

	// 指标
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.ServiceName)
		if err := m.Register(); err != nil {
			logger.Fatal(ctx, "注册指标失败", "error", err)
		}
		go metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// 数据库
	database, err := db.Init(db.Config{
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "数据库初始化失败", "error", err)
	}
	defer database.Close()

	// 开发环境自动建表
	if cfg.Environment == "dev" {
		if err := database.AutoMigrate(
			&pricemysql.TokenPriceModel{},
			&positiondomain.PositionOperation{},
			&defidomain.DefiOperation{},
			&airdropdomain.AirdropParticipation{},
		); err != nil {
			logger.Fatal(ctx, "自动建表失败", "error", err)
		}
	}

	// 行情仓储，配置了 Redis 时走读缓存组合仓储
	var priceRepo domain.TokenPriceRepository = pricemysql.NewTokenPriceRepository(database.DB)
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled() {
		redisCache, err = cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Fatal(ctx, "Redis 初始化失败", "error", err)
		}
		defer redisCache.Close()
		priceRepo = persistence.NewCompositeTokenPriceRepository(
			priceRepo, priceredis.NewTokenPriceRedisRepository(redisCache.GetClient()))
	}

	// Kafka 事件发布（可选）
	var publisher domain.EventPublisher
	if cfg.Kafka.Enabled() {
		producer := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		defer producer.Close()
		publisher = &kafkaEventPublisher{producer: producer}
	}

	// 业务表仓储，同时作为行情发现的 Token 来源
	positionRepo := positionmysql.NewPositionRepository(database.DB)
	defiRepo := defimysql.NewDefiRepository(database.DB)
	airdropRepo := airdropmysql.NewAirdropRepository(database.DB)

	// 行情同步
	fetcher := binance.NewClient(
		binance.WithBaseURL(cfg.PriceSync.BinanceBaseURL),
		binance.WithBatchSize(cfg.PriceSync.BatchSize),
		binance.WithBatchDelay(time.Duration(cfg.PriceSync.BatchDelay)*time.Millisecond),
		binance.WithRequestTimeout(time.Duration(cfg.PriceSync.RequestTimeout)*time.Second),
		binance.WithMetrics(m),
	)
	symbols := domain.DefaultSymbolTable()
	syncService := application.NewSyncService(application.SyncServiceOptions{
		Repository: priceRepo,
		Fetcher:    fetcher,
		Symbols:    symbols,
		Sources:    []domain.TokenSource{positionRepo, defiRepo, airdropRepo},
		Publisher:  publisher,
		Metrics:    m,
		Interval:   time.Duration(cfg.PriceSync.Interval) * time.Second,
		Topic:      cfg.Kafka.Topic,
	})
	queryService := application.NewQueryService(priceRepo, symbols, syncService)

	// 备用行情源
	coingecko := fallback.NewCoinGeckoClient(
		cfg.Fallback.CoinGeckoBaseURL,
		time.Duration(cfg.Fallback.RequestTimeout)*time.Second,
	)
	priceCache := fallback.NewPriceCache(coingecko, time.Duration(cfg.Fallback.CacheTTL)*time.Second)

	// 业务服务
	positionService := positionapp.NewPositionService(positionRepo, priceCache)
	defiService := defiapp.NewDefiService(defiRepo)
	airdropService := airdropapp.NewAirdropService(airdropRepo)

	// HTTP 路由
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if m != nil {
		router.Use(metricsMiddleware(m))
	}
	api := router.Group("/api")
	pricehttp.NewTokenPriceHandler(queryService, syncService).RegisterRoutes(api)
	positionhttp.NewPositionHandler(positionService).RegisterRoutes(api)
	defihttp.NewDefiHandler(defiService).RegisterRoutes(api)
	airdrophttp.NewAirdropHandler(airdropService).RegisterRoutes(api)

	// 启动同步调度，失败时服务继续运行，行情接口返回 503
	if err := syncService.Start(ctx); err != nil {
		logger.Error(ctx, "行情同步启动失败，行情接口暂不可用", "error", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(ctx, "HTTP 服务启动", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			logger.Info(ctx, "收到退出信号", "signal", sig.String())
		case <-gctx.Done():
			return gctx.Err()
		}

		syncService.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(ctx, "服务异常退出", "error", err)
		os.Exit(1)
	}
	logger.Info(ctx, "服务已退出")
}

// metricsMiddleware 记录 HTTP 请求量与耗时
func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := fmt.Sprintf("%d", c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.Observe(time.Since(start).Seconds())
	}
}
