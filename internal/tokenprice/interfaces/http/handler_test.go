package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/tokenfolio/internal/tokenprice/application"
	"github.com/wyfcoding/tokenfolio/internal/tokenprice/domain"
)

type memRepo struct {
	mu     sync.Mutex
	prices map[string]*domain.TokenPrice
}

func newMemRepo() *memRepo {
	return &memRepo{prices: make(map[string]*domain.TokenPrice)}
}

func (r *memRepo) Upsert(_ context.Context, price *domain.TokenPrice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	p := *price
	p.LastUpdated = &now
	r.prices[p.Token] = &p
	return nil
}

func (r *memRepo) SeedPlaceholder(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prices[token]; ok {
		return false, nil
	}
	r.prices[token] = domain.NewPlaceholder(token)
	return true, nil
}

func (r *memRepo) GetByToken(_ context.Context, token string) (*domain.TokenPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prices[token], nil
}

func (r *memRepo) GetByTokens(_ context.Context, tokens []string) ([]*domain.TokenPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.TokenPrice
	for _, t := range tokens {
		if p, ok := r.prices[strings.ToUpper(t)]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memRepo) GetAll(_ context.Context) ([]*domain.TokenPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.TokenPrice, 0, len(r.prices))
	for _, p := range r.prices {
		out = append(out, p)
	}
	return out, nil
}

func (r *memRepo) LastUpdated(_ context.Context) (*time.Time, error) {
	return nil, nil
}

type staticFetcher struct{}

func (staticFetcher) FetchTickers(_ context.Context, pairs []string) []domain.Ticker {
	var out []domain.Ticker
	for _, pair := range pairs {
		out = append(out, domain.Ticker{
			Pair:               pair,
			LastPrice:          decimal.RequireFromString("50000"),
			PriceChangePercent: decimal.RequireFromString("1.5"),
			PriceChange:        decimal.RequireFromString("750"),
			Volume:             decimal.RequireFromString("1000"),
			QuoteVolume:        decimal.RequireFromString("50000000"),
		})
	}
	return out
}

func setupRouter(t *testing.T, started bool) (*gin.Engine, *application.SyncService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemRepo()
	symbols := domain.NewSymbolTable(map[string]string{"BTC": "BTCUSDT"})
	syncSvc := application.NewSyncService(application.SyncServiceOptions{
		Repository: repo,
		Fetcher:    staticFetcher{},
		Symbols:    symbols,
		Interval:   time.Hour,
	})
	if started {
		require.NoError(t, syncSvc.Start(context.Background()))
		t.Cleanup(syncSvc.Stop)
	}

	router := gin.New()
	handler := NewTokenPriceHandler(application.NewQueryService(repo, symbols, syncSvc), syncSvc)
	handler.RegisterRoutes(router.Group("/api"))
	return router, syncSvc
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetPriceEndpoint(t *testing.T) {
	router, _ := setupRouter(t, true)

	w := doRequest(router, http.MethodGet, "/api/v1/price/btc", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Token     string `json:"token"`
			PriceUSDT string `json:"price_usdt"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "BTC", resp.Data.Token)
	assert.Equal(t, "50000", resp.Data.PriceUSDT)
}

func TestGetPriceNotFound(t *testing.T) {
	router, _ := setupRouter(t, true)

	w := doRequest(router, http.MethodGet, "/api/v1/price/DOGE", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestPriceEndpointsUnavailableWhenNotRunning(t *testing.T) {
	router, _ := setupRouter(t, false)

	for _, tc := range []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/v1/price", ""},
		{http.MethodGet, "/api/v1/price/BTC", ""},
		{http.MethodPost, "/api/v1/price/batch", `{"tokens":["BTC"]}`},
		{http.MethodPost, "/api/v1/price/refresh", ""},
	} {
		w := doRequest(router, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestBatchPricesEndpoint(t *testing.T) {
	router, _ := setupRouter(t, true)

	w := doRequest(router, http.MethodPost, "/api/v1/price/batch", `{"tokens":["BTC","MISSING"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Count   int               `json:"count"`
		Data    []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
}

func TestBatchPricesValidation(t *testing.T) {
	router, _ := setupRouter(t, true)

	w := doRequest(router, http.MethodPost, "/api/v1/price/batch", `{"tokens":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	tokens := make([]string, 101)
	for i := range tokens {
		tokens[i] = "T"
	}
	body, _ := json.Marshal(map[string][]string{"tokens": tokens})
	w = doRequest(router, http.MethodPost, "/api/v1/price/batch", string(body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshEndpoint(t *testing.T) {
	router, syncSvc := setupRouter(t, true)
	before := syncSvc.CyclesCompleted()

	w := doRequest(router, http.MethodPost, "/api/v1/price/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "price refresh completed")
	assert.Equal(t, before+1, syncSvc.CyclesCompleted())
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupRouter(t, true)

	w := doRequest(router, http.MethodGet, "/api/v1/price/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			ServiceStatus        string `json:"service_status"`
			SupportedTokensCount int    `json:"supported_tokens_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "running", resp.Data.ServiceStatus)
	assert.Equal(t, 1, resp.Data.SupportedTokensCount)
}
