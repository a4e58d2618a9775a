package fallback

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinGeckoSpotPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		fmt.Fprint(w, `{"bitcoin":{"usd":50000.5,"usd_24h_change":-2.31}}`)
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, time.Second)
	data, err := client.SpotPrice(context.Background(), "BTC")

	require.NoError(t, err)
	assert.Equal(t, "50000.5", data.CurrentPrice.String())
	assert.Equal(t, "-2.31", data.PriceChange24h.String())
	assert.False(t, data.LastUpdated.IsZero())
}

func TestCoinGeckoSpotPriceUnknownSymbol(t *testing.T) {
	client := NewCoinGeckoClient("http://unused", time.Second)

	_, err := client.SpotPrice(context.Background(), "NOTACOIN")
	assert.Error(t, err)
}

func TestCoinGeckoSpotPriceUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, time.Second)
	_, err := client.SpotPrice(context.Background(), "ETH")
	assert.Error(t, err)
}
