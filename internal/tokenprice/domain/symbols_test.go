package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolTablePairFor(t *testing.T) {
	table := NewSymbolTable(map[string]string{
		"btc": "BTCUSDT",
		"ETH": "ETHUSDT",
	})

	pair, ok := table.PairFor("BTC")
	require.True(t, ok)
	assert.Equal(t, "BTCUSDT", pair)

	// 查询大小写不敏感
	pair, ok = table.PairFor("eth")
	require.True(t, ok)
	assert.Equal(t, "ETHUSDT", pair)

	_, ok = table.PairFor("UNKNOWN")
	assert.False(t, ok)
}

func TestSymbolTableTokenFor(t *testing.T) {
	table := NewSymbolTable(map[string]string{"SOL": "SOLUSDT"})

	token, ok := table.TokenFor("SOLUSDT")
	require.True(t, ok)
	assert.Equal(t, "SOL", token)

	_, ok = table.TokenFor("DOGEUSDT")
	assert.False(t, ok)
}

func TestSymbolTablePairsSorted(t *testing.T) {
	table := NewSymbolTable(map[string]string{
		"SOL": "SOLUSDT",
		"BTC": "BTCUSDT",
		"ETH": "ETHUSDT",
	})

	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}, table.Pairs())
}

func TestDefaultSymbolTable(t *testing.T) {
	table := DefaultSymbolTable()

	assert.Equal(t, 15, table.Size())
	for _, token := range []string{"BTC", "ETH", "SOL", "SUI", "AAVE", "CRV"} {
		_, ok := table.PairFor(token)
		assert.True(t, ok, "expected %s to be supported", token)
	}
}

func TestTokenPricePlaceholder(t *testing.T) {
	p := NewPlaceholder("ARB")

	assert.Equal(t, "ARB", p.Token)
	assert.True(t, PlaceholderPrice.Equal(p.PriceUSDT))
	assert.Nil(t, p.LastUpdated)
	assert.True(t, p.IsPlaceholder())
}
