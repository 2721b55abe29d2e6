package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMarketData(t *testing.T) {
	md := DefaultMarketData()

	assert.NotEmpty(t, md.DisqualifyKeywords)
	assert.Contains(t, md.DisqualifyKeywords, "havarovane")
	assert.Contains(t, md.DisqualifyKeywords, "salvage")
	assert.Contains(t, md.PremiumBrands, "BMW")
	assert.Contains(t, md.FastBrands, "Škoda")
	assert.Equal(t, 26000.0, md.BasePrices["Škoda"]["Octavia"])
}

func TestLoadMarketDataMissingPathFallsBack(t *testing.T) {
	md, err := LoadMarketData("")
	require.NoError(t, err)
	assert.NotEmpty(t, md.DisqualifyKeywords)

	md, err = LoadMarketData(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, md.DisqualifyKeywords)
}

func TestLoadMarketDataFromFile(t *testing.T) {
	yaml := `
version: 2
premium_brands: [BMW, Audi]
base_prices:
  Dacia:
    Sandero: 12000
`
	path := filepath.Join(t.TempDir(), "market.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	md, err := LoadMarketData(path)
	require.NoError(t, err)

	assert.Equal(t, 2, md.Version)
	assert.Equal(t, []string{"BMW", "Audi"}, md.PremiumBrands)
	assert.Equal(t, 12000.0, md.BasePrices["Dacia"]["Sandero"])

	// Empty keyword list in the file keeps the built-in disqualifiers.
	assert.NotEmpty(t, md.DisqualifyKeywords)
}

func TestLoadMarketDataRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_prices: [oops"), 0o644))

	_, err := LoadMarketData(path)
	require.Error(t, err)
}
