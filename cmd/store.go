package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/motorscout/deals-cli/internal/config"
	"github.com/motorscout/deals-cli/internal/store"
)

// initStore opens the configured backend and runs migrations.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	return st, nil
}

// loadMarket reads reference market data (base prices, brand tiers, keyword
// lists) from the configured path, falling back to the built-in defaults.
func loadMarket() *config.MarketData {
	if cfg.MarketDataPath == "" {
		return config.DefaultMarketData()
	}

	market, err := config.LoadMarketData(cfg.MarketDataPath)
	if err != nil {
		zap.L().Warn("market data file unreadable, using defaults",
			zap.String("path", cfg.MarketDataPath),
			zap.Error(err),
		)
		return config.DefaultMarketData()
	}
	return market
}
