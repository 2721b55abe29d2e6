// Package config loads and validates application configuration.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store          StoreConfig     `yaml:"store" mapstructure:"store"`
	Log            LogConfig       `yaml:"log" mapstructure:"log"`
	Segment        SegmentConfig   `yaml:"segment" mapstructure:"segment"`
	Valuation      ValuationConfig `yaml:"valuation" mapstructure:"valuation"`
	Deal           DealConfig      `yaml:"deal" mapstructure:"deal"`
	Liquidity      LiquidityConfig `yaml:"liquidity" mapstructure:"liquidity"`
	Risk           RiskConfig      `yaml:"risk" mapstructure:"risk"`
	Batch          BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Alert          AlertConfig     `yaml:"alert" mapstructure:"alert"`
	Inspector      InspectorConfig `yaml:"inspector" mapstructure:"inspector"`
	Server         ServerConfig    `yaml:"server" mapstructure:"server"`
	MarketDataPath string          `yaml:"market_data_path" mapstructure:"market_data_path"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite or postgres
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SegmentConfig configures market-segment statistics.
type SegmentConfig struct {
	MinPrice            float64 `yaml:"min_price" mapstructure:"min_price"`
	MaxPrice            float64 `yaml:"max_price" mapstructure:"max_price"`
	RecentYearWindow    int     `yaml:"recent_year_window" mapstructure:"recent_year_window"`
	RecentMinPrice      float64 `yaml:"recent_min_price" mapstructure:"recent_min_price"`
	MinSpecificSamples  int     `yaml:"min_specific_samples" mapstructure:"min_specific_samples"`
	MinBroadSamples     int     `yaml:"min_broad_samples" mapstructure:"min_broad_samples"`
	MaxSamples          int     `yaml:"max_samples" mapstructure:"max_samples"`
	DemoMaxMileage      int     `yaml:"demo_max_mileage" mapstructure:"demo_max_mileage"`
	BenchmarkPercentile float64 `yaml:"benchmark_percentile" mapstructure:"benchmark_percentile"`
	BenchmarkCapRatio   float64 `yaml:"benchmark_cap_ratio" mapstructure:"benchmark_cap_ratio"`
	BenchmarkCapMinAge  int     `yaml:"benchmark_cap_min_age" mapstructure:"benchmark_cap_min_age"`
	// ReferenceYear anchors all age computations; 0 means the current year.
	ReferenceYear int `yaml:"reference_year" mapstructure:"reference_year"`
}

// ValuationConfig configures the correction pipeline.
type ValuationConfig struct {
	OldAgeYears           int     `yaml:"old_age_years" mapstructure:"old_age_years"`
	MileagePenaltyPer10K  float64 `yaml:"mileage_penalty_per_10k" mapstructure:"mileage_penalty_per_10k"`
	FarOutsideKm          int     `yaml:"far_outside_km" mapstructure:"far_outside_km"`
	FarOutsideFactor      float64 `yaml:"far_outside_factor" mapstructure:"far_outside_factor"`
	MaxMileagePenalty     float64 `yaml:"max_mileage_penalty" mapstructure:"max_mileage_penalty"`
	LowMileageBonusPer10K float64 `yaml:"low_mileage_bonus_per_10k" mapstructure:"low_mileage_bonus_per_10k"`
	MaxLowMileageBonus    float64 `yaml:"max_low_mileage_bonus" mapstructure:"max_low_mileage_bonus"`
	EquipFullBonus        float64 `yaml:"equip_full_bonus" mapstructure:"equip_full_bonus"`
	EquipMediumBonus      float64 `yaml:"equip_medium_bonus" mapstructure:"equip_medium_bonus"`
	PreServiceDiscount    float64 `yaml:"pre_service_discount" mapstructure:"pre_service_discount"`
	PreServiceWindowKm    int     `yaml:"pre_service_window_km" mapstructure:"pre_service_window_km"`
	WeakEnginePenalty     float64 `yaml:"weak_engine_penalty" mapstructure:"weak_engine_penalty"`
	NextYearClampTrigger  float64 `yaml:"next_year_clamp_trigger" mapstructure:"next_year_clamp_trigger"`
	NextYearClampTo       float64 `yaml:"next_year_clamp_to" mapstructure:"next_year_clamp_to"`
	FloorFraction         float64 `yaml:"floor_fraction" mapstructure:"floor_fraction"`
	TerminalFloorFraction float64 `yaml:"terminal_floor_fraction" mapstructure:"terminal_floor_fraction"`
	TerminalValueFraction float64 `yaml:"terminal_value_fraction" mapstructure:"terminal_value_fraction"`
	ScamDiscountThreshold float64 `yaml:"scam_discount_threshold" mapstructure:"scam_discount_threshold"`
	ScamPriceRatio        float64 `yaml:"scam_price_ratio" mapstructure:"scam_price_ratio"`
}

// DealThreshold is one row of the ordered deal-class table.
type DealThreshold struct {
	Class       string  `yaml:"class" mapstructure:"class"`
	MinDiscount float64 `yaml:"min_discount" mapstructure:"min_discount"`
	Score       float64 `yaml:"score" mapstructure:"score"`
}

// DealConfig configures deal classification. Thresholds are evaluated in
// order from the highest discount downward.
type DealConfig struct {
	Thresholds []DealThreshold `yaml:"thresholds" mapstructure:"thresholds"`
}

// LiquidityConfig configures the liquidity score.
type LiquidityConfig struct {
	FastBrandBase    float64 `yaml:"fast_brand_base" mapstructure:"fast_brand_base"`
	MainstreamBase   float64 `yaml:"mainstream_base" mapstructure:"mainstream_base"`
	PremiumBase      float64 `yaml:"premium_base" mapstructure:"premium_base"`
	DiscountFactor   float64 `yaml:"discount_factor" mapstructure:"discount_factor"`
	MaxDiscountBoost float64 `yaml:"max_discount_boost" mapstructure:"max_discount_boost"`
}

// RiskConfig configures the additive risk point system.
type RiskConfig struct {
	MissingVINPoints    float64 `yaml:"missing_vin_points" mapstructure:"missing_vin_points"`
	CheapPricePoints    float64 `yaml:"cheap_price_points" mapstructure:"cheap_price_points"`
	CheapPriceRatio     float64 `yaml:"cheap_price_ratio" mapstructure:"cheap_price_ratio"`
	NoHistoryPoints     float64 `yaml:"no_history_points" mapstructure:"no_history_points"`
	NoHistoryMaxMileage int     `yaml:"no_history_max_mileage" mapstructure:"no_history_max_mileage"`
	NoHistoryMinAge     int     `yaml:"no_history_min_age" mapstructure:"no_history_min_age"`
	HiddenSellerPoints  float64 `yaml:"hidden_seller_points" mapstructure:"hidden_seller_points"`
}

// BatchConfig configures phase-2 parallelism.
type BatchConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// AlertConfig configures golden-deal notifications.
type AlertConfig struct {
	Enabled       bool   `yaml:"enabled" mapstructure:"enabled"`
	TelegramToken string `yaml:"telegram_token" mapstructure:"telegram_token"`
	TelegramChat  string `yaml:"telegram_chat" mapstructure:"telegram_chat"`
}

// InspectorConfig configures the optional LLM deal inspection.
type InspectorConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	Model    string `yaml:"model" mapstructure:"model"`
	MaxDeals int    `yaml:"max_deals" mapstructure:"max_deals"`
}

// ServerConfig configures the read-only results API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DEALS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "deals.sqlite")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.workers", 8)
	v.SetDefault("inspector.model", "claude-haiku-4-5-20251001")
	v.SetDefault("inspector.max_deals", 5)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	applyEngineDefaults(&cfg)

	return &cfg, nil
}

// applyEngineDefaults fills zero-valued engine sections so a bare config file
// still yields a working scorer.
func applyEngineDefaults(cfg *Config) {
	if cfg.Segment.MaxPrice == 0 {
		cfg.Segment = DefaultSegment(cfg.Segment.ReferenceYear)
	}
	if cfg.Valuation.FloorFraction == 0 {
		cfg.Valuation = DefaultValuation()
	}
	if len(cfg.Deal.Thresholds) == 0 {
		cfg.Deal = DefaultDeal()
	}
	if cfg.Liquidity.FastBrandBase == 0 {
		cfg.Liquidity = DefaultLiquidity()
	}
	if cfg.Risk.MissingVINPoints == 0 {
		cfg.Risk = DefaultRisk()
	}
}

// DefaultSegment returns segmenter defaults anchored at the given reference
// year (0 means the pipeline substitutes the current year).
func DefaultSegment(referenceYear int) SegmentConfig {
	return SegmentConfig{
		MinPrice:            500,
		MaxPrice:            100_000,
		RecentYearWindow:    8,
		RecentMinPrice:      2_500,
		MinSpecificSamples:  3,
		MinBroadSamples:     3,
		MaxSamples:          100,
		DemoMaxMileage:      5_000,
		BenchmarkPercentile: 0.90,
		BenchmarkCapRatio:   0.70,
		BenchmarkCapMinAge:  3,
		ReferenceYear:       referenceYear,
	}
}

// DefaultValuation returns the canonical correction-pipeline parameters.
func DefaultValuation() ValuationConfig {
	return ValuationConfig{
		OldAgeYears:           12,
		MileagePenaltyPer10K:  0.025,
		FarOutsideKm:          50_000,
		FarOutsideFactor:      1.5,
		MaxMileagePenalty:     0.40,
		LowMileageBonusPer10K: 0.015,
		MaxLowMileageBonus:    0.15,
		EquipFullBonus:        0.12,
		EquipMediumBonus:      0.05,
		PreServiceDiscount:    0.03,
		PreServiceWindowKm:    15_000,
		WeakEnginePenalty:     0.04,
		NextYearClampTrigger:  1.10,
		NextYearClampTo:       1.05,
		FloorFraction:         0.40,
		TerminalFloorFraction: 0.25,
		TerminalValueFraction: 0.35,
		ScamDiscountThreshold: 30,
		ScamPriceRatio:        0.50,
	}
}

// DefaultDeal returns the 12/6 threshold table. The source history also
// carried a stricter 15/8 variant; 12/6 is the documented default here.
func DefaultDeal() DealConfig {
	return DealConfig{
		Thresholds: []DealThreshold{
			{Class: "golden", MinDiscount: 12, Score: 95},
			{Class: "good", MinDiscount: 6, Score: 75},
			{Class: "fair", MinDiscount: 0, Score: 50},
		},
	}
}

// DefaultLiquidity returns liquidity scoring defaults.
func DefaultLiquidity() LiquidityConfig {
	return LiquidityConfig{
		FastBrandBase:    55,
		MainstreamBase:   45,
		PremiumBase:      40,
		DiscountFactor:   1.5,
		MaxDiscountBoost: 30,
	}
}

// DefaultRisk returns risk scoring defaults.
func DefaultRisk() RiskConfig {
	return RiskConfig{
		MissingVINPoints:    25,
		CheapPricePoints:    30,
		CheapPriceRatio:     0.65,
		NoHistoryPoints:     20,
		NoHistoryMaxMileage: 80_000,
		NoHistoryMinAge:     10,
		HiddenSellerPoints:  25,
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
