package ops

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"main/internal/engine"
	"main/internal/risk"
	"main/internal/schema"
	"main/internal/strategy"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Registry RegistryConfig     `json:"registry"`
	Risk     RiskConfig         `json:"risk"`
	Strategy StrategyConfig     `json:"strategy"`
	Features FeatureFlagsConfig `json:"features"`
}

// RegistryConfig defines the two instruments.
type RegistryConfig struct {
	Instruments []InstrumentConfig `json:"instruments"`
}

// InstrumentConfig describes one instrument entry. Role must be
// "reference" or "tradable".
type InstrumentConfig struct {
	Name     string           `json:"name"`
	Role     string           `json:"role"`
	TickSize schema.Price     `json:"tickSize"`
	MinBid   schema.Price     `json:"minBid"`
	MaxAsk   schema.Price     `json:"maxAsk"`
	Scale    schema.ScaleSpec `json:"scale"`
}

// RiskConfig describes the inventory limits.
type RiskConfig struct {
	PositionLimit schema.Quantity `json:"positionLimit"`
	SoftLimit     schema.Quantity `json:"softLimit"`
}

// StrategyConfig describes the quoting variant and its knobs. Fee and
// margin rates are decimal strings so the JSON carries no float noise.
type StrategyConfig struct {
	Kind             string          `json:"kind"`
	LotSize          schema.Quantity `json:"lotSize"`
	TransactionLimit schema.Quantity `json:"transactionLimit"`
	LimitBuffer      schema.Quantity `json:"limitBuffer"`
	TakerFee         string          `json:"takerFee"`
	MakerFee         string          `json:"makerFee"`
	ProfitMargin     string          `json:"profitMargin"`
	GapWindow        int             `json:"gapWindow"`
}

// FeatureFlagsConfig captures optional runtime flags.
type FeatureFlagsConfig struct {
	EnableTrading *bool `json:"enableTrading"`
	EnableHedging *bool `json:"enableHedging"`
}

// FeatureFlags are resolved runtime flags.
type FeatureFlags struct {
	EnableTrading bool
	EnableHedging bool
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Registry *schema.Registry
	Risk     risk.Config
	Strategy strategy.Config
	Engine   engine.Config
	Features FeatureFlags
}

// Load reads a JSON config file and resolves every component config.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	return Resolve(cfg)
}

// Resolve validates a FileConfig and builds the component configs.
func Resolve(cfg FileConfig) (Loaded, error) {
	registry, err := buildRegistry(cfg.Registry)
	if err != nil {
		return Loaded{}, err
	}

	reference, ok := registry.Spec(schema.InstrumentReference)
	if !ok {
		return Loaded{}, fmt.Errorf("no reference instrument configured")
	}
	tradable, ok := registry.Spec(schema.InstrumentTradable)
	if !ok {
		return Loaded{}, fmt.Errorf("no tradable instrument configured")
	}

	features := resolveFeatures(cfg.Features)

	if cfg.Risk.PositionLimit <= 0 {
		return Loaded{}, fmt.Errorf("risk positionLimit must be > 0")
	}
	if cfg.Risk.SoftLimit < 0 || cfg.Risk.SoftLimit > cfg.Risk.PositionLimit {
		return Loaded{}, fmt.Errorf("risk softLimit must be in [0, positionLimit]")
	}
	riskCfg := risk.Config{
		PositionLimit: cfg.Risk.PositionLimit,
		SoftLimit:     cfg.Risk.SoftLimit,
		HedgeBidPrice: reference.MinBidNearestTick(),
		HedgeAskPrice: reference.MaxAskNearestTick(),
		EnableHedging: features.EnableHedging,
	}

	stratCfg, err := resolveStrategy(cfg.Strategy, cfg.Risk, tradable)
	if err != nil {
		return Loaded{}, err
	}

	engineCfg := engine.Config{
		LotSize:       stratCfg.LotSize,
		MinBidPrice:   tradable.MinBidNearestTick(),
		MaxAskPrice:   tradable.MaxAskNearestTick(),
		EnableTrading: features.EnableTrading,
	}

	return Loaded{
		Registry: registry,
		Risk:     riskCfg,
		Strategy: stratCfg,
		Engine:   engineCfg,
		Features: features,
	}, nil
}

// LoadRegistry reads a JSON config file and only builds the registry.
func LoadRegistry(path string) (*schema.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return buildRegistry(cfg.Registry)
}

func buildRegistry(cfg RegistryConfig) (*schema.Registry, error) {
	reg := schema.NewRegistry()
	for _, inst := range cfg.Instruments {
		var tag schema.Instrument
		switch inst.Role {
		case "reference":
			tag = schema.InstrumentReference
		case "tradable":
			tag = schema.InstrumentTradable
		default:
			return nil, fmt.Errorf("invalid instrument role for %s: %q", inst.Name, inst.Role)
		}
		if err := validateScale(inst.Scale); err != nil {
			return nil, fmt.Errorf("invalid scale for %s: %w", inst.Name, err)
		}
		if err := reg.Add(schema.InstrumentSpec{
			Instrument: tag,
			Name:       inst.Name,
			TickSize:   inst.TickSize,
			MinBid:     inst.MinBid,
			MaxAsk:     inst.MaxAsk,
			Scale:      inst.Scale,
		}); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func validateScale(scale schema.ScaleSpec) error {
	if scale.PriceScale < 0 || scale.QuantityScale < 0 || scale.FeeScale < 0 {
		return fmt.Errorf("scale must be >= 0")
	}
	return nil
}

func resolveStrategy(cfg StrategyConfig, riskCfg RiskConfig, tradable schema.InstrumentSpec) (strategy.Config, error) {
	kind, err := strategy.ParseKind(cfg.Kind)
	if err != nil {
		return strategy.Config{}, err
	}
	if cfg.LotSize <= 0 {
		return strategy.Config{}, fmt.Errorf("strategy lotSize must be > 0")
	}

	takerFee, err := parseRate(cfg.TakerFee)
	if err != nil {
		return strategy.Config{}, fmt.Errorf("strategy takerFee: %w", err)
	}
	makerFee, err := parseRate(cfg.MakerFee)
	if err != nil {
		return strategy.Config{}, fmt.Errorf("strategy makerFee: %w", err)
	}
	margin, err := parseRate(cfg.ProfitMargin)
	if err != nil {
		return strategy.Config{}, fmt.Errorf("strategy profitMargin: %w", err)
	}

	transactionLimit := cfg.TransactionLimit
	if transactionLimit <= 0 {
		transactionLimit = cfg.LotSize
	}
	gapWindow := cfg.GapWindow
	if gapWindow <= 0 {
		gapWindow = 30
	}

	return strategy.Config{
		Kind:             kind,
		LotSize:          cfg.LotSize,
		PositionLimit:    riskCfg.PositionLimit,
		LimitBuffer:      cfg.LimitBuffer,
		TransactionLimit: transactionLimit,
		TickSize:         tradable.TickSize,
		MinBidPrice:      tradable.MinBidNearestTick(),
		MaxAskPrice:      tradable.MaxAskNearestTick(),
		TakerFee:         takerFee,
		MakerFee:         makerFee,
		ProfitMargin:     margin,
		GapWindow:        gapWindow,
	}, nil
}

func parseRate(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func resolveFeatures(cfg FeatureFlagsConfig) FeatureFlags {
	flags := FeatureFlags{
		EnableTrading: true,
		EnableHedging: true,
	}
	if cfg.EnableTrading != nil {
		flags.EnableTrading = *cfg.EnableTrading
	}
	if cfg.EnableHedging != nil {
		flags.EnableHedging = *cfg.EnableHedging
	}
	return flags
}
