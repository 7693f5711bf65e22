// Package config provides configuration management for the Apex wagering engine.
package config

// Config represents the complete application configuration. Components take
// the sections they need as immutable values; defaults match the documented
// track-tested thresholds.
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Simulation SimulationConfig `mapstructure:"simulation" validate:"required"`
	Tiers      TierConfig       `mapstructure:"tiers" validate:"required"`
	Chaos      ChaosConfig      `mapstructure:"chaos" validate:"required"`
	Single     SingleConfig     `mapstructure:"single" validate:"required"`
	Vertical   VerticalConfig   `mapstructure:"vertical" validate:"required"`
	Horizontal HorizontalConfig `mapstructure:"horizontal" validate:"required"`
	Schema     SchemaConfig     `mapstructure:"schema" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Watch      WatchConfig      `mapstructure:"watch"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// SimulationConfig configures the Monte Carlo race simulator
type SimulationConfig struct {
	Trials int    `mapstructure:"trials" validate:"required,gt=0"`
	Seed   int64  `mapstructure:"seed" validate:"gte=0"`
	Policy string `mapstructure:"policy" validate:"required,simpolicy"`
}

// TierConfig holds the tier A/B assignment thresholds
type TierConfig struct {
	AProbMin     float64 `mapstructure:"a_prob_min" validate:"required,gt=0,lte=1"`
	BProbMin     float64 `mapstructure:"b_prob_min" validate:"required,gt=0,lte=1"`
	BRatingDelta float64 `mapstructure:"b_rating_delta" validate:"required,gt=0"`
}

// ChaosConfig holds both chaos rule sets. The primary rule applies when
// adversity columns were resolved in the input; the fallback otherwise.
type ChaosConfig struct {
	TopProbMax              float64 `mapstructure:"top_prob_max" validate:"required,gt=0,lte=1"`
	SpreadMax               float64 `mapstructure:"spread_max" validate:"required,gt=0"`
	AdversityMin            int     `mapstructure:"adversity_min" validate:"required,gt=0"`
	FallbackTopProbMax      float64 `mapstructure:"fallback_top_prob_max" validate:"required,gt=0,lte=1"`
	FallbackLongshotProbMax float64 `mapstructure:"fallback_longshot_prob_max" validate:"required,gt=0,lte=1"`
	FallbackSpreadMax       float64 `mapstructure:"fallback_spread_max" validate:"required,gt=0"`
}

// SingleConfig holds the single-favorite detection thresholds
type SingleConfig struct {
	ProbMin   float64 `mapstructure:"prob_min" validate:"required,gt=0,lte=1"`
	RatingGap float64 `mapstructure:"rating_gap" validate:"required,gt=0"`
}

// VerticalBetConfig configures one vertical bet type
type VerticalBetConfig struct {
	Unit          float64 `mapstructure:"unit" validate:"required,gt=0"`
	MaxTickets    int     `mapstructure:"max_tickets" validate:"required,gt=0"`
	AnchorSize    int     `mapstructure:"anchor_size" validate:"required,gt=0"`
	InclusionSize int     `mapstructure:"inclusion_size" validate:"required,gt=0"`
	RatingWeight  float64 `mapstructure:"rating_weight" validate:"required,gt=0,lt=1"`
	ProbWeight    float64 `mapstructure:"prob_weight" validate:"required,gt=0,lt=1"`
}

// VerticalConfig configures the vertical ticket builder
type VerticalConfig struct {
	Exacta   VerticalBetConfig `mapstructure:"exacta" validate:"required"`
	Trifecta VerticalBetConfig `mapstructure:"trifecta" validate:"required"`
	Super    VerticalBetConfig `mapstructure:"super" validate:"required"`
}

// HorizontalBetConfig configures one horizontal sequence type
type HorizontalBetConfig struct {
	Name       string  `mapstructure:"name" validate:"required"`
	Legs       int     `mapstructure:"legs" validate:"required,gte=2,lte=6"`
	MinUnit    float64 `mapstructure:"min_unit" validate:"required,gt=0"`
	Allocation float64 `mapstructure:"allocation" validate:"required,gt=0,lte=1"`
	HardCap    float64 `mapstructure:"hard_cap" validate:"required,gt=0"`
	MinPerLeg  int     `mapstructure:"min_per_leg" validate:"required,gte=1"`
}

// HorizontalConfig configures bankroll allocation and sequence construction
type HorizontalConfig struct {
	BaseBankroll     float64               `mapstructure:"base_bankroll" validate:"required,gt=0"`
	StrongLegProbMin float64               `mapstructure:"strong_leg_prob_min" validate:"required,gt=0,lte=1"`
	MaxPerLeg        int                   `mapstructure:"max_per_leg" validate:"required,gt=0"`
	MaxPerLegChaos   int                   `mapstructure:"max_per_leg_chaos" validate:"required,gt=0"`
	Bets             []HorizontalBetConfig `mapstructure:"bets" validate:"required,min=1,dive"`
}

// SchemaConfig lists the column aliases probed against the input snapshot
type SchemaConfig struct {
	RatingAliases      []string `mapstructure:"rating_aliases" validate:"required,min=1"`
	ProbabilityAliases []string `mapstructure:"probability_aliases" validate:"required,min=1"`
	AdversityColumns   []string `mapstructure:"adversity_columns"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// WatchConfig configures the scheduled race-day watch mode
type WatchConfig struct {
	Input           string `mapstructure:"input"`
	OutputDir       string `mapstructure:"output_dir"`
	Schedule        string `mapstructure:"schedule"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"omitempty,gt=0"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Default returns the full configuration with documented defaults. The
// thresholds, units, allocations and caps mirror the calibrated Apex values.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:        "apex",
			Environment: "development",
			LogLevel:    "info",
		},
		Simulation: SimulationConfig{
			Trials: 5000,
			Seed:   0,
			Policy: "noise",
		},
		Tiers: TierConfig{
			AProbMin:     0.28,
			BProbMin:     0.16,
			BRatingDelta: 8.0,
		},
		Chaos: ChaosConfig{
			TopProbMax:              0.22,
			SpreadMax:               3.0,
			AdversityMin:            2,
			FallbackTopProbMax:      0.27,
			FallbackLongshotProbMax: 0.20,
			FallbackSpreadMax:       3.0,
		},
		Single: SingleConfig{
			ProbMin:   0.34,
			RatingGap: 3.0,
		},
		Vertical: VerticalConfig{
			Exacta: VerticalBetConfig{
				Unit: 2.00, MaxTickets: 24, AnchorSize: 2, InclusionSize: 5,
				RatingWeight: 0.70, ProbWeight: 0.30,
			},
			Trifecta: VerticalBetConfig{
				Unit: 2.00, MaxTickets: 24, AnchorSize: 2, InclusionSize: 6,
				RatingWeight: 0.65, ProbWeight: 0.35,
			},
			Super: VerticalBetConfig{
				Unit: 0.20, MaxTickets: 60, AnchorSize: 2, InclusionSize: 7,
				RatingWeight: 0.60, ProbWeight: 0.40,
			},
		},
		Horizontal: HorizontalConfig{
			BaseBankroll:     500.0,
			StrongLegProbMin: 0.34,
			MaxPerLeg:        4,
			MaxPerLegChaos:   6,
			Bets: []HorizontalBetConfig{
				{Name: "Daily Double", Legs: 2, MinUnit: 2.00, Allocation: 0.25, HardCap: 100.0, MinPerLeg: 2},
				{Name: "Pick 3", Legs: 3, MinUnit: 0.20, Allocation: 0.20, HardCap: 80.0, MinPerLeg: 1},
				{Name: "Pick 4", Legs: 4, MinUnit: 0.20, Allocation: 0.25, HardCap: 150.0, MinPerLeg: 1},
				{Name: "Pick 5", Legs: 5, MinUnit: 0.20, Allocation: 0.20, HardCap: 200.0, MinPerLeg: 1},
				{Name: "Pick 6", Legs: 6, MinUnit: 0.20, Allocation: 0.10, HardCap: 300.0, MinPerLeg: 1},
			},
		},
		Schema: SchemaConfig{
			RatingAliases: []string{
				"CPR_Total", "CPR_Composite", "CPR_Total_Score",
				"CPR_Composite_x", "CPR_Composite_y", "CPR_Cleaned",
				"cpr_total", "cpr_composite",
			},
			ProbabilityAliases: []string{
				"MC_WinProb", "mc_winprob", "MC_WinPct", "mc_winpct",
			},
			AdversityColumns: []string{
				"rct91_of_s", "rct91_al_s", "rctty_s", "rctly_s",
				"rca91_of_s", "rca91_al_s", "rcaty_s", "rcaly_s",
				"cpr_break", "cpr_pace_l", "cpr_off",
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Watch: WatchConfig{
			Input:           "apex_output_with_mc.csv",
			OutputDir:       "./output",
			Schedule:        "@every 5m",
			CacheTTLSeconds: 3600,
		},
	}
}
