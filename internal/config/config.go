package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	claims "uppf-claims/internal/claims/domain"
	reconciliation "uppf-claims/internal/reconciliation/domain"
	route "uppf-claims/internal/route/domain"
	settlement "uppf-claims/internal/settlement/domain"
	trace "uppf-claims/internal/trace/domain"
)

// Config is the service configuration and the business policy.
type Config struct {
	HTTPAddr    string         `yaml:"http_addr"`
	DatabaseURL string         `yaml:"database_url"`
	LogMode     string         `yaml:"log_mode"`
	Schedule    ScheduleConfig `yaml:"schedule"`
	Policy      Policy         `yaml:"policy"`
}

// ScheduleConfig drives the recurring claim job and the outbox relay.
type ScheduleConfig struct {
	DailyAt      string        `yaml:"daily_at"`
	Interval     time.Duration `yaml:"interval"`
	Workers      int           `yaml:"workers"`
	BatchLimit   int           `yaml:"batch_limit"`
	OutboxRelay  time.Duration `yaml:"outbox_relay"`
	OutboxBatch  int           `yaml:"outbox_batch"`
	AutoSubmit   bool          `yaml:"auto_submit"`
	MetricsEvery time.Duration `yaml:"metrics_every"`
}

// Policy gathers every business constant of the engine.
type Policy struct {
	Route          route.Policy             `yaml:"route"`
	Live           trace.LivePolicy         `yaml:"live"`
	Reconciliation reconciliation.Policy    `yaml:"reconciliation"`
	Claims         claims.Policy            `yaml:"claims"`
	Settlement     settlement.Policy        `yaml:"settlement"`
	Tariffs        claims.Tariffs           `yaml:"tariffs"`
	Tolerance      ToleranceConfig          `yaml:"tolerance"`
	Routes         map[string]RouteOverride `yaml:"routes"`
}

// ToleranceConfig holds the route-complexity and product-volatility
// factors of the reconciliation tolerance, keyed by route id and product.
type ToleranceConfig struct {
	RouteComplexity   map[string]float64 `yaml:"route_complexity"`
	ProductVolatility map[string]float64 `yaml:"product_volatility"`
}

// RouteOverride replaces route validation thresholds for one route. Zero
// fields keep the default.
type RouteOverride struct {
	CorridorMeters    float64 `yaml:"corridor_meters"`
	SpeedViolationKmh float64 `yaml:"speed_violation_kmh"`
	PlannedSpeedKmh   float64 `yaml:"planned_speed_kmh"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTPAddr: ":8080",
		LogMode:  "production",
		Schedule: ScheduleConfig{
			DailyAt:      "02:00",
			Workers:      8,
			BatchLimit:   500,
			OutboxRelay:  5 * time.Second,
			OutboxBatch:  100,
			AutoSubmit:   true,
			MetricsEvery: 30 * time.Second,
		},
		Policy: DefaultPolicy(),
	}
}

// DefaultPolicy returns the production business policy.
func DefaultPolicy() Policy {
	return Policy{
		Route:          route.DefaultPolicy(),
		Live:           trace.DefaultLivePolicy(),
		Reconciliation: reconciliation.DefaultPolicy(),
		Claims:         claims.DefaultPolicy(),
		Settlement:     settlement.DefaultPolicy(),
		Tariffs:        claims.DefaultTariffs(),
	}
}

// Load reads the YAML file named by UPPF_CONFIG, if any, over the
// defaults, then applies environment fallbacks.
func Load() (Config, error) {
	return LoadFile(os.Getenv("UPPF_CONFIG"))
}

// LoadFile reads path over the defaults. An empty path uses defaults and
// the environment only.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("UPPF_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	cfg.LogMode = getenvDefault("UPPF_LOG_MODE", cfg.LogMode)
	cfg.Schedule.DailyAt = getenvDefault("UPPF_DAILY_AT", cfg.Schedule.DailyAt)
	cfg.Schedule.Workers = getenvIntDefault("UPPF_WORKERS", cfg.Schedule.Workers)

	return cfg, cfg.Validate()
}

// Validate checks the values the service cannot start without.
func (c Config) Validate() error {
	if c.Schedule.DailyAt != "" {
		if _, err := time.Parse("15:04", c.Schedule.DailyAt); err != nil {
			return fmt.Errorf("config: daily_at %q: %w", c.Schedule.DailyAt, err)
		}
	}
	if c.Schedule.DailyAt == "" && c.Schedule.Interval <= 0 {
		return errors.New("config: schedule needs daily_at or interval")
	}
	if c.Schedule.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if len(c.Policy.Tariffs.BaseRates) == 0 {
		return errors.New("config: no tariff base rates")
	}
	for product, rate := range c.Policy.Tariffs.BaseRates {
		if rate.IsNegative() {
			return fmt.Errorf("config: negative base rate for %s", product)
		}
	}
	return nil
}

// RoutePolicy returns the validation policy for a route.
func (p Policy) RoutePolicy(routeID string) route.Policy {
	if p.Routes != nil {
		if override, ok := p.Routes[routeID]; ok {
			return mergeRoute(p.Route, override)
		}
	}
	return p.Route
}

// ToleranceFactors returns the reconciliation tolerance factors for a
// route and product. Missing factors are left zero and count as 1.
func (p Policy) ToleranceFactors(routeID string, product claims.ProductType) reconciliation.ToleranceFactors {
	return reconciliation.ToleranceFactors{
		RouteComplexity:   p.Tolerance.RouteComplexity[routeID],
		ProductVolatility: p.Tolerance.ProductVolatility[string(product)],
	}
}

func mergeRoute(base route.Policy, override RouteOverride) route.Policy {
	if override.CorridorMeters != 0 {
		base.CorridorMeters = override.CorridorMeters
	}
	if override.SpeedViolationKmh != 0 {
		base.Analyzer.SpeedViolationKmh = override.SpeedViolationKmh
	}
	if override.PlannedSpeedKmh != 0 {
		base.PlannedSpeedKmh = override.PlannedSpeedKmh
	}
	return base
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
