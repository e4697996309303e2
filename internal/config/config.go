package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the decision core.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Cron       CronConfig       `yaml:"cron"`
	Tier       TierConfig       `yaml:"tier"`
	PageHealth PageHealthConfig `yaml:"page_health"`
	Rollout    RolloutConfig    `yaml:"rollout"`
	ABTest     ABTestConfig     `yaml:"ab_test"`
	Content    ContentConfig    `yaml:"content"`
	Webhook    WebhookConfig    `yaml:"webhook"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        int    `yaml:"port"`
	Host        string `yaml:"host"`
	Environment string `yaml:"environment"` // "production" enables Secure cookies
}

// GetHost returns the server host, with container detection.
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// IsProduction reports whether the server runs with production hardening.
func (c ServerConfig) IsProduction() bool { return c.Environment == "production" }

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	URL             string `yaml:"url"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxIdleSecs int    `yaml:"conn_max_idle_secs"`
}

// RedisConfig holds the Redis connection settings for hot click counters.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
}

// CronConfig holds the shared secret for the scheduled evaluation endpoints.
type CronConfig struct {
	Secret string `yaml:"secret"`
}

// TierConfig holds the issuer tier engine thresholds.
type TierConfig struct {
	WindowDays             int     `yaml:"window_days"`
	MinClicks              int     `yaml:"min_clicks"`
	MinApprovalRate        float64 `yaml:"min_approval_rate"`
	PromotionEPCMultiplier float64 `yaml:"promotion_epc_multiplier"`
	MaxTierAIssuers        int     `yaml:"max_tier_a_issuers"`
}

// PageHealthConfig holds the page health evaluator thresholds.
type PageHealthConfig struct {
	WindowDays         int     `yaml:"window_days"`
	ApprovalRateFloor  float64 `yaml:"approval_rate_floor"`
	EPCDropThreshold   float64 `yaml:"epc_drop_threshold"`
	RecoveryWindowDays int     `yaml:"recovery_window_days"`
}

// RolloutConfig gates programmatic page indexing and sitemap inclusion.
type RolloutConfig struct {
	KillSwitch  bool                `yaml:"kill_switch"`
	StagedLimit int                 `yaml:"staged_limit"`
	HardCap     int                 `yaml:"hard_cap"`
	Promoted    map[string][]string `yaml:"promoted"` // page type → slugs
	StaticURLs  []string            `yaml:"static_urls"`
	BaseURL     string              `yaml:"base_url"`
}

// ABTestConfig holds variant assignment settings.
type ABTestConfig struct {
	BThreshold   float64 `yaml:"b_threshold"`
	CookieMaxAge int     `yaml:"cookie_max_age_secs"`
}

// CookieTTL returns the variant/session cookie lifetime.
func (c ABTestConfig) CookieTTL() time.Duration {
	return time.Duration(c.CookieMaxAge) * time.Second
}

// ContentConfig points at the page-definition corpus checked at build time.
type ContentConfig struct {
	PagesDir            string  `yaml:"pages_dir"`
	OffersFile          string  `yaml:"offers_file"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// WebhookConfig holds conversion webhook verification settings.
type WebhookConfig struct {
	Token string `yaml:"token"` // empty disables verification
}

// Load reads and parses the configuration file, applying defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.ConnMaxIdleSecs == 0 {
		cfg.Database.ConnMaxIdleSecs = 60
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Tier.WindowDays == 0 {
		cfg.Tier.WindowDays = 7
	}
	if cfg.Tier.MinClicks == 0 {
		cfg.Tier.MinClicks = 50
	}
	if cfg.Tier.MinApprovalRate == 0 {
		cfg.Tier.MinApprovalRate = 0.25
	}
	if cfg.Tier.PromotionEPCMultiplier == 0 {
		cfg.Tier.PromotionEPCMultiplier = 1.2
	}
	if cfg.Tier.MaxTierAIssuers == 0 {
		cfg.Tier.MaxTierAIssuers = 3
	}
	if cfg.PageHealth.WindowDays == 0 {
		cfg.PageHealth.WindowDays = 3
	}
	if cfg.PageHealth.ApprovalRateFloor == 0 {
		cfg.PageHealth.ApprovalRateFloor = 0.10
	}
	if cfg.PageHealth.EPCDropThreshold == 0 {
		cfg.PageHealth.EPCDropThreshold = 0.30
	}
	if cfg.PageHealth.RecoveryWindowDays == 0 {
		cfg.PageHealth.RecoveryWindowDays = 3
	}
	if cfg.Rollout.StagedLimit == 0 {
		cfg.Rollout.StagedLimit = 200
	}
	if cfg.Rollout.HardCap == 0 {
		cfg.Rollout.HardCap = 500
	}
	if cfg.Rollout.BaseURL == "" {
		cfg.Rollout.BaseURL = "https://www.cardrank.example"
	}
	if cfg.ABTest.BThreshold == 0 {
		cfg.ABTest.BThreshold = 0.10
	}
	if cfg.ABTest.CookieMaxAge == 0 {
		cfg.ABTest.CookieMaxAge = 365 * 24 * 3600
	}
	if cfg.Content.PagesDir == "" {
		cfg.Content.PagesDir = "content/pages"
	}
	if cfg.Content.OffersFile == "" {
		cfg.Content.OffersFile = "content/offers.yaml"
	}
	if cfg.Content.SimilarityThreshold == 0 {
		cfg.Content.SimilarityThreshold = 0.85
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in deployment.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if secret := os.Getenv("CRON_SECRET"); secret != "" {
		cfg.Cron.Secret = secret
	}
	if token := os.Getenv("CONVERSION_WEBHOOK_TOKEN"); token != "" {
		cfg.Webhook.Token = token
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		cfg.Server.Environment = env
	}
	if v := os.Getenv("ROLLOUT_KILL_SWITCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Rollout.KillSwitch = b
		}
	}
	if v := os.Getenv("ROLLOUT_STAGED_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Rollout.StagedLimit = n
		}
	}

	return cfg, nil
}
