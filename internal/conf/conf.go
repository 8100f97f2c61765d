package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
	"github.com/devricklin/privacy-guard/internal/logging"
)

// Config represents application configuration
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Bridge   BridgeConfig   `yaml:"bridge"`
	Admin    AdminConfig    `yaml:"admin"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	LLM      LLMConfig      `yaml:"llm"`
	Store    StoreConfig    `yaml:"store"`
	Redis    RedisConfig    `yaml:"redis"`
	Timings  TimingsConfig  `yaml:"timings"`

	// SitesPath overrides the embedded site table
	SitesPath string `yaml:"sites_path" env:"SITES_PATH"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// BridgeConfig contains the page bridge configuration
type BridgeConfig struct {
	Addr string `yaml:"addr" env:"BRIDGE_ADDR" env-default:"127.0.0.1:7431"`
}

// AdminConfig contains the admin API configuration
type AdminConfig struct {
	Addr        string `yaml:"addr"         env:"ADMIN_ADDR"         env-default:"127.0.0.1:7432"`
	CORSOrigins string `yaml:"cors_origins" env:"ADMIN_CORS_ORIGINS"`
	ClearURL    string `yaml:"clear_url"    env:"CLEAR_DATA_URL"`
}

// AnalyzerConfig contains the classifier service configuration.
// Addr is where cmd/analyzer listens, URL is where guardd calls it.
type AnalyzerConfig struct {
	Addr    string        `yaml:"addr"    env:"ANALYZER_ADDR"    env-default:"127.0.0.1:5000"`
	URL     string        `yaml:"url"     env:"ANALYZER_URL"`
	Timeout time.Duration `yaml:"timeout" env:"ANALYZER_TIMEOUT" env-default:"5s"`
}

// LLMConfig contains the label scorer configuration (optional)
type LLMConfig struct {
	APIKey  string `yaml:"api_key"  env:"MOONSHOT_API_KEY"`
	BaseURL string `yaml:"base_url" env:"LLM_BASE_URL"`
	Model   string `yaml:"model"    env:"MOONSHOT_MODEL"`
}

// StoreConfig contains the SQLite configuration
type StoreConfig struct {
	Path string `yaml:"path" env:"STORE_PATH"`
}

// RedisConfig contains the optional marker store
type RedisConfig struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR"`
}

// TimingsConfig contains the engine delays
type TimingsConfig struct {
	InputDebounce time.Duration `yaml:"input_debounce" env:"TIMING_INPUT_DEBOUNCE" env-default:"250ms"`
	CopyCooldown  time.Duration `yaml:"copy_cooldown"  env:"TIMING_COPY_COOLDOWN"  env-default:"2s"`
	SoftClose     time.Duration `yaml:"soft_close"     env:"TIMING_SOFT_CLOSE"     env-default:"6s"`
	HardClose     time.Duration `yaml:"hard_close"     env:"TIMING_HARD_CLOSE"     env-default:"15s"`
	AcceptGrace   time.Duration `yaml:"accept_grace"   env:"TIMING_ACCEPT_GRACE"   env-default:"5s"`
	MaskClose     time.Duration `yaml:"mask_close"     env:"TIMING_MASK_CLOSE"     env-default:"2s"`
	OmitTTL       time.Duration `yaml:"omit_ttl"       env:"TIMING_OMIT_TTL"       env-default:"30s"`
	FormCooldown  time.Duration `yaml:"form_cooldown"  env:"TIMING_FORM_COOLDOWN"  env-default:"60s"`
	ScanDebounce  time.Duration `yaml:"scan_debounce"  env:"TIMING_SCAN_DEBOUNCE"  env-default:"500ms"`
	LogoutPending time.Duration `yaml:"logout_pending" env:"TIMING_LOGOUT_PENDING" env-default:"30s"`
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults.
// The file is CONFIG_PATH, or ./config.yaml when it exists.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) fillDefaults() {
	if c.Store.Path == "" {
		homeDir, _ := os.UserHomeDir()
		c.Store.Path = filepath.Join(homeDir, ".privacy-guard", "guard.db")
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	t := c.Timings
	durations := map[string]time.Duration{
		"timings.input_debounce": t.InputDebounce,
		"timings.soft_close":     t.SoftClose,
		"timings.hard_close":     t.HardClose,
		"timings.accept_grace":   t.AcceptGrace,
		"timings.mask_close":     t.MaskClose,
		"timings.omit_ttl":       t.OmitTTL,
		"timings.scan_debounce":  t.ScanDebounce,
		"timings.logout_pending": t.LogoutPending,
	}
	for field, d := range durations {
		if d <= 0 {
			return &ConfigError{Field: field, Message: "must be positive"}
		}
	}
	if t.HardClose < t.SoftClose {
		return &ConfigError{Field: "timings.hard_close", Message: "must not be shorter than soft_close"}
	}
	if c.Analyzer.Timeout <= 0 {
		return &ConfigError{Field: "analyzer.timeout", Message: "must be positive"}
	}
	return nil
}

// ToLogConfig converts to logger configuration
func (c *LogConfig) ToLogConfig() logging.Config {
	return logging.Config{Level: c.Level, Format: c.Format}
}

// ToTimings converts to domain timings. Length thresholds are fixed.
func (c *TimingsConfig) ToTimings() domain.Timings {
	t := domain.DefaultTimings()
	t.InputDebounce = c.InputDebounce
	t.CopyCooldown = c.CopyCooldown
	t.SoftClose = c.SoftClose
	t.HardClose = c.HardClose
	t.AcceptGrace = c.AcceptGrace
	t.MaskClose = c.MaskClose
	t.OmitTTL = c.OmitTTL
	t.FormCooldown = c.FormCooldown
	t.ScanDebounce = c.ScanDebounce
	t.LogoutPending = c.LogoutPending
	return t
}

// Origins splits the configured CORS origins
func (c *AdminConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
