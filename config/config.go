package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the autoblogger system
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Search    SearchConfig    `mapstructure:"search"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Output    OutputConfig    `mapstructure:"output"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server and auth settings
type ServerConfig struct {
	Address   string `mapstructure:"address"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// LLMConfig contains LLM provider configurations
type LLMConfig struct {
	Providers map[string]LLMProvider `mapstructure:"providers"`
	Routing   LLMRoutingConfig       `mapstructure:"routing"`
}

// LLMProvider represents a single LLM provider configuration
type LLMProvider struct {
	Type       string              `mapstructure:"type"` // openai for now
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Models     map[string]LLMModel `mapstructure:"models"`
	MaxRetries int                 `mapstructure:"max_retries"`
	Timeout    time.Duration       `mapstructure:"timeout"`
}

// LLMModel represents a specific model configuration
type LLMModel struct {
	Name        string  `mapstructure:"name"`
	APIName     string  `mapstructure:"api_name"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	// CostPer1K prices the model's tokens for the telemetry cost tracker.
	CostPer1K float64 `mapstructure:"cost_per_1k"`
}

// LLMRoutingConfig defines which model to use for each pipeline stage.
// Research is the fast/cheap tier, Writing the large/quality tier.
type LLMRoutingConfig struct {
	Research string `mapstructure:"research"`
	Writing  string `mapstructure:"writing"`
	Editing  string `mapstructure:"editing"`
	Fallback string `mapstructure:"fallback"`
}

// SearchConfig contains web search provider settings and request defaults.
type SearchConfig struct {
	Provider       string        `mapstructure:"provider"` // tavily | brave
	TavilyAPIKey   string        `mapstructure:"tavily_api_key"`
	BraveAPIKey    string        `mapstructure:"brave_api_key"`
	Depth          string        `mapstructure:"depth"`      // basic | advanced
	Topic          string        `mapstructure:"topic"`      // general | news | finance
	TimeRange      string        `mapstructure:"time_range"` // day | week | month | year
	Days           int           `mapstructure:"days"`
	MaxResults     int           `mapstructure:"max_results"`
	IncludeAnswer  bool          `mapstructure:"include_answer"`
	IncludeRaw     bool          `mapstructure:"include_raw_content"`
	IncludeImages  bool          `mapstructure:"include_images"`
	IncludeDomains []string      `mapstructure:"include_domains"`
	ExcludeDomains []string      `mapstructure:"exclude_domains"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

func (s SearchConfig) Validate() error {
	switch s.Provider {
	case "", "tavily", "brave":
	default:
		return fmt.Errorf("search.provider must be tavily or brave, got %q", s.Provider)
	}
	if s.MaxResults < 0 {
		return fmt.Errorf("search.max_results cannot be negative")
	}
	return nil
}

// PipelineConfig controls pipeline stage behaviour.
type PipelineConfig struct {
	// EditingEnabled toggles the editor stage. When disabled the writing
	// agent finalizes content directly.
	EditingEnabled bool          `mapstructure:"editing_enabled"`
	StageTimeout   time.Duration `mapstructure:"stage_timeout"`
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	LogFile      string `mapstructure:"log_file"`
	CostTracking bool   `mapstructure:"cost_tracking"`
}

// StorageConfig contains storage and persistence settings
type StorageConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (p PostgresConfig) Validate() error {
	if strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("storage.postgres.host required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// DSN builds a postgres connection string from either URL or discrete fields.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl)
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("storage.redis.host required")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("storage.redis.port required")
	}
	return nil
}

// ArchiveConfig contains bleve article index settings.
type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// OutputConfig contains artifact output settings for the CLI entry point.
type OutputConfig struct {
	Dir        string `mapstructure:"dir"`
	RenderHTML bool   `mapstructure:"render_html"`
}

// LoadConfig loads config from file. When path is empty the usual lookup
// directories are searched.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.default_timeout", "60s")
	v.SetDefault("server.address", ":10002")
	v.SetDefault("search.provider", "tavily")
	v.SetDefault("search.depth", "basic")
	v.SetDefault("search.topic", "general")
	v.SetDefault("search.time_range", "month")
	v.SetDefault("search.days", 7)
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.timeout", "60s")
	v.SetDefault("pipeline.editing_enabled", false)
	v.SetDefault("pipeline.stage_timeout", "120s")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.cost_tracking", true)
	v.SetDefault("storage.archive.path", "articles.bleve")
	v.SetDefault("output.dir", "output")

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		v.AddConfigPath(exeDir)
		v.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("AUTOBLOGGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// env-only operation is allowed when no config file exists
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Search.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
