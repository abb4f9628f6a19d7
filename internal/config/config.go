package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/trendscout-agent/internal/platform"
)

// Config represents the application configuration
type Config struct {
	Apify     ApifyConfig     `mapstructure:"apify"`
	TubeLab   TubeLabConfig   `mapstructure:"tubelab"`
	YouTube   YouTubeConfig   `mapstructure:"youtube"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Accounts  AccountsConfig  `mapstructure:"accounts"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Runs      RunsConfig      `mapstructure:"runs"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ApifyConfig holds Apify scraper settings for X, Instagram and TikTok
type ApifyConfig struct {
	Token          string `mapstructure:"token"`
	BaseURL        string `mapstructure:"base_url"`
	XActor         string `mapstructure:"x_actor"`
	InstagramActor string `mapstructure:"instagram_actor"`
	TikTokActor    string `mapstructure:"tiktok_actor"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// TubeLabConfig holds TubeLab API settings (YouTube outlier candidates)
type TubeLabConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// YouTubeConfig holds YouTube Data API settings used for channel
// statistics, plus the credential-free channel RSS fallback
type YouTubeConfig struct {
	APIKey     string `mapstructure:"api_key"`
	UseFeeds   bool   `mapstructure:"use_feeds"`
	MaxUploads int    `mapstructure:"max_uploads"`
}

// AnthropicConfig holds Claude API settings for video-content analysis
type AnthropicConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// AccountsConfig lists the handles/channels covered per platform
type AccountsConfig struct {
	X         []string `mapstructure:"x"`
	Instagram []string `mapstructure:"instagram"`
	TikTok    []string `mapstructure:"tiktok"`
	YouTube   []string `mapstructure:"youtube"`
}

// For returns the account list for a platform
func (a AccountsConfig) For(p platform.Platform) []string {
	switch p {
	case platform.X:
		return a.X
	case platform.Instagram:
		return a.Instagram
	case platform.TikTok:
		return a.TikTok
	case platform.YouTube:
		return a.YouTube
	}
	return nil
}

// AnalysisConfig holds the statistical knobs: threshold multiplier,
// fetch window, and optional per-platform weight overrides
type AnalysisConfig struct {
	ThresholdMultiplier float64                     `mapstructure:"threshold_multiplier"`
	Days                int                         `mapstructure:"days"`
	Limit               int                         `mapstructure:"limit"`
	MaxVideoAnalyses    int                         `mapstructure:"max_video_analyses"`
	Weights             map[string]platform.Weights `mapstructure:"weights"`
}

// WeightOverrides converts the config weight map to platform keys,
// ignoring unknown platform names
func (a AnalysisConfig) WeightOverrides() map[platform.Platform]platform.Weights {
	out := make(map[platform.Platform]platform.Weights)
	for name, w := range a.Weights {
		p, err := platform.Parse(name)
		if err != nil {
			continue
		}
		out[p] = w
	}
	return out
}

// RunsConfig holds artifact storage settings
type RunsConfig struct {
	Dir string `mapstructure:"dir"`
}

// SchedulerConfig holds scheduler settings
type SchedulerConfig struct {
	AnalyzeCron string `mapstructure:"analyze_cron"`
	PlanCron    string `mapstructure:"plan_cron"`
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	ApifyRequestsPerMinute     int `mapstructure:"apify_requests_per_minute"`
	TubeLabRequestsPerMinute   int `mapstructure:"tubelab_requests_per_minute"`
	AnthropicRequestsPerMinute int `mapstructure:"anthropic_requests_per_minute"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout or file path
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	// Load .env file if present (ignore errors if not found)
	_ = godotenv.Load()
	_ = godotenv.Load(".env.local")

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in current directory and configs folder
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")

		// Also check user's home directory
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".trendscout"))
		}
	}

	// Environment variables
	v.SetEnvPrefix("TRENDSCOUT")
	v.AutomaticEnv()

	// Explicit bindings for nested keys (Viper doesn't auto-bind underscored nested keys)
	v.BindEnv("apify.token", "TRENDSCOUT_APIFY_TOKEN")
	v.BindEnv("tubelab.api_key", "TRENDSCOUT_TUBELAB_API_KEY")
	v.BindEnv("youtube.api_key", "TRENDSCOUT_YOUTUBE_API_KEY")
	v.BindEnv("anthropic.api_key", "TRENDSCOUT_ANTHROPIC_API_KEY")
	v.BindEnv("analysis.threshold_multiplier", "TRENDSCOUT_ANALYSIS_THRESHOLD_MULTIPLIER")
	v.BindEnv("runs.dir", "TRENDSCOUT_RUNS_DIR")

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Apify defaults
	v.SetDefault("apify.base_url", "https://api.apify.com/v2")
	v.SetDefault("apify.x_actor", "apidojo/tweet-scraper")
	v.SetDefault("apify.instagram_actor", "apify/instagram-scraper")
	v.SetDefault("apify.tiktok_actor", "clockworks/tiktok-scraper")
	v.SetDefault("apify.timeout_seconds", 120)

	// TubeLab defaults
	v.SetDefault("tubelab.base_url", "https://api.tubelab.net/v1")

	// YouTube defaults
	v.SetDefault("youtube.use_feeds", true)
	v.SetDefault("youtube.max_uploads", 15)

	// Anthropic defaults
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.temperature", 0.3)

	// Analysis defaults
	v.SetDefault("analysis.threshold_multiplier", 2.0)
	v.SetDefault("analysis.days", 30)
	v.SetDefault("analysis.limit", 200)
	v.SetDefault("analysis.max_video_analyses", 10)

	// Runs defaults
	v.SetDefault("runs.dir", "./runs")

	// Scheduler defaults
	v.SetDefault("scheduler.analyze_cron", "0 6 * * *") // 6am daily - analyze all platforms
	v.SetDefault("scheduler.plan_cron", "30 7 * * *")   // 7:30am daily - aggregate content plan

	// Rate limit defaults
	v.SetDefault("rate_limit.apify_requests_per_minute", 30)
	v.SetDefault("rate_limit.tubelab_requests_per_minute", 60)
	v.SetDefault("rate_limit.anthropic_requests_per_minute", 10)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stdout")
}

// Validate validates the configuration for a fetch+analyze run against
// the given platform. Credentials for other platforms are not required.
func (c *Config) Validate(p platform.Platform) error {
	switch p {
	case platform.X, platform.Instagram, platform.TikTok:
		if c.Apify.Token == "" {
			return fmt.Errorf("apify.token is required for %s runs", p)
		}
	case platform.YouTube:
		if c.TubeLab.APIKey == "" && !c.YouTube.UseFeeds {
			return fmt.Errorf("tubelab.api_key or youtube.use_feeds is required for youtube runs")
		}
	}
	if len(c.Accounts.For(p)) == 0 {
		return fmt.Errorf("accounts.%s must list at least one account", p)
	}
	return nil
}
