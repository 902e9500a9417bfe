package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process-wide configuration. It is constructed once in main and
// passed to each component; nothing reads the environment after startup.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Razorpay RazorpayConfig `mapstructure:"razorpay"`
	Store    StoreConfig    `mapstructure:"store"`
	Tokens   TokenConfig    `mapstructure:"tokens"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	AdminSecret string `mapstructure:"admin_secret"`
	// PublicBaseURL is this service's externally reachable origin, used as the
	// payment provider's redirect target (/claim-return).
	PublicBaseURL string `mapstructure:"public_base_url"`
	// SetupBaseURL is where /claim-return redirects; the token rides in the
	// URL fragment so it never reaches the server hosting the setup page.
	SetupBaseURL string `mapstructure:"setup_base_url"`
	// ViewBaseURL is the shareable viewer page; the token rides as a query param.
	ViewBaseURL string `mapstructure:"view_base_url"`
}

type RazorpayConfig struct {
	KeyID         string        `mapstructure:"key_id"`
	KeySecret     string        `mapstructure:"key_secret"`
	WebhookSecret string        `mapstructure:"webhook_secret"`
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type StoreConfig struct {
	TableName string `mapstructure:"table_name"`
}

type TokenConfig struct {
	PurchaseTTL time.Duration `mapstructure:"purchase_ttl"`
	ViewTTL     time.Duration `mapstructure:"view_ttl"`
}

type QueueConfig struct {
	URL             string `mapstructure:"url"`
	MetricNamespace string `mapstructure:"metric_namespace"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Load reads configuration from the environment with sane defaults.
// Environment keys are upper-snake with the struct path joined by underscores,
// e.g. SERVER_PORT, RAZORPAY_WEBHOOK_SECRET, TOKENS_PURCHASE_TTL.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.admin_secret", "")
	v.SetDefault("server.public_base_url", "http://localhost:8080")
	v.SetDefault("server.setup_base_url", "http://localhost:8080/setup")
	v.SetDefault("server.view_base_url", "http://localhost:8080/view")
	v.SetDefault("razorpay.key_id", "")
	v.SetDefault("razorpay.key_secret", "")
	v.SetDefault("razorpay.webhook_secret", "")
	v.SetDefault("razorpay.base_url", "https://api.razorpay.com")
	v.SetDefault("razorpay.timeout", 10*time.Second)
	v.SetDefault("store.table_name", "tokengate-records")
	v.SetDefault("tokens.purchase_ttl", 7200*time.Second)
	v.SetDefault("tokens.view_ttl", 30*24*time.Hour)
	v.SetDefault("queue.url", "")
	v.SetDefault("queue.metric_namespace", "TokenGate")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", true)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Tokens.PurchaseTTL <= 0 {
		return nil, fmt.Errorf("tokens.purchase_ttl must be positive, got %s", cfg.Tokens.PurchaseTTL)
	}
	if cfg.Tokens.ViewTTL <= 0 {
		return nil, fmt.Errorf("tokens.view_ttl must be positive, got %s", cfg.Tokens.ViewTTL)
	}

	return &cfg, nil
}
