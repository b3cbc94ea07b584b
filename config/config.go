// config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ModeWebhook = "webhook"
	ModePolling = "polling"
)

type TelegramConfig struct {
	Token string
	Mode  string
	// WebhookSecret is echoed by Telegram in X-Telegram-Bot-Api-Secret-Token.
	WebhookSecret string
}

type DBConfig struct {
	URL          string
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

type StripeConfig struct {
	SecretKey  string
	WebhookKey string
	PriceID    string
}

type GPTConfig struct {
	APIKey string
	Model  string
}

type ServerConfig struct {
	Port string
}

type AppConfig struct {
	// BaseURL is the public URL Telegram and Stripe call back into.
	BaseURL  string
	Timezone string
}

type RedisConfig struct {
	URL string
}

type LogConfig struct {
	Level string
	Debug bool
}

type Config struct {
	Telegram        TelegramConfig
	DB              DBConfig
	Stripe          StripeConfig
	GPT             GPTConfig
	Server          ServerConfig
	App             AppConfig
	Redis           RedisConfig
	Log             LogConfig
	ShutdownTimeout time.Duration
}

// env aliases, first match wins
var envBindings = map[string][]string{
	"telegram.token":         {"TELEGRAM_BOT_TOKEN", "TELEGRAM_TOKEN"},
	"telegram.mode":          {"TELEGRAM_MODE"},
	"telegram.webhooksecret": {"TELEGRAM_WEBHOOK_SECRET"},
	"db.url":                 {"DATABASE_URL", "SUPABASE_DB_URL"},
	"db.host":                {"DB_HOST"},
	"db.port":                {"DB_PORT"},
	"db.user":                {"DB_USER"},
	"db.password":            {"DB_PASSWORD"},
	"db.dbname":              {"DB_NAME"},
	"db.sslmode":             {"DB_SSL_MODE"},
	"db.maxopenconns":        {"DB_MAX_OPEN_CONNS"},
	"db.maxidleconns":        {"DB_MAX_IDLE_CONNS"},
	"stripe.secretkey":       {"STRIPE_SECRET_KEY"},
	"stripe.webhookkey":      {"STRIPE_WEBHOOK_SECRET", "STRIPE_WEBHOOK_KEY"},
	"stripe.priceid":         {"STRIPE_PRICE_ID"},
	"gpt.apikey":             {"OPENAI_API_KEY", "GPT_API_KEY"},
	"gpt.model":              {"OPENAI_MODEL", "GPT_MODEL"},
	"server.port":            {"PORT", "SERVER_PORT"},
	"app.baseurl":            {"WEBHOOK_URL", "PUBLIC_BASE_URL"},
	"app.timezone":           {"TIMEZONE", "TZ"},
	"redis.url":              {"REDIS_URL"},
	"log.level":              {"LOG_LEVEL"},
	"log.debug":              {"DEBUG"},
	"shutdowntimeout":        {"SHUTDOWN_TIMEOUT"},
}

// Load loads the configuration from .env, an optional config file and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AddConfigPath("$HOME/.biteiq-bot")

	setDefaults(v)

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Process any ${ENV_VAR} syntax in the config values
	for _, key := range v.AllKeys() {
		value := v.GetString(key)
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			envVar := strings.TrimPrefix(strings.TrimSuffix(value, "}"), "${")
			if envValue := os.Getenv(envVar); envValue != "" {
				v.Set(key, envValue)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.App.BaseURL = strings.TrimRight(cfg.App.BaseURL, "/")
	cfg.Telegram.Mode = strings.ToLower(strings.TrimSpace(cfg.Telegram.Mode))

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("shutdowntimeout", 10*time.Second)
	v.SetDefault("telegram.mode", ModeWebhook)
	v.SetDefault("gpt.model", "gpt-4o-mini")
	v.SetDefault("server.port", "8080")
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.dbname", "biteiq")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.maxopenconns", 10)
	v.SetDefault("db.maxidleconns", 2)
	v.SetDefault("db.connlifetime", 5*time.Minute)
}

// Validate reports the first missing piece of configuration the bot cannot run without.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram token is not configured")
	}
	if c.Telegram.Mode != ModeWebhook && c.Telegram.Mode != ModePolling {
		return fmt.Errorf("unknown telegram mode %q", c.Telegram.Mode)
	}
	if c.Telegram.Mode == ModeWebhook && c.App.BaseURL == "" {
		return errors.New("public base URL (WEBHOOK_URL) is required in webhook mode")
	}
	if !validSecretToken(c.Telegram.WebhookSecret) {
		return errors.New("telegram webhook secret must be 1-256 characters of A-Z, a-z, 0-9, _ or -")
	}
	if c.Stripe.SecretKey == "" || c.Stripe.WebhookKey == "" || c.Stripe.PriceID == "" {
		return errors.New("stripe configuration is incomplete")
	}
	if c.GPT.APIKey == "" {
		return errors.New("OpenAI API key is not configured")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.App.Timezone, err)
	}
	return nil
}

// validSecretToken reports whether s is usable as a setWebhook secret_token. Empty means generated at startup.
func validSecretToken(s string) bool {
	if len(s) > 256 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// DSN returns the Postgres connection string, preferring an explicit URL.
func (d DBConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   d.Host + ":" + d.Port,
		Path:   "/" + d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
