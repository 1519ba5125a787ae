package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultLocales is the locale list the site ships with.
var DefaultLocales = []string{
	"en", "th", "zh-Hans", "zh-Hant", "ja", "ko", "vi", "id",
	"ms", "km", "lo", "my", "fr", "de", "ru", "ar",
}

const (
	// ContactStoreMemory keeps cooldown timestamps in process memory.
	ContactStoreMemory = "memory"
	// ContactStoreRedis shares cooldown timestamps between instances through Redis.
	ContactStoreRedis = "redis"
)

// Config holds runtime configuration values for the site service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	SiteBaseURL      string
	SiteName         string
	Locales          []string
	DefaultLocale    string
	ContactCooldown  time.Duration
	ContactInbox     string
	ContactStore     string
	ContactBurstMax  int
	DeliveryTimeout  time.Duration
	RedisURL         string
	DatabaseURL      string
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPass         string
	SMTPFrom         string
	SMTPHelloName    string
	NATSURL          string
	NATSSubject      string
	CORSAllowOrigins string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SITE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	v.SetDefault("app.name", "Firm Site API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("site.base_url", "http://localhost:3000")
	v.SetDefault("site.name", "Siam Ledger Accounting")
	v.SetDefault("locales.supported", strings.Join(DefaultLocales, ","))
	v.SetDefault("locales.default", "en")
	v.SetDefault("contact.cooldown", "180s")
	v.SetDefault("contact.store", ContactStoreMemory)
	v.SetDefault("contact.burst_max", 20)
	v.SetDefault("contact.delivery_timeout", "30s")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.hello", "localhost")
	v.SetDefault("nats.subject", "site.contact.accepted")
	v.SetDefault("cors.allow_origins", "*")

	cooldown, err := parseDuration(v.GetString("contact.cooldown"), 180*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid contact cooldown: %w", err)
	}

	deliveryTimeout, err := parseDuration(v.GetString("contact.delivery_timeout"), 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid contact delivery timeout: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		SiteBaseURL:      strings.TrimRight(strings.TrimSpace(v.GetString("site.base_url")), "/"),
		SiteName:         strings.TrimSpace(v.GetString("site.name")),
		Locales:          splitList(v.GetString("locales.supported")),
		DefaultLocale:    strings.TrimSpace(v.GetString("locales.default")),
		ContactCooldown:  cooldown,
		ContactInbox:     strings.TrimSpace(v.GetString("contact.inbox")),
		ContactStore:     strings.ToLower(strings.TrimSpace(v.GetString("contact.store"))),
		ContactBurstMax:  v.GetInt("contact.burst_max"),
		DeliveryTimeout:  deliveryTimeout,
		RedisURL:         v.GetString("redis.url"),
		DatabaseURL:      v.GetString("database.url"),
		SMTPHost:         strings.TrimSpace(v.GetString("smtp.host")),
		SMTPPort:         v.GetInt("smtp.port"),
		SMTPUser:         v.GetString("smtp.user"),
		SMTPPass:         v.GetString("smtp.pass"),
		SMTPFrom:         strings.TrimSpace(v.GetString("smtp.from")),
		SMTPHelloName:    v.GetString("smtp.hello"),
		NATSURL:          v.GetString("nats.url"),
		NATSSubject:      v.GetString("nats.subject"),
		CORSAllowOrigins: v.GetString("cors.allow_origins"),
	}

	if len(cfg.Locales) == 0 {
		return Config{}, fmt.Errorf("at least one locale must be configured")
	}

	switch cfg.ContactStore {
	case ContactStoreMemory:
	case ContactStoreRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("redis url must be provided when contact store is redis")
		}
	default:
		return Config{}, fmt.Errorf("unsupported contact store %q", cfg.ContactStore)
	}

	if cfg.SMTPHost != "" && cfg.ContactInbox == "" {
		return Config{}, fmt.Errorf("contact inbox must be provided when smtp is configured")
	}

	if cfg.ContactBurstMax <= 0 {
		cfg.ContactBurstMax = 20
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if parsed <= 0 {
		return fallback, nil
	}
	return parsed, nil
}

func splitList(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
