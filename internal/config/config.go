package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"golang.org/x/text/currency"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTIssuer string

	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	SMTPFrom    string
	SellerEmail string

	KafkaBrokers []string
	OrdersTopic  string

	RequestTimeout time.Duration
	NotifyTimeout  time.Duration
	GuestCartTTL   time.Duration
	CatalogTTL     time.Duration

	Currency       string
	DefaultCountry string
}

// LoadEnv reads env files into the process environment, without overriding
// variables already set, and then loads the config. Missing files are skipped.
func LoadEnv(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("godotenv.Load[%s]: %w", f, err)
		}
	}

	return Load(), nil
}

func Load() Config {
	return Config{
		AppEnv:   get("APP_ENV", "dev"),
		HTTPAddr: get("HTTP_ADDR", ":8080"),

		DatabaseURL: get("DATABASE_URL", ""),

		RedisAddr:     get("REDIS_ADDR", "localhost:6379"),
		RedisPassword: get("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),

		JWTSecret: get("JWT_SECRET", ""),
		JWTIssuer: get("JWT_ISSUER", "storefront"),

		SMTPHost:    get("SMTP_HOST", ""),
		SMTPPort:    getInt("SMTP_PORT", 587),
		SMTPUser:    get("SMTP_USER", ""),
		SMTPPass:    get("SMTP_PASS", ""),
		SMTPFrom:    get("SMTP_FROM", ""),
		SellerEmail: get("SELLER_EMAIL", ""),

		KafkaBrokers: getList("KAFKA_BROKERS"),
		OrdersTopic:  get("ORDERS_TOPIC", "orders"),

		RequestTimeout: getDuration("REQUEST_TIMEOUT", 5*time.Second),
		NotifyTimeout:  getDuration("NOTIFY_TIMEOUT", 10*time.Second),
		GuestCartTTL:   getDuration("GUEST_CART_TTL", 30*24*time.Hour),
		CatalogTTL:     getDuration("CATALOG_TTL", time.Minute),

		Currency:       get("CURRENCY", "USD"),
		DefaultCountry: get("DEFAULT_COUNTRY", "Lebanon"),
	}
}

func (c Config) Validate() error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is empty"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is empty"))
	}
	if _, err := currency.ParseISO(c.Currency); err != nil {
		errs = append(errs, fmt.Errorf("CURRENCY[%s] is not valid: %w", c.Currency, err))
	}
	if c.SMTPHost != "" && c.SellerEmail == "" {
		errs = append(errs, errors.New("SELLER_EMAIL is empty while SMTP_HOST is set"))
	}

	return errors.Join(errs...)
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production"
}

// CurrencyUnit expects a validated config.
func (c Config) CurrencyUnit() currency.Unit {
	unit, err := currency.ParseISO(c.Currency)
	if err != nil {
		return currency.USD
	}
	return unit
}

func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

// getList splits a comma separated value, dropping blanks.
func getList(k string) []string {
	var result []string
	for _, part := range strings.Split(os.Getenv(k), ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
