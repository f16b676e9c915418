package config

import (
	"fmt"
	"os"
	"strconv"

	"shopdesk-be/internal/money"
	"shopdesk-be/internal/product"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate applies to both checkout paths unless overridden.
var DefaultTaxRate = decimal.RequireFromString("0.15")

const (
	defaultAppPort        = "8080"
	defaultCartStoreDir   = "./data/carts"
	defaultCORSOrigin     = "*"
	defaultRateLimitRPS   = 10
	defaultRateLimitBurst = 20
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	// TaxRate is used by storefront checkout, AdminTaxRate by orders
	// assembled in the admin console.
	TaxRate           decimal.Decimal
	AdminTaxRate      decimal.Decimal
	LowStockThreshold int

	CartStoreDir   string
	CORSOrigin     string
	RateLimitRPS   float64
	RateLimitBurst int
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:       os.Getenv("DB_HOST"),
		DBUser:       os.Getenv("DB_USER"),
		DBPassword:   os.Getenv("DB_PASSWORD"),
		DBName:       os.Getenv("DB_NAME"),
		DBPort:       os.Getenv("DB_PORT"),
		AppPort:      getenv("APP_PORT", defaultAppPort),
		AppEnv:       os.Getenv("APP_ENV"),
		CartStoreDir: getenv("CART_STORE_DIR", defaultCartStoreDir),
		CORSOrigin:   getenv("CORS_ORIGIN", defaultCORSOrigin),
	}

	if cfg.DBHost == "" {
		return nil, fmt.Errorf("environment variables not loaded properly: DB_HOST is empty")
	}

	var err error
	if cfg.TaxRate, err = money.ParseRate(os.Getenv("TAX_RATE"), DefaultTaxRate); err != nil {
		return nil, fmt.Errorf("TAX_RATE: %w", err)
	}
	if cfg.AdminTaxRate, err = money.ParseRate(os.Getenv("ADMIN_TAX_RATE"), cfg.TaxRate); err != nil {
		return nil, fmt.Errorf("ADMIN_TAX_RATE: %w", err)
	}
	if cfg.LowStockThreshold, err = getInt("LOW_STOCK_THRESHOLD", product.DefaultLowStockThreshold); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", defaultRateLimitBurst); err != nil {
		return nil, err
	}

	cfg.RateLimitRPS = defaultRateLimitRPS
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if cfg.RateLimitRPS, err = strconv.ParseFloat(v, 64); err != nil || cfg.RateLimitRPS <= 0 {
			return nil, fmt.Errorf("RATE_LIMIT_RPS: invalid value %q", v)
		}
	}

	return cfg, nil
}

// DSN renders the lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: invalid value %q", key, v)
	}
	return n, nil
}
