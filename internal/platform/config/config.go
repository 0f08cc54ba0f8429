package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	LogLevel      string
	LogFormat     string
	StorageDriver string

	DatabaseURL    string
	EnableDBCheck  bool
	MigrationsPath string

	JWTSecret string
	JWTIssuer string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RateLimit     string

	GraphURI            string
	GraphDatabase       string
	GraphUsername       string
	GraphPassword       string
	GraphMaxConnections int

	CommissionLedger    string
	CashDecimalPlaces   int32
	PointsPerCashUnit   decimal.Decimal
	CheckInRewardPoints int64

	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("STORAGE_DRIVER", StoragePostgres)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "rewards-ledger")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("GRAPH_URI", "")
	viper.SetDefault("GRAPH_DATABASE", "neo4j")
	viper.SetDefault("GRAPH_USERNAME", "neo4j")
	viper.SetDefault("GRAPH_PASSWORD", "")
	viper.SetDefault("GRAPH_MAX_CONNECTIONS", 50)
	viper.SetDefault("COMMISSION_LEDGER", "points")
	viper.SetDefault("CASH_DECIMAL_PLACES", 2)
	viper.SetDefault("POINTS_PER_CASH_UNIT", "100")
	viper.SetDefault("CHECKIN_REWARD_POINTS", 10)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	viper.AutomaticEnv()

	cfg := &Config{
		Port:                viper.GetString("PORT"),
		IsProduction:        viper.GetBool("IS_PRODUCTION"),
		LogLevel:            strings.ToLower(viper.GetString("LOG_LEVEL")),
		LogFormat:           strings.ToLower(viper.GetString("LOG_FORMAT")),
		StorageDriver:       strings.ToLower(viper.GetString("STORAGE_DRIVER")),
		DatabaseURL:         viper.GetString("PGSQL_URL"),
		EnableDBCheck:       viper.GetBool("ENABLE_DB_CHECK"),
		MigrationsPath:      viper.GetString("MIGRATIONS_PATH"),
		JWTSecret:           viper.GetString("JWT_SECRET"),
		JWTIssuer:           viper.GetString("JWT_ISSUER"),
		RedisAddr:           viper.GetString("REDIS_ADDR"),
		RedisPassword:       viper.GetString("REDIS_PASSWORD"),
		RedisDB:             viper.GetInt("REDIS_DB"),
		RateLimit:           viper.GetString("RATE_LIMIT"),
		GraphURI:            viper.GetString("GRAPH_URI"),
		GraphDatabase:       viper.GetString("GRAPH_DATABASE"),
		GraphUsername:       viper.GetString("GRAPH_USERNAME"),
		GraphPassword:       viper.GetString("GRAPH_PASSWORD"),
		GraphMaxConnections: viper.GetInt("GRAPH_MAX_CONNECTIONS"),
		CommissionLedger:    strings.ToUpper(viper.GetString("COMMISSION_LEDGER")),
		CashDecimalPlaces:   viper.GetInt32("CASH_DECIMAL_PLACES"),
		CheckInRewardPoints: viper.GetInt64("CHECKIN_REWARD_POINTS"),
	}

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	pointsPerCash, err := decimal.NewFromString(viper.GetString("POINTS_PER_CASH_UNIT"))
	if err != nil {
		return nil, fmt.Errorf("invalid POINTS_PER_CASH_UNIT: %w", err)
	}
	cfg.PointsPerCashUnit = pointsPerCash

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("PGSQL_URL is required when STORAGE_DRIVER=%s", StoragePostgres)
		}
	case StorageMemory:
		if c.IsProduction {
			return fmt.Errorf("STORAGE_DRIVER=%s is for development and tests only", StorageMemory)
		}
		log.Println("Warning: STORAGE_DRIVER=memory, balances are lost on restart.")
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.CommissionLedger != "POINTS" && c.CommissionLedger != "CASH" {
		return fmt.Errorf("COMMISSION_LEDGER must be points or cash, got %q", c.CommissionLedger)
	}
	if c.CashDecimalPlaces < 0 || c.CashDecimalPlaces > 8 {
		return fmt.Errorf("CASH_DECIMAL_PLACES must be between 0 and 8, got %d", c.CashDecimalPlaces)
	}
	if c.CheckInRewardPoints < 0 {
		return fmt.Errorf("CHECKIN_REWARD_POINTS must not be negative")
	}
	if !c.PointsPerCashUnit.IsPositive() {
		return fmt.Errorf("POINTS_PER_CASH_UNIT must be positive")
	}
	if c.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		if c.IsProduction {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	return nil
}
