package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr            string
	DatabaseURL     string
	JWTSecret       string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	TaxRate         float64
	PolicyFile      string
	LogLevel        string
	LogFormat       string
	CORSOrigins     string
	ShutdownTimeout time.Duration
}

// Load reads a .env file when present and then the process environment.
// An empty DATABASE_URL selects the in-memory repositories.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PET_SHOP_ADDR", ":8080")
	v.SetDefault("TAX_RATE", 0.19)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)

	return Config{
		Addr:            v.GetString("PET_SHOP_ADDR"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		KafkaBrokers:    splitList(v.GetString("KAFKA_BROKERS")),
		TaxRate:         v.GetFloat64("TAX_RATE"),
		PolicyFile:      v.GetString("POLICY_FILE"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		CORSOrigins:     v.GetString("CORS_ORIGINS"),
		ShutdownTimeout: time.Duration(v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")) * time.Second,
	}
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
