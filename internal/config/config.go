package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	AppEnv string
	Addr   string

	// Postgres
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBMaxIdleTime  time.Duration

	// Shared membership unlock secret, stored as a bcrypt hash.
	// Empty means the membership unlock flow is disabled.
	MembershipHash string

	BcryptCost int

	// Sessions
	SessionBackend string // "memory" or "redis"
	SessionTTL     time.Duration

	// Redis (only used when SessionBackend == "redis")
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.Addr = getEnv("ADDR", ":3000")

	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	cfg.DBMaxOpenConns = getInt("DB_MAX_OPEN_CONNS", 25)
	cfg.DBMaxIdleConns = getInt("DB_MAX_IDLE_CONNS", 25)
	cfg.DBMaxIdleTime = getDuration("DB_MAX_IDLE_TIME", 15*time.Minute)

	cfg.MembershipHash = getEnv("MEMBERSHIP_HASH", "")
	cfg.BcryptCost = getInt("BCRYPT_COST", bcrypt.DefaultCost)

	cfg.SessionBackend = strings.ToLower(getEnv("SESSION_BACKEND", "memory"))
	cfg.SessionTTL = getDuration("SESSION_TTL", 24*time.Hour)

	cfg.RedisAddr = getEnv("REDIS_ADDR", "127.0.0.1:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = getInt("REDIS_DB", 0)

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	// Fail fast on misconfiguration instead of failing on first use.
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("missing DATABASE_URL")
	}
	if cfg.SessionBackend != "memory" && cfg.SessionBackend != "redis" {
		return nil, fmt.Errorf("invalid SESSION_BACKEND %q: want \"memory\" or \"redis\"", cfg.SessionBackend)
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("invalid BCRYPT_COST %d", cfg.BcryptCost)
	}

	return cfg, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
