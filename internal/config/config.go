// internal/config/config.go
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config carries every externally tunable setting of the service. Values come
// from the environment, optionally seeded from a .env file.
type Config struct {
	Addr         string // HTTP listen address
	DatabaseURL  string // Postgres DSN; empty disables persistence
	RedisAddr    string // Redis address; empty disables the action log
	RedisPass    string
	JWTSecret    string
	TurnTimerSec int // 0 disables the turn timer
	LogLevel     string
}

// Load reads the configuration from the environment. A missing .env file is
// not an error; explicit environment variables always win because godotenv
// does not overwrite them.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("config: could not read .env: %v", err)
	}

	cfg := Config{
		Addr:         getEnv("VINTO_ADDR", ":8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisPass:    os.Getenv("REDIS_PASSWORD"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		TurnTimerSec: getEnvInt("TURN_TIMER_SEC", 30),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

// ApplyLogging configures the global logrus logger from the config.
func (c Config) ApplyLogging() {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("config: unknown log level %q, using info", c.LogLevel)
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.Warnf("config: %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}
