// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the HTTP server.  Each field maps to
// an environment variable.
type Config struct {
	Env         string         // APP_ENV, e.g. "dev" or "prod"
	Port        string         // APP_PORT
	LogLevel    string         // LOG_LEVEL, overrides the env default
	DBUser      string         // DB_USER
	DBPass      string         // DB_PASS (may be empty)
	DBHost      string         // DB_HOST
	DBPort      string         // DB_PORT
	DBName      string         // DB_NAME
	AutoMigrate bool           // DB_AUTO_MIGRATE creates missing tables at start
	JWTSecret   string         // JWT_SECRET; empty disables staff auth
	Location    *time.Location // HOTEL_TIMEZONE decides what "today" is
	Lock        LockConfig
	Queue       QueueConfig
}

// LockConfig selects how room locks are taken.  Backend "redis" shares
// locks between server instances; anything else uses an in-process lock.
// Redis locks are not renewed: TTL must exceed the slowest room transaction.
type LockConfig struct {
	Backend string
	TTL     time.Duration
	Wait    time.Duration
	Retry   time.Duration
	Prefix  string
}

// QueueConfig configures lifecycle event publishing and the log consumer.
type QueueConfig struct {
	Enabled     bool
	URL         string
	Name        string
	ConsumerLog string
}

// Load reads an optional .env file and then the environment.  Missing
// required variables stop the program.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}
	return Config{
		Env:         must("APP_ENV"),
		Port:        must("APP_PORT"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		DBUser:      must("DB_USER"),
		DBPass:      os.Getenv("DB_PASS"),
		DBHost:      must("DB_HOST"),
		DBPort:      must("DB_PORT"),
		DBName:      must("DB_NAME"),
		AutoMigrate: envBool("DB_AUTO_MIGRATE", false),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		Location:    mustLocation("HOTEL_TIMEZONE", "UTC"),
		Lock:        LoadLockConfig(),
		Queue:       LoadQueueConfig(),
	}
}

// LoadLockConfig reads LOCK_* variables.
func LoadLockConfig() LockConfig {
	return LockConfig{
		Backend: envStr("LOCK_BACKEND", "local"),
		TTL:     envDur("LOCK_TTL", 10*time.Second),
		Wait:    envDur("LOCK_WAIT", 5*time.Second),
		Retry:   envDur("LOCK_RETRY", 25*time.Millisecond),
		Prefix:  envStr("LOCK_PREFIX", "hotel:lock"),
	}
}

// LoadQueueConfig reads RABBITMQ_URL (or AMQP_URL) and QUEUE_* variables.
func LoadQueueConfig() QueueConfig {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		url = os.Getenv("AMQP_URL")
	}
	return QueueConfig{
		Enabled:     envBool("QUEUE_ENABLED", url != ""),
		URL:         url,
		Name:        envStr("QUEUE_NAME", "reservation.events"),
		ConsumerLog: envStr("QUEUE_CONSUMER_LOG", "logs/reservation.log"),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func mustLocation(key, def string) *time.Location {
	name := envStr(key, def)
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("invalid time zone for %s: %q", key, name)
	}
	return loc
}
