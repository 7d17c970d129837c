// Package config loads runtime configuration from environment
// variables. Required variables halt startup when missing; tunables
// fall back to defaults.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds the core service configuration. Redis, cache and rate
// limit settings load separately so the service can run without them.
type Config struct {
	Env     string        // application environment (dev/test/prod)
	Port    string        // HTTP port to listen on
	DBUser  string        // database username
	DBPass  string        // database password (optional)
	DBHost  string        // database host address
	DBPort  string        // database port number
	DBName  string        // database name
	LockTTL time.Duration // how long an edit lock is honored before it expires
}

// Load reads the core configuration. Missing required variables cause
// a fatal log message and exit.
func Load() Config {
	return Config{
		Env:     must("APP_ENV"),
		Port:    must("APP_PORT"),
		DBUser:  must("DB_USER"),
		DBPass:  os.Getenv("DB_PASS"),
		DBHost:  must("DB_HOST"),
		DBPort:  must("DB_PORT"),
		DBName:  must("DB_NAME"),
		LockTTL: time.Duration(envInt("LOCK_TTL_SECONDS", 45)) * time.Second,
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

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
