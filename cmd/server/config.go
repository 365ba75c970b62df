package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the server configuration. Flags win over environment variables,
// which win over defaults.
type Config struct {
	Port      int
	DBPath    string
	RedisAddr string
	CacheTTL  time.Duration
	Seed      string
	Dev       bool
}

// loadDotEnv reads path into the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func parseConfig(args []string, getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:     8080,
		DBPath:   "salary.db",
		CacheTTL: 10 * time.Minute,
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := getenv("DATABASE_PATH"); v != "" {
		cfg.DBPath = v
	}
	cfg.RedisAddr = getenv("REDIS_ADDR")
	if v := getenv("CITY_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid CITY_CACHE_TTL %q: %w", v, err)
		}
		cfg.CacheTTL = ttl
	}
	cfg.Seed = getenv("CITY_SEED")
	if v := getenv("LOG_DEV"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid LOG_DEV %q: %w", v, err)
		}
		cfg.Dev = dev
	}

	fset := flag.NewFlagSet("server", flag.ContinueOnError)
	fset.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fset.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fset.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for the city tax cache (empty disables it)")
	fset.DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "City tax cache TTL")
	fset.StringVar(&cfg.Seed, "seed", cfg.Seed, `City seed: "standard" or a JSON file path`)
	fset.BoolVar(&cfg.Dev, "dev", cfg.Dev, "Development logging")
	if err := fset.Parse(args); err != nil {
		return cfg, err
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("port %d out of range", cfg.Port)
	}
	return cfg, nil
}

func mustParseConfig() Config {
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := parseConfig(os.Args[1:], os.Getenv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return cfg
}
