package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the process reads from the environment. A local
// .env file is loaded first (without overriding real env vars) in main.
type Config struct {
	Port        string `env:"PORT" envDefault:"8081"`
	DSN         string `env:"DB_DSN,required"`
	JWTSecret   string `env:"JWT_SECRET" envDefault:"dev-insecure-secret-change"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
