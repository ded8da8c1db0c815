package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env"
)

type Config struct {
	Address            string        `env:"RUN_ADDRESS" envDefault:"localhost:8080"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseConnection string        `env:"DATABASE_URI"`
	JWTSecret          string        `env:"JWT_SECRET" envDefault:"dontexposethis"`
	JWTTTL             time.Duration `env:"JWT_TTL" envDefault:"24h"`
	CancelWindow       time.Duration `env:"CANCEL_WINDOW" envDefault:"2m"`
	PromiseMinutes     int           `env:"DELIVERY_PROMISE_MINUTES" envDefault:"10"`
	GeocoderAddress    string        `env:"GEOCODER_ADDRESS"`
	GeocoderTimeout    time.Duration `env:"GEOCODER_TIMEOUT" envDefault:"2s"`
	SweepWorkers       int           `env:"DISPATCH_SWEEP_WORKERS" envDefault:"4"`
	SweepInterval      time.Duration `env:"DISPATCH_SWEEP_INTERVAL" envDefault:"5s"`
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("ENV JWT_SECRET must be set")
	}

	address := flag.String("a", cfg.Address, "{Host:port} for server")
	loglevel := flag.String("l", cfg.LogLevel, "Log level for server")
	databaseConnection := flag.String("d", cfg.DatabaseConnection, "Database connection string")
	jwtTTL := flag.Duration("t", cfg.JWTTTL, "TTL for JWT token (e.g. 24h; 30m)")
	cancelWindow := flag.Duration("c", cfg.CancelWindow, "Customer cancellation window after checkout")
	promiseMinutes := flag.Int("p", cfg.PromiseMinutes, "Delivery promise in minutes")
	geocoderAddress := flag.String("g", cfg.GeocoderAddress, "Reverse geocoder base URL (empty disables)")
	sweepWorkers := flag.Int("w", cfg.SweepWorkers, "Size of auto-dispatch worker pool")
	sweepInterval := flag.Duration("i", cfg.SweepInterval, "Auto-dispatch sweep interval")

	flag.Parse()

	cfg.Address = *address
	cfg.LogLevel = *loglevel
	cfg.DatabaseConnection = *databaseConnection
	cfg.JWTTTL = *jwtTTL
	cfg.CancelWindow = *cancelWindow
	cfg.PromiseMinutes = *promiseMinutes
	cfg.GeocoderAddress = *geocoderAddress
	cfg.SweepWorkers = *sweepWorkers
	cfg.SweepInterval = *sweepInterval

	return cfg, nil
}
