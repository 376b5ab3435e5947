// Package config loads server settings from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	DBPath          string        `env:"DB_PATH" envDefault:"blackout.db"`
	DefaultLanguage string        `env:"DEFAULT_LANGUAGE" envDefault:"de"`
	MinPlayers      int           `env:"MIN_PLAYERS" envDefault:"3"`
	MinRounds       int           `env:"MIN_ROUNDS" envDefault:"1"`
	MaxRounds       int           `env:"MAX_ROUNDS" envDefault:"20"`
	DefaultRounds   int           `env:"DEFAULT_ROUNDS" envDefault:"5"`
	RoundEndDelay   time.Duration `env:"ROUND_END_DELAY" envDefault:"8s"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	IdleReclaim     time.Duration `env:"IDLE_RECLAIM" envDefault:"2m"`
	EndedReclaim    time.Duration `env:"ENDED_RECLAIM" envDefault:"10m"`
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
