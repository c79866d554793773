// Package config loads typed configuration structs from environment
// variables. A .env file in the working directory is loaded once, before
// the first parse, so local development does not need exported variables.
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrParsingConfig wraps failures from the underlying env parser.
	ErrParsingConfig = errors.New("failed to parse config")

	// ErrNilPointer is returned when Load receives a nil destination.
	ErrNilPointer = errors.New("config destination must be a non-nil pointer")
)

var loadDotEnv sync.Once

// Load populates cfg from environment variables according to its `env`
// struct tags. Required variables that are absent produce an error, which
// makes missing settings a startup failure rather than a latent runtime one.
func Load[T any](cfg *T) error {
	loadDotEnv.Do(func() {
		// The .env file is optional; a missing file is not an error.
		_ = godotenv.Load()
	})

	if cfg == nil {
		return ErrNilPointer
	}

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	return nil
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}
