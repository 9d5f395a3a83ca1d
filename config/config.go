package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"ballphys/game"
	"ballphys/physics"
	"ballphys/protocol"
)

const DefaultEnvFile = ".env"

// Config is read from BALLPHYS_* variables. Unset variables keep the value
// from Default.
type Config struct {
	Engine   string      `env:"ENGINE"`
	Codec    string      `env:"CODEC"`
	MaxFrame int         `env:"MAX_FRAME"`
	Tuning   game.Tuning // fields tagged in package game
}

const EnvPrefix = "BALLPHYS_"

func Default() Config {
	return Config{
		Engine:   physics.EngineBox2D,
		Codec:    "json",
		MaxFrame: protocol.DefaultMaxFrame,
		Tuning:   game.DefaultTuning(),
	}
}

// InitConfig loads the given env files into the process environment. A
// missing DefaultEnvFile is fine; any other missing or malformed file is not.
func InitConfig(files ...string) error {
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		if err == nil {
			log.Printf("loaded environment from %s", f)
			continue
		}
		if f == DefaultEnvFile && errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("load %s: %w", f, err)
	}
	return nil
}

// Load runs InitConfig and builds a Config from the environment on top of
// the defaults.
func Load(files ...string) (Config, error) {
	if err := InitConfig(files...); err != nil {
		return Config{}, err
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	c := Default()
	if err := env.ParseWithOptions(&c, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if _, err := physics.New(c.Engine); err != nil {
		return err
	}
	if _, err := protocol.NewCodec(c.Codec); err != nil {
		return err
	}
	if c.MaxFrame <= 0 {
		return fmt.Errorf("max frame must be positive, got %d", c.MaxFrame)
	}
	return c.Tuning.Validate()
}
