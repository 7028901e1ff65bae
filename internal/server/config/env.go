package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix namespaces every variable, e.g. GOPHAUTH_SECRET_KEY.
const EnvPrefix = "GOPHAUTH_"

// defaultEnvFile is loaded when present; an explicit -env-file must exist.
const defaultEnvFile = ".env"

// parseEnv loads the dotenv file into the process environment (without
// overriding variables already set) and then overlays GOPHAUTH_* values.
// A non-nil environ replaces the process environment entirely.
func parseEnv(config *Config, args []string, environ map[string]string) error {
	if environ == nil {
		if err := loadDotenv(flagx.EnvFileFlag(args)); err != nil {
			return err
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	return env.ParseWithOptions(config, opts)
}

func loadDotenv(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}
	err := godotenv.Load(defaultEnvFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
