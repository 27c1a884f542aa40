package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/timecapsule/internal/flagx"
)

// parseEnv loads the dotenv file (-envfile, or ./.env when present) into
// the process environment and overlays every variable that is set.
// Variables already present in the environment win over the file.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
