package env

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from .env files. ENV_PATH, when
// set, overrides the default paths. A missing file is fatal only in local
// mode; deployed environments inject their variables directly.
func LoadDotEnv(env string, defaultPaths ...string) error {
	paths := defaultPaths
	if envPath := os.Getenv("ENV_PATH"); envPath != "" {
		paths = []string{envPath}
	}

	err := godotenv.Load(paths...)
	if err != nil {
		if env == "local" || env == "" {
			slog.Error("Failed to load environment variables in local mode", "error", err)
			return err
		}
		slog.Debug("Skipping .env ...")
	}

	return nil
}
