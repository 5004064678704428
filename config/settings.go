package config

import (
	"fmt"
	"os"

	"github.com/imdario/mergo"
	"github.com/joho/godotenv"
)

// Settings holds machine specific values which are usually supplied by a
// .env file and can be overridden on the command line.
type Settings struct {
	// SIMG_PATH
	ImagePath string
	// DATASETS_ROOT_PATH
	DatasetsRoot string
	// LOG_PATH
	LogPath string
	// PYKERNEL
	Kernel string
}

// DefaultSettings returns the built-in fallbacks.
func DefaultSettings() Settings {
	return Settings{
		LogPath: "./logs",
	}
}

// LoadEnvFile reads KEY=value pairs from a .env file. A missing file is not
// an error and yields empty Settings.
func LoadEnvFile(path string) (Settings, error) {
	if path == "" {
		return Settings{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Settings{}, nil
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return Settings{
		ImagePath:    env["SIMG_PATH"],
		DatasetsRoot: env["DATASETS_ROOT_PATH"],
		LogPath:      env["LOG_PATH"],
		Kernel:       env["PYKERNEL"],
	}, nil
}

// MergeSettings layers the given settings over the defaults. Later arguments
// win; empty fields never overwrite.
func MergeSettings(layers ...Settings) (Settings, error) {
	s := DefaultSettings()
	for _, l := range layers {
		if err := mergo.MergeWithOverwrite(&s, l); err != nil {
			return s, err
		}
	}
	return s, nil
}
