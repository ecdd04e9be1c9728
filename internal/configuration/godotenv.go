package configuration

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
)

// GodotenvProvider reads settings files with godotenv. Settings files are
// often shared with the shell environment of a boot harness, so with a
// Prefix set only keys carrying it are returned.
type GodotenvProvider struct {
	Prefix string
}

// Read reads KEY=value settings files into a map (map[key]value). Keys of
// later files override those of earlier ones.
func (p *GodotenvProvider) Read(filenames ...string) (map[string]string, error) {
	data, err := godotenv.Read(filenames...)
	if err != nil {
		return data, fmt.Errorf("(config-godotenv) %w", err)
	}

	if p.Prefix == "" {
		return data, nil
	}

	for key := range data {
		if !strings.HasPrefix(key, p.Prefix) {
			slog.Debug("Ignoring foreign settings key.",
				"key", key,
			)
			delete(data, key)
		}
	}

	return data, nil
}
