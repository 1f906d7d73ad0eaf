// Package config builds the flattened env map handed to every component's
// Configure method.
//
// Values are layered, lowest precedence first:
//  1. defaults (Defaults)
//  2. a YAML file, when CONFIG_FILE is set
//  3. the process environment
package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const EnvConfigFile string = "CONFIG_FILE"

// Defaults returns the values used when neither the file nor the environment
// provides one.
func Defaults() map[string]string {
	return map[string]string{
		"BACKEND_BASE_URL":     "http://localhost:8000",
		"CLIENT_TIMEOUT":       "0",
		"CACHE_DISABLED":       "false",
		"CACHE_TTL":            "300",
		"CACHE_PRUNE_INTERVAL": "10",
		"LOG_LEVEL":            "error",
		"LOG_FORMAT":           "json",
		"SERVICE_ADDRESS":      "",
		"SERVICE_PORT":         "8000",
	}
}

// Load returns the layered configuration; the file path is taken from
// CONFIG_FILE in the environment.
func Load(ctx context.Context) (map[string]string, error) {
	return LoadFile(ctx, os.Getenv(EnvConfigFile))
}

// LoadFile is Load with an explicit file path; an empty path skips the file
// layer.
func LoadFile(_ context.Context, path string) (map[string]string, error) {
	envs := Defaults()
	if path != "" {
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "error while loading config file %s", path)
		}
		merge(envs, k)
	}
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return s
	}), nil); err != nil {
		return nil, errors.Wrap(err, "error while loading environment")
	}
	merge(envs, k)
	return envs, nil
}

// merge flattens nested keys to upper snake case (backend.base_url becomes
// BACKEND_BASE_URL) and copies them into envs.
func merge(envs map[string]string, k *koanf.Koanf) {
	for key, value := range k.All() {
		key = strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		switch v := value.(type) {
		case nil:
			envs[key] = ""
		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				items = append(items, fmt.Sprint(item))
			}
			envs[key] = strings.Join(items, ",")
		default:
			envs[key] = fmt.Sprint(v)
		}
	}
}
