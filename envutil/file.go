package envutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFileType is returned when the file extension is not recognized.
var ErrUnknownFileType = errors.New("env file doesn't have a known file suffix")

// LoadEnvFile reads variables from a file, picking the format by extension
// (case-insensitive):
//   - .env: KEY=VALUE lines, parsed by godotenv (comments and "export" allowed)
//   - .json: {"env": {"KEY": "VALUE"}}
//   - .yml / .yaml: a top-level env mapping
//
// The variables are returned, not applied. Pass them to Apply to set them on
// the process, or to WithEnvOverrides to scope them to a context.
//
// Example:
//
//	vars, err := envutil.LoadEnvFile("config/local.env")
//	if err != nil {
//	    return err
//	}
//	ctx = envutil.WithEnvOverrides(ctx, vars)
//
// Errors come from reading the file, from parsing it, or are
// ErrUnknownFileType for any other extension.
func LoadEnvFile(path string) (map[string]string, error) {
	name := strings.ToLower(filepath.Base(path))

	switch {
	case strings.HasSuffix(name, ".env"):
		return godotenv.Read(path)
	case strings.HasSuffix(name, ".json"):
		return loadJSONFile(path)
	case strings.HasSuffix(name, ".yml"), strings.HasSuffix(name, ".yaml"):
		return loadYAMLFile(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFileType, name)
	}
}

// Apply copies vars into the process environment in key order, stopping at
// the first failure. Prefer WithEnvOverrides in tests; Apply affects the
// whole process.
func Apply(vars map[string]string) error {
	for _, key := range slices.Sorted(maps.Keys(vars)) {
		if err := os.Setenv(key, vars[key]); err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	}

	return nil
}

// WithEnvOverrides layers every entry of vars onto ctx via WithEnvOverride.
func WithEnvOverrides(ctx context.Context, vars map[string]string) context.Context {
	for key, value := range vars {
		ctx = WithEnvOverride(ctx, key, value)
	}

	return ctx
}

// envFile is the shape of JSON and YAML env files.
type envFile struct {
	Env map[string]string `json:"env" yaml:"env"`
}

// loadJSONFile reads the env object of a JSON file.
func loadJSONFile(path string) (map[string]string, error) {
	bts, err := os.ReadFile(path) // #nosec G304 -- path is the intended file to load
	if err != nil {
		return nil, err
	}

	var out envFile

	if err := json.Unmarshal(bts, &out); err != nil {
		return nil, err
	}

	return out.Env, nil
}

// loadYAMLFile reads the env mapping of a YAML file.
func loadYAMLFile(path string) (map[string]string, error) {
	bts, err := os.ReadFile(path) // #nosec G304 -- path is the intended file to load
	if err != nil {
		return nil, err
	}

	var out envFile

	if err := yaml.Unmarshal(bts, &out); err != nil {
		return nil, err
	}

	return out.Env, nil
}
