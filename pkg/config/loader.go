package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cidadaoai/sentinela/pkg/models"
)

var validate = validator.New()

// Load reads a YAML file at path, merges it over Default() (file values
// win, zero-valued fields fall back to the default), validates the
// result, and returns it. A missing path is not an error: it returns
// Default() unchanged, since every field in this Config already has a
// sensible default (spec §6.5).
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, validate.Struct(cfg)
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, validate.Struct(cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var fromFile Config
	if err := yaml.Unmarshal(raw, &fromFile); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := mergo.Merge(&cfg, fromFile, mergo.WithOverride); err != nil {
		return Config{}, fmt.Errorf("config: merge %s: %w", path, err)
	}
	cfg.Endpoints = mergeEndpoints(BuiltinEndpoints(), fromFile.Endpoints)

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: invalid %s: %w", path, err)
	}
	return cfg, nil
}

// mergeEndpoints overlays user-declared endpoints onto the built-in seed
// catalog, a user entry with the same id replacing the built-in one
// entirely (mirrors the teacher's mergeMCPServers override-by-id rule in
// pkg/config/merge.go).
func mergeEndpoints(builtin, user []models.APIEndpoint) []models.APIEndpoint {
	byID := make(map[string]models.APIEndpoint, len(builtin)+len(user))
	var order []string
	for _, ep := range builtin {
		byID[ep.ID] = ep
		order = append(order, ep.ID)
	}
	for _, ep := range user {
		if _, exists := byID[ep.ID]; !exists {
			order = append(order, ep.ID)
		}
		byID[ep.ID] = ep
	}
	out := make([]models.APIEndpoint, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}
