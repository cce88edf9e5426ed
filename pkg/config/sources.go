package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-statuspage/pkg/secrets"
)

// EnvPrefix namespaces every environment variable read by ApplyEnv.
const EnvPrefix = "STATUSPAGE_"

// LoadFile reads a YAML file over Defaults, then applies defaults for
// anything still unset and validates.
func LoadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML bytes over Defaults.
func Parse(raw []byte) (Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overlays STATUSPAGE_* environment variables onto cfg, e.g.
// STATUSPAGE_SERVER_ADDR or STATUSPAGE_EMAIL_SMTP_HOST.
func ApplyEnv(cfg *Config) error {
	return applyEnv(cfg, nil)
}

func applyEnv(cfg *Config, environment map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return cfg.Validate()
}

// Masked returns the configuration as a map with secrets hidden, for logging.
func (c Config) Masked() map[string]any {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return secrets.MaskFields(out)
}
