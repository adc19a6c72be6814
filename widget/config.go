package widget

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/chatwidget/conversation"
	"github.com/tailored-agentic-units/chatwidget/storage"
	"github.com/tailored-agentic-units/chatwidget/transport"
)

const defaultObserver = "slog"

// Config holds initialization parameters for all widget subsystems.
// Each subsystem section delegates to that subsystem's constructor.
type Config struct {
	Transport    transport.Config    `json:"transport" yaml:"transport"`
	Storage      storage.Config      `json:"storage" yaml:"storage"`
	Conversation conversation.Config `json:"conversation" yaml:"conversation"`
	Observer     string              `json:"observer,omitempty" yaml:"observer,omitempty" env:"CHATWIDGET_OBSERVER"` // Registered observer name.
}

// DefaultConfig returns a Config with defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Transport:    transport.DefaultConfig(),
		Storage:      storage.DefaultConfig(),
		Conversation: conversation.DefaultConfig(),
		Observer:     defaultObserver,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Transport.Merge(&source.Transport)
	c.Storage.Merge(&source.Storage)
	c.Conversation.Merge(&source.Conversation)

	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// LoadConfig reads a config file, merges it with defaults, then applies
// CHATWIDGET_* environment overrides. Files ending in .yaml or .yml are
// parsed as YAML, anything else as JSON. An empty filename skips the file.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		var loaded Config
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, &loaded)
		default:
			err = json.Unmarshal(data, &loaded)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		cfg.Merge(&loaded)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}
