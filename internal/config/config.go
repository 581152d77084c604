// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for vizchat.
//
// Configuration file locations (in order of precedence):
//   - VIZCHAT_* environment variables
//   - ~/.vizchat/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/jeranaias/vizchat/internal/util"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "VIZCHAT_"

// DefaultSystemPrompt is sent as the first history entry of every session.
const DefaultSystemPrompt = "You are an AI assistant analyzing images. Provide detailed and accurate descriptions of the image contents."

// =============================================================================
// SETTINGS STRUCTURES
// =============================================================================

// Settings represents the complete vizchat configuration.
type Settings struct {
	Ollama  OllamaSettings  `toml:"ollama"`
	Chat    ChatSettings    `toml:"chat"`
	UI      UISettings      `toml:"ui"`
	Log     LogSettings     `toml:"log"`
	Archive ArchiveSettings `toml:"archive"`
}

// OllamaSettings describes the local inference server.
type OllamaSettings struct {
	// URL is the Ollama base URL
	URL string `toml:"url" env:"OLLAMA_URL"`
	// DefaultModel is used when the server cannot list its models
	DefaultModel string `toml:"default_model" env:"MODEL"`
	// StreamTimeoutSecs bounds a single reply; 0 disables the limit
	StreamTimeoutSecs int `toml:"stream_timeout_secs" env:"STREAM_TIMEOUT_SECS"`
}

// ChatSettings controls the conversation.
type ChatSettings struct {
	SystemPrompt string `toml:"system_prompt" env:"SYSTEM_PROMPT"`
	// EnvFile holds the persisted model selection (KEY=VALUE lines)
	EnvFile string `toml:"env_file" env:"ENV_FILE"`
}

// UISettings controls the terminal front-end.
type UISettings struct {
	// MarkdownStyle is a glamour style name: auto, dark, light, notty
	MarkdownStyle string `toml:"markdown_style" env:"MARKDOWN_STYLE"`
	// ImageRatio is the share of the screen width given to the image pane
	ImageRatio float64 `toml:"image_ratio" env:"IMAGE_RATIO"`
}

// LogSettings controls the debug log file.
type LogSettings struct {
	Path  string `toml:"path" env:"LOG_PATH"`
	Level string `toml:"level" env:"LOG_LEVEL"`
}

// ArchiveSettings controls the SQLite archive of completed turns.
type ArchiveSettings struct {
	Enabled bool   `toml:"enabled" env:"ARCHIVE"`
	Path    string `toml:"path" env:"ARCHIVE_PATH"`
}

// StreamTimeout returns the reply timeout as a duration.
func (o OllamaSettings) StreamTimeout() time.Duration {
	return time.Duration(o.StreamTimeoutSecs) * time.Second
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration. Paths are left empty and
// resolved against ConfigDir by fillDefaults.
func Default() *Settings {
	return &Settings{
		Ollama: OllamaSettings{
			URL:               "http://localhost:11434",
			DefaultModel:      "gemma3:latest",
			StreamTimeoutSecs: 0,
		},
		Chat: ChatSettings{
			SystemPrompt: DefaultSystemPrompt,
		},
		UI: UISettings{
			MarkdownStyle: "auto",
			ImageRatio:    0.5,
		},
		Log: LogSettings{
			Level: "info",
		},
		Archive: ArchiveSettings{
			Enabled: false,
		},
	}
}

// ConfigDir returns the path to the vizchat configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".vizchat"), nil
}

// ConfigPath returns the path to the TOML configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// fillDefaults resolves empty paths inside dir.
func (s *Settings) fillDefaults(dir string) {
	if s.Chat.EnvFile == "" {
		s.Chat.EnvFile = filepath.Join(dir, ".env")
	}
	if s.Log.Path == "" {
		s.Log.Path = filepath.Join(dir, "vizchat.log")
	}
	if s.Archive.Path == "" {
		s.Archive.Path = filepath.Join(dir, "history.db")
	}
	if s.Chat.SystemPrompt == "" {
		s.Chat.SystemPrompt = DefaultSystemPrompt
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads ~/.vizchat/config.toml if present, then applies environment
// overrides and validates the result. A missing file yields the defaults.
func Load() (*Settings, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the configuration from a specific TOML file.
// Relative default paths are placed next to that file.
func LoadFromPath(path string) (*Settings, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.fillDefaults(filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides overlays VIZCHAT_* environment variables.
// Unset variables leave the current values alone.
func (s *Settings) ApplyEnvOverrides() error {
	if err := env.ParseWithOptions(s, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment overrides: %w", err)
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to ~/.vizchat/config.toml.
func Save(cfg *Settings) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration as TOML to path.
func SaveToPath(cfg *Settings, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# vizchat configuration file\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validStyles = map[string]bool{"auto": true, "dark": true, "light": true, "notty": true, "ascii": true}
	validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate checks the configuration and returns every problem found.
func (s *Settings) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(s.Ollama.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "ollama.url",
			Message: fmt.Sprintf("invalid URL '%s'", s.Ollama.URL),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "ollama.url",
			Message: fmt.Sprintf("unsupported scheme '%s', must be http or https", u.Scheme),
		})
	}

	if strings.TrimSpace(s.Ollama.DefaultModel) == "" {
		errs = append(errs, ValidationError{Field: "ollama.default_model", Message: "cannot be empty"})
	}

	if s.Ollama.StreamTimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "ollama.stream_timeout_secs", Message: "cannot be negative"})
	}

	if !validStyles[strings.ToLower(s.UI.MarkdownStyle)] {
		errs = append(errs, ValidationError{
			Field:   "ui.markdown_style",
			Message: fmt.Sprintf("invalid style '%s', must be one of: auto, dark, light, notty, ascii", s.UI.MarkdownStyle),
		})
	}

	if s.UI.ImageRatio < 0.2 || s.UI.ImageRatio > 0.8 {
		errs = append(errs, ValidationError{
			Field:   "ui.image_ratio",
			Message: fmt.Sprintf("%.2f out of range, must be between 0.2 and 0.8", s.UI.ImageRatio),
		})
	}

	if !validLevels[strings.ToLower(s.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", s.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
