// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Keys written to the selection store.
const (
	KeyAPIKey = "LLM_API_KEY"
	KeyModel  = "LLM_MODEL_ID"
	KeyOllama = "OLLAMA"
)

// =============================================================================
// SELECTION STORE
// =============================================================================

// Values is the content of the selection store.
type Values struct {
	APIKey  string
	ModelID string
	Ollama  bool
}

// Store persists the model selection as KEY=VALUE lines.
//
// The store is read at startup and before each send and rewritten in full
// only when the selection changes. It has a single writer, the session
// controller, so it carries no locking.
type Store struct {
	path string
}

// NewStore creates a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the store. A missing file yields zero values and no error.
func (s *Store) Load() (Values, error) {
	m, err := godotenv.Read(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Values{}, nil
		}
		return Values{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	return Values{
		APIKey:  m[KeyAPIKey],
		ModelID: m[KeyModel],
		Ollama:  m[KeyOllama] == "1" || m[KeyOllama] == "true",
	}, nil
}

// Save rewrites the whole file.
func (s *Store) Save(v Values) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	ollama := "0"
	if v.Ollama {
		ollama = "1"
	}
	m := map[string]string{
		KeyAPIKey: v.APIKey,
		KeyModel:  v.ModelID,
		KeyOllama: ollama,
	}
	if err := godotenv.Write(m, s.path); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Remember persists model as the selection if it differs from the stored
// one. It reports whether the file was rewritten. The local-mode flag is
// always set on write.
func (s *Store) Remember(model string) (bool, error) {
	v, err := s.Load()
	if err != nil {
		return false, err
	}
	if v.ModelID == model && v.Ollama {
		return false, nil
	}
	v.ModelID = model
	v.Ollama = true
	if err := s.Save(v); err != nil {
		return false, err
	}
	return true, nil
}
