// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for vizchat.
//
// Two files are involved:
//
//   - Settings: ~/.vizchat/config.toml, with VIZCHAT_* environment overrides
//   - Store: the KEY=VALUE selection file holding LLM_API_KEY, LLM_MODEL_ID
//     and OLLAMA, rewritten whenever the chosen model changes
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := config.NewStore(cfg.Chat.EnvFile)
//	changed, err := store.Remember("llava:7b")
package config
