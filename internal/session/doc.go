// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session orchestrates turn-taking between the user and the model.
//
// A Controller moves between two states:
//
//	Idle --Submit--> AwaitingResponse --Finished/Failed--> Idle
//
// Reset is valid in both states and cancels the in-flight worker. Worker
// signals carry the turn ID they belong to; signals for any other turn are
// dropped, so a reply that arrives after a reset never reaches the new
// session.
//
// # Usage
//
//	ctrl := session.New(session.Options{
//	    SystemPrompt: cfg.Chat.SystemPrompt,
//	    Model:        selection.Current(),
//	    Store:        config.NewStore(cfg.Chat.EnvFile),
//	    Transcript:   log,
//	    Images:       viewer,
//	    Launcher:     worker.New(client, logger),
//	})
//	ctrl.SetSink(worker.NewTeaSink(program))
package session
