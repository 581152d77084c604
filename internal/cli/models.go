// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// models.go - The models command.

package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/vizchat/internal/model"
)

// HandleModels prints the model list, marking the one the next session
// would use. An unreachable server lists only the default model.
func HandleModels(ctx context.Context, args *ArgParser, deps Deps) error {
	out := deps.out()
	names := deps.Client.ModelNames(ctx, deps.Settings.Ollama.DefaultModel)
	selection := model.NewSelection(names, deps.persistedModel())

	if args.BoolFlag("plain") {
		for _, name := range selection.Names() {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	fmt.Fprintln(out, render(TitleStyle, "Models")+" "+render(DimStyle, deps.Settings.Ollama.URL))
	for _, name := range selection.Names() {
		if name == selection.Current() {
			fmt.Fprintf(out, "* %s\n", render(HighlightStyle, name))
		} else {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}
	return nil
}
