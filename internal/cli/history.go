// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - The history command.

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/vizchat/internal/util"
)

// DefaultHistoryLimit is how many turns history prints without --limit.
const DefaultHistoryLimit = 10

// previewRunes bounds a reply shown without --full.
const previewRunes = 240

// ErrArchiveDisabled is returned when history is asked for but archiving
// is off.
var ErrArchiveDisabled = errors.New("the archive is disabled; set [archive] enabled = true in config.toml")

// HandleHistory prints the most recent archived turns, newest first.
func HandleHistory(ctx context.Context, args *ArgParser, deps Deps) error {
	if deps.Archive == nil {
		return ErrArchiveDisabled
	}

	limit := DefaultHistoryLimit
	if args.HasFlag("limit") {
		n, err := ParseIntWithValidation(args.Flag("limit"), "--limit")
		if err != nil {
			return err
		}
		limit = n
	}
	full := args.BoolFlag("full")

	turns, err := deps.Archive.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}

	out := deps.out()
	if len(turns) == 0 {
		fmt.Fprintln(out, render(DimStyle, "No archived turns yet."))
		return nil
	}

	for i, t := range turns {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s  %s  %s\n",
			render(DimStyle, t.CreatedAt.Local().Format("2006-01-02 15:04")),
			render(HighlightStyle, t.Model),
			util.ShortenPath(t.ImagePath, 48))
		fmt.Fprintf(out, "> %s\n", t.Prompt)

		response := strings.TrimSpace(t.Response)
		if !full {
			response = util.TruncateRunes(response, previewRunes)
		}
		fmt.Fprintln(out, response)
	}
	return nil
}
