// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the vizchat packages.
package util

import (
	"strconv"
	"time"
)

// IntToString converts an int to string.
func IntToString(i int) string {
	return strconv.Itoa(i)
}

// Percent renders a factor such as a zoom level as a whole percentage.
func Percent(f float64) string {
	return strconv.Itoa(int(f*100+0.5)) + "%"
}

// FormatDuration returns a compact human-readable duration such as "4m 12s".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return IntToString(int(d.Seconds())) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return IntToString(mins) + "m"
	}
	return IntToString(mins) + "m " + IntToString(secs) + "s"
}
