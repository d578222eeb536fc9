// util/text.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import "unicode"

// IsAllNumbers returns true if s is non-empty and only contains the
// digits 0-9.
func IsAllNumbers(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// IsIdentifier returns true if s is non-empty, starts with a letter and
// contains only letters and digits, as navaid and fix names do.
func IsIdentifier(s string) bool {
	for i, ch := range s {
		if i == 0 && !unicode.IsLetter(ch) {
			return false
		}
		if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) {
			return false
		}
	}
	return s != ""
}
