// aviation/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import "errors"

var (
	ErrNoMatchingFix       = errors.New("No matching fix")
	ErrNoLocalizer         = errors.New("No localizer for runway")
	ErrNoPublishedHold     = errors.New("No published hold at fix")
	ErrInvalidNavDatabase  = errors.New("Invalid navigation database")
	ErrDuplicateLocalizer  = errors.New("Duplicate localizer")
	ErrInvalidHoldLegValue = errors.New("Invalid hold leg length")
)
