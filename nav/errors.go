// nav/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import "errors"

var (
	ErrFixNotInRoute     = errors.New("Fix not in aircraft's route")
	ErrInvalidAltitude   = errors.New("Invalid altitude")
	ErrInvalidHeading    = errors.New("Invalid heading")
	ErrInvalidSpeed      = errors.New("Invalid speed")
	ErrInvalidHoldLength = errors.New("Invalid hold leg length")
	ErrNoRoute           = errors.New("Aircraft has no route")
	ErrNotHolding        = errors.New("Aircraft is not holding")
)
