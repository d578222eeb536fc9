// sim/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import "errors"

var (
	ErrAircraftRunning      = errors.New("Aircraft is already running")
	ErrAircraftStopped      = errors.New("Aircraft is no longer running")
	ErrCommandFailed        = errors.New("Command failed")
	ErrCommandQueueStopped  = errors.New("Command queue is not running")
	ErrDisconnected         = errors.New("Disconnected")
	ErrDuplicateCallsign    = errors.New("Duplicate callsign")
	ErrInvalidAltimeter     = errors.New("Invalid altimeter setting")
	ErrInvalidCommandSyntax = errors.New("Invalid command syntax")
	ErrInvalidConfig        = errors.New("Invalid configuration")
	ErrInvalidScenario      = errors.New("Invalid scenario")
	ErrNoMatchingAircraft   = errors.New("No matching aircraft")
	ErrSimStopped           = errors.New("Sim is not running")
	ErrUnknownLegType       = errors.New("Unknown leg type")
)
