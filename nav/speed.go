// nav/speed.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"time"

	av "github.com/sauna-sim/sauna-api-sub001/aviation"
	"github.com/sauna-sim/sauna-api-sub001/math"
)

// DefaultAcceleration is the rate in knots per second at which the
// autothrottle changes the airspeed.
const DefaultAcceleration = 2

// SpeedTarget is an assigned speed: an IAS, or a Mach number if Mach is
// non-zero, and a constraint on how it applies.
type SpeedTarget struct {
	Constraint av.ConstraintType
	IAS        float32
	Mach       float32
}

func (s SpeedTarget) String() string {
	var v string
	if s.Mach > 0 {
		v = fmt.Sprintf("M%.2f", s.Mach)
	} else {
		v = fmt.Sprintf("%.0fkt", s.IAS)
	}
	switch s.Constraint {
	case av.ConstraintNone:
		return "(none)"
	case av.ConstraintAtOrAbove:
		return v + " or greater"
	case av.ConstraintAtOrBelow:
		return v + " or less"
	default:
		return v
	}
}

// TargetIAS returns the IAS the aircraft should fly given its current
// state.
func (s SpeedTarget) TargetIAS(pos *AircraftPosition) float32 {
	value := s.IAS
	if s.Mach > 0 {
		tas := av.MachToTAS(s.Mach, pos.Temperature())
		value = av.TASToIAS(tas, pos.StaticPressure(), pos.Temperature())
	}
	return s.Constraint.Apply(pos.IAS(), value)
}

// updateSpeed moves the aircraft's IAS toward the target at accel knots
// per second.
func updateSpeed(pos *AircraftPosition, target SpeedTarget, accel float32, dt time.Duration) {
	if target.Constraint == av.ConstraintNone {
		return
	}
	ias := pos.IAS()
	goal := target.TargetIAS(pos)
	if ias == goal {
		return
	}
	step := accel * float32(dt.Seconds())
	if math.Abs(goal-ias) <= step {
		pos.SetIAS(goal)
	} else {
		pos.SetIAS(ias + math.Sign(goal-ias)*step)
	}
}
