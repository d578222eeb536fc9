// aviation/hold.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"time"

	"github.com/sauna-sim/sauna-api-sub001/math"
)

type HoldEntry int

const (
	HoldEntryDirect HoldEntry = iota
	HoldEntryParallel
	HoldEntryTeardrop
)

func (e HoldEntry) String() string {
	return []string{"Direct", "Parallel", "Teardrop"}[int(e)]
}

// SelectHoldEntry returns the entry procedure for an aircraft arriving
// at the holding fix on the given true track. The sectors are measured
// from the reciprocal of the inbound course: within 70 degrees of it the
// aircraft enters directly; more than 110 degrees from it on the side
// away from the holding turns it flies a teardrop; otherwise it flies a
// parallel entry.
func SelectHoldEntry(track, inboundCourse float32, turn TurnDirection) HoldEntry {
	rel := math.TurnAmount(math.OppositeHeading(inboundCourse), track)
	if math.Abs(rel) <= 70 {
		return HoldEntryDirect
	}

	nonTurnSide := rel < 0
	if turn == TurnLeft {
		nonTurnSide = rel > 0
	}
	if nonTurnSide && math.Abs(rel) > 110 {
		return HoldEntryTeardrop
	}
	return HoldEntryParallel
}

type HoldLegLengthType int

const (
	HoldLegDefault HoldLegLengthType = iota
	HoldLegTime
	HoldLegDistance
)

func (t HoldLegLengthType) MarshalText() ([]byte, error) {
	return []byte([]string{"default", "time", "distance"}[int(t)]), nil
}

func (t *HoldLegLengthType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "", "default":
		*t = HoldLegDefault
	case "time":
		*t = HoldLegTime
	case "distance":
		*t = HoldLegDistance
	default:
		return fmt.Errorf("%s: %w", string(b), ErrInvalidHoldLegValue)
	}
	return nil
}

// HoldLegLength specifies the length of the inbound leg of a hold: the
// altitude-dependent default, a time in minutes, or a distance in nm.
type HoldLegLength struct {
	Type  HoldLegLengthType `json:"type"`
	Value float32           `json:"value"`
}

func (l HoldLegLength) String() string {
	switch l.Type {
	case HoldLegTime:
		return fmt.Sprintf("%.1f min", l.Value)
	case HoldLegDistance:
		return fmt.Sprintf("%.1f nm", l.Value)
	default:
		return "default"
	}
}

// DefaultHoldLegTime returns the standard inbound leg time for holds at
// the given altitude.
func DefaultHoldLegTime(alt float32) time.Duration {
	if alt < 14000 {
		return 60 * time.Second
	}
	return 90 * time.Second
}

// DistanceNM returns the leg length in nautical miles. Timed legs are
// converted using the ground speed the aircraft will have on the inbound
// leg so that it is the inbound leg that takes the specified time.
func (l HoldLegLength) DistanceNM(alt, inboundGS float32) float32 {
	var d time.Duration
	switch l.Type {
	case HoldLegDistance:
		return l.Value
	case HoldLegTime:
		d = time.Duration(float64(l.Value) * float64(time.Minute))
	default:
		d = DefaultHoldLegTime(alt)
	}
	return math.Max(inboundGS, 1) * float32(d.Hours())
}

// PublishedHold is a charted holding pattern.
type PublishedHold struct {
	Fix           string        `json:"fix"`
	InboundCourse float32       `json:"inbound_course"` // magnetic
	Turn          TurnDirection `json:"turn"`
	LegLength     HoldLegLength `json:"leg_length"`
	MinAltitude   float32       `json:"min_altitude,omitempty"`
	MaxAltitude   float32       `json:"max_altitude,omitempty"`
	Speed         float32       `json:"speed,omitempty"`
}

// HoldingSpeed returns the holding speed in knots for the given altitude.
// If the hold has a published holding speed, that is returned. Otherwise,
// standard holding speeds are applied based on altitude.
func (h PublishedHold) HoldingSpeed(alt float32) float32 {
	if h.Speed > 0 {
		return h.Speed
	} else if alt <= 6000 {
		return 200
	} else if alt <= 14000 {
		return 230
	} else {
		return 265
	}
}
