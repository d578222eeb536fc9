// aviation/route.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"log/slog"

	"github.com/sauna-sim/sauna-api-sub001/math"
)

type TurnDirection int

const (
	TurnClosest TurnDirection = iota // default: turn the shortest direction
	TurnLeft
	TurnRight
)

func (t TurnDirection) String() string {
	return []string{"closest", "left", "right"}[int(t)]
}

func (t TurnDirection) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TurnDirection) UnmarshalText(b []byte) error {
	switch string(b) {
	case "", "closest":
		*t = TurnClosest
	case "L", "left":
		*t = TurnLeft
	case "R", "right":
		*t = TurnRight
	default:
		return fmt.Errorf("%s: invalid turn direction", string(b))
	}
	return nil
}

// Sign returns -1 for left turns, 1 for right turns and 0 otherwise.
func (t TurnDirection) Sign() float32 {
	switch t {
	case TurnLeft:
		return -1
	case TurnRight:
		return 1
	default:
		return 0
	}
}

// PointType specifies how a route point is sequenced.
type PointType int

const (
	FlyBy   PointType = iota // the turn to the next leg is anticipated
	FlyOver                  // the point must be overflown before turning
)

func (t PointType) String() string {
	return []string{"fly-by", "fly-over"}[int(t)]
}

// RoutePoint is a named geographic point.
type RoutePoint struct {
	Identifier string        `json:"id"`
	Location   math.Point2LL `json:"location"`
}

type ConstraintType int

const (
	ConstraintNone ConstraintType = iota
	ConstraintAt
	ConstraintAtOrAbove
	ConstraintAtOrBelow
)

func (c ConstraintType) String() string {
	return []string{"none", "at", "at or above", "at or below"}[int(c)]
}

func (c ConstraintType) MarshalText() ([]byte, error) {
	return []byte([]string{"none", "at", "at_or_above", "at_or_below"}[int(c)]), nil
}

func (c *ConstraintType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "", "none":
		*c = ConstraintNone
	case "at":
		*c = ConstraintAt
	case "at_or_above", "+":
		*c = ConstraintAtOrAbove
	case "at_or_below", "-":
		*c = ConstraintAtOrBelow
	default:
		return fmt.Errorf("%s: invalid constraint", string(b))
	}
	return nil
}

// Apply returns the value closest to current that satisfies the
// constraint.
func (c ConstraintType) Apply(current, value float32) float32 {
	switch c {
	case ConstraintAt:
		return value
	case ConstraintAtOrAbove:
		return math.Max(current, value)
	case ConstraintAtOrBelow:
		return math.Min(current, value)
	default:
		return current
	}
}

type AltitudeConstraint struct {
	Type     ConstraintType `json:"type"`
	Altitude float32        `json:"altitude"`
}

type SpeedConstraint struct {
	Type  ConstraintType `json:"type"`
	Speed float32        `json:"speed"`
}

// FmsPoint is a RoutePoint as it appears in the FMS route. Legs that
// share a point hold the same *FmsPoint so that upgrading it to
// fly-over is seen by both of them.
type FmsPoint struct {
	RoutePoint
	Type     PointType
	Altitude AltitudeConstraint
	Speed    SpeedConstraint
}

func NewFmsPoint(id string, p math.Point2LL, t PointType) *FmsPoint {
	return &FmsPoint{RoutePoint: RoutePoint{Identifier: id, Location: p}, Type: t}
}

func (p *FmsPoint) String() string {
	if p == nil {
		return "(none)"
	}
	s := p.Identifier
	if p.Type == FlyOver {
		s += "(FO)"
	}
	if p.Altitude.Type != ConstraintNone {
		s += fmt.Sprintf("/%s %.0f", p.Altitude.Type, p.Altitude.Altitude)
	}
	if p.Speed.Type != ConstraintNone {
		s += fmt.Sprintf("/%s %.0fkt", p.Speed.Type, p.Speed.Speed)
	}
	return s
}

func (p *FmsPoint) LogValue() slog.Value {
	if p == nil {
		return slog.StringValue("(none)")
	}
	return slog.GroupValue(
		slog.String("id", p.Identifier),
		slog.String("location", p.Location.DDString()),
		slog.String("type", p.Type.String()))
}
