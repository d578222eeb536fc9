// nav/vertical.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"time"

	"github.com/sauna-sim/sauna-api-sub001/math"
)

const (
	// Maximum rate used to capture and hold an assigned altitude.
	AltitudeHoldRate = 500 // fpm
	// Slack allowed when deciding that the next tick reaches the target.
	altitudeCaptureSlack = 0.5 // feet

	feetPerMinutePerKnot = math.NauticalMilesToFeet / 60
)

type VerticalMode int

const (
	VerticalModeAltitude VerticalMode = iota
	VerticalModeVerticalSpeed
	VerticalModeFlightPathAngle
	VerticalModeGlidepath
)

func (m VerticalMode) String() string {
	return []string{"ALT", "VS", "FPA", "GS"}[int(m)]
}

// VerticalInstruction is a vertical control law. The set of
// implementations is closed: AltitudeHold, VerticalSpeed, FlightPathAngle
// and Glidepath.
type VerticalInstruction interface {
	Mode() VerticalMode
	ShouldActivate(pos *AircraftPosition, fms *AircraftFms, dt time.Duration) bool
	Update(pos *AircraftPosition, fms *AircraftFms, dt time.Duration)
	String() string

	vertical()
}

// climb changes the aircraft's altitude at the given rate for dt and sets
// the vertical speed and pitch to match.
func climb(pos *AircraftPosition, fpm float32, dt time.Duration) {
	setVerticalSpeed(pos, fpm)
	if fpm != 0 {
		pos.SetIndicatedAltitude(pos.IndicatedAltitude() + fpm*float32(dt.Minutes()))
	}
}

func setVerticalSpeed(pos *AircraftPosition, fpm float32) {
	pos.SetVerticalSpeed(fpm)
	if gs := pos.GS(); gs > 0 {
		pos.SetPitch(math.Degrees(math.Atan(fpm / (gs * feetPerMinutePerKnot))))
	} else {
		pos.SetPitch(0)
	}
}

///////////////////////////////////////////////////////////////////////////
// AltitudeHold

// AltitudeHold captures and holds an indicated altitude.
type AltitudeHold struct {
	Altitude float32
}

func (a *AltitudeHold) Mode() VerticalMode { return VerticalModeAltitude }
func (a *AltitudeHold) vertical()          {}

// ShouldActivate returns true if the altitude the aircraft will have
// after the next tick brackets the target.
func (a *AltitudeHold) ShouldActivate(pos *AircraftPosition, fms *AircraftFms, dt time.Duration) bool {
	remaining := math.Abs(a.Altitude - pos.IndicatedAltitude())
	return remaining <= math.Abs(pos.VerticalSpeed())*float32(dt.Minutes())+altitudeCaptureSlack
}

func (a *AltitudeHold) Update(pos *AircraftPosition, fms *AircraftFms, dt time.Duration) {
	diff := a.Altitude - pos.IndicatedAltitude()
	step := AltitudeHoldRate * float32(dt.Minutes())
	if math.Abs(diff) <= step+altitudeCaptureSlack {
		if diff != 0 {
			pos.SetIndicatedAltitude(a.Altitude)
		}
		setVerticalSpeed(pos, 0)
		return
	}
	climb(pos, math.Sign(diff)*AltitudeHoldRate, dt)
}

func (a *AltitudeHold) String() string {
	return fmt.Sprintf("ALT %.0f", a.Altitude)
}

///////////////////////////////////////////////////////////////////////////
// VerticalSpeed

type VerticalSpeed struct {
	Rate float32 // fpm
}

func (v *VerticalSpeed) Mode() VerticalMode { return VerticalModeVerticalSpeed }
func (v *VerticalSpeed) vertical()          {}

func (v *VerticalSpeed) ShouldActivate(*AircraftPosition, *AircraftFms, time.Duration) bool {
	return true
}

func (v *VerticalSpeed) Update(pos *AircraftPosition, fms *AircraftFms, dt time.Duration) {
	climb(pos, v.Rate, dt)
}

func (v *VerticalSpeed) String() string {
	return fmt.Sprintf("VS %+.0f", v.Rate)
}

///////////////////////////////////////////////////////////////////////////
// FlightPathAngle

// FlightPathAngle climbs or descends along a fixed angle over the ground;
// negative angles descend.
type FlightPathAngle struct {
	Angle float32 // degrees
}

func (f *FlightPathAngle) Mode() VerticalMode { return VerticalModeFlightPathAngle }
func (f *FlightPathAngle) vertical()          {}

func (f *FlightPathAngle) ShouldActivate(*AircraftPosition, *AircraftFms, time.Duration) bool {
	return true
}

func (f *FlightPathAngle) Update(pos *AircraftPosition, fms *AircraftFms, dt time.Duration) {
	climb(pos, pos.GS()*feetPerMinutePerKnot*math.Tan(math.Radians(f.Angle)), dt)
}

func (f *FlightPathAngle) String() string {
	return fmt.Sprintf("FPA %+.1f", f.Angle)
}

///////////////////////////////////////////////////////////////////////////
// Glidepath

// Glidepath descends along a geometric path that rises at Angle degrees
// from CrossingHeight feet above a runway threshold, measured along
// Course, the true final approach course.
type Glidepath struct {
	Threshold      math.Point2LL
	Elevation      float32
	CrossingHeight float32
	Angle          float32
	Course         float32
}

func (g *Glidepath) Mode() VerticalMode { return VerticalModeGlidepath }
func (g *Glidepath) vertical()          {}

// PathAltitude returns the altitude of the glidepath abeam p. Past the
// threshold it stays at the crossing height.
func (g *Glidepath) PathAltitude(p math.Point2LL) float32 {
	d := math.Max(0, -math.AlongTrackMeters(p, g.Threshold, g.Course)) * math.FeetPerMeter
	return g.Elevation + g.CrossingHeight + d*math.Tan(math.Radians(g.Angle))
}

// ShouldActivate compares the altitude the aircraft will have after the
// next tick with the path altitude at the position it will then have, so
// that the path is captured as it is crossed rather than after.
func (g *Glidepath) ShouldActivate(pos *AircraftPosition, fms *AircraftFms, dt time.Duration) bool {
	next := math.Destination(pos.Location(), pos.TrueTrack(), pos.DistanceInTick(dt))
	nextAlt := pos.IndicatedAltitude() + pos.VerticalSpeed()*float32(dt.Minutes())

	cur := pos.IndicatedAltitude() - g.PathAltitude(pos.Location())
	nxt := nextAlt - g.PathAltitude(next)
	return math.Abs(nxt) < 1 || (cur > 0) != (nxt > 0)
}

func (g *Glidepath) Update(pos *AircraftPosition, fms *AircraftFms, dt time.Duration) {
	target := g.PathAltitude(pos.Location())
	secs := float32(dt.Seconds())
	if secs <= 0 {
		return
	}
	setVerticalSpeed(pos, (target-pos.IndicatedAltitude())/secs*60)
	pos.SetIndicatedAltitude(target)
}

func (g *Glidepath) String() string {
	return fmt.Sprintf("GS %.1f", g.Angle)
}
