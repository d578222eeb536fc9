// nav/lateral.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"log/slog"
	"time"

	av "github.com/sauna-sim/sauna-api-sub001/aviation"
	"github.com/sauna-sim/sauna-api-sub001/math"
	"github.com/sauna-sim/sauna-api-sub001/util"
)

const (
	StandardTurnRate = 3  // degrees per second
	MaxBankAngle     = 25 // degrees

	// Cross-track error at which the intercept angle reaches its maximum.
	fullInterceptXTE  = math.MetersPerNM
	maxInterceptAngle = 45

	// Along-track distance at which a fix is considered passed.
	waypointPassedThreshold = 3 // meters
)

type LateralMode int

const (
	LateralModeHeading LateralMode = iota
	LateralModeTrack
	LateralModeIntercept
	LateralModeLNAV
	LateralModeArc
)

func (m LateralMode) String() string {
	return []string{"HDG", "TRK", "LOC", "LNAV", "ARC"}[int(m)]
}

// LateralInstruction is a lateral control law. The set of implementations
// is closed: HeadingHold, TrackHold, InterceptCourse, LNAV and ArcFollow.
type LateralInstruction interface {
	Mode() LateralMode
	// ShouldActivate returns true when an armed instruction should
	// replace the current one.
	ShouldActivate(pos *AircraftPosition, fms *AircraftFms, dt time.Duration) bool
	Update(pos *AircraftPosition, fms *AircraftFms, dt time.Duration) []LegEvent
	String() string

	lateral()
}

///////////////////////////////////////////////////////////////////////////
// Turn physics

// StandardRateBank returns the bank angle for a standard rate turn at the
// given ground speed, limited to MaxBankAngle.
func StandardRateBank(gs float32) float32 {
	v := gs * math.KnotsToMetersPerSec
	omega := math.Radians(StandardTurnRate)
	return math.Min(math.Degrees(math.Atan(omega*v/math.StandardGravityMPerS)), MaxBankAngle)
}

// TurnRadiusAt returns the radius in meters of the turn flown at the
// given ground speed.
func TurnRadiusAt(gs float32) float32 {
	if gs <= 0 {
		return 0
	}
	return av.TurnRadius(gs, StandardRateBank(gs))
}

// flyTurn turns the aircraft's heading (or track, if byTrack is set)
// toward target, a true bearing, and moves it for dt. The portion of the
// tick spent turning is flown as the chord of the turn arc and any time
// left after the turn completes is flown straight. It returns true once
// the target has been reached.
func flyTurn(pos *AircraftPosition, target float32, turn av.TurnDirection, byTrack bool, dt time.Duration) bool {
	current := pos.TrueHeading()
	if byTrack {
		current = pos.TrueTrack()
	}
	secs := float32(dt.Seconds())

	if math.Abs(math.TurnAmount(current, target)) < 0.1 {
		set(pos, target, byTrack)
		pos.SetBank(0)
		pos.Move(pos.TrueTrack(), pos.DistanceInTick(dt))
		return true
	}

	amount := math.TurnAmountDirected(current, target, turn == av.TurnLeft, turn == av.TurnRight)
	gs := pos.GS()
	v := gs * math.KnotsToMetersPerSec
	bank := StandardRateBank(gs)
	rate := float32(StandardTurnRate)
	if r := av.TurnRadius(gs, bank); v > 0 && r > 0 {
		rate = math.Degrees(v / r)
	}

	theta := math.Sign(amount) * math.Min(math.Abs(amount), rate*secs)
	turnSecs := math.Abs(theta) / rate
	done := math.Abs(theta) == math.Abs(amount)

	startTrack := pos.TrueTrack()
	set(pos, current+theta, byTrack)
	trackChange := math.TurnAmount(startTrack, pos.TrueTrack())

	// Chord of the arc flown while turning.
	arc := v * turnSecs
	half := math.Radians(math.Abs(trackChange)) / 2
	chord := arc
	if half > 1e-6 {
		chord = arc * math.Sin(half) / half
	}
	pos.Move(startTrack+trackChange/2, chord)

	if done {
		set(pos, target, byTrack)
		pos.SetBank(0)
		pos.Move(pos.TrueTrack(), v*(secs-turnSecs))
	} else {
		pos.SetBank(math.Sign(theta) * bank)
	}
	return done
}

func set(pos *AircraftPosition, bearing float32, byTrack bool) {
	if byTrack {
		pos.SetTrueTrack(bearing)
	} else {
		pos.SetTrueHeading(bearing)
	}
}

///////////////////////////////////////////////////////////////////////////
// HeadingHold

// HeadingHold flies a magnetic heading, turning in the given direction.
type HeadingHold struct {
	Heading float32
	Turn    av.TurnDirection
}

func (h *HeadingHold) Mode() LateralMode { return LateralModeHeading }
func (h *HeadingHold) lateral()          {}

func (h *HeadingHold) ShouldActivate(*AircraftPosition, *AircraftFms, time.Duration) bool {
	return true
}

func (h *HeadingHold) Update(pos *AircraftPosition, fms *AircraftFms, dt time.Duration) []LegEvent {
	if flyTurn(pos, pos.MagneticToTrue(h.Heading), h.Turn, false, dt) {
		// Once established, later corrections take the short way.
		h.Turn = av.TurnClosest
	}
	return nil
}

func (h *HeadingHold) String() string {
	switch h.Turn {
	case av.TurnLeft:
		return fmt.Sprintf("HDG L%03.0f", h.Heading)
	case av.TurnRight:
		return fmt.Sprintf("HDG R%03.0f", h.Heading)
	default:
		return fmt.Sprintf("HDG %03.0f", h.Heading)
	}
}

///////////////////////////////////////////////////////////////////////////
// TrackHold

// TrackHold flies a track over the ground, correcting for wind.
type TrackHold struct {
	Track float32
	Turn  av.TurnDirection
	// True is set if Track is a true rather than magnetic track.
	True bool
}

func (t *TrackHold) Mode() LateralMode { return LateralModeTrack }
func (t *TrackHold) lateral()          {}

func (t *TrackHold) ShouldActivate(*AircraftPosition, *AircraftFms, time.Duration) bool {
	return true
}

func (t *TrackHold) trueTrack(pos *AircraftPosition) float32 {
	if t.True {
		return t.Track
	}
	return pos.MagneticToTrue(t.Track)
}

func (t *TrackHold) Update(pos *AircraftPosition, fms *AircraftFms, dt time.Duration) []LegEvent {
	if flyTurn(pos, t.trueTrack(pos), t.Turn, true, dt) {
		t.Turn = av.TurnClosest
	}
	return nil
}

func (t *TrackHold) String() string {
	return fmt.Sprintf("TRK %03.0f%s", t.Track, util.Select(t.True, "T", ""))
}

///////////////////////////////////////////////////////////////////////////
// InterceptCourse

// InterceptCourse intercepts and then tracks the great circle that passes
// through Fix with true course Course at the fix.
type InterceptCourse struct {
	Fix    *av.FmsPoint
	Course float32

	// Lead-in distance for the turn onto the course, recomputed when the
	// track or ground speed changes.
	leadMeters float32
	leadTrack  float32
	leadGS     float32
	haveLead   bool

	prevRemaining float32
	havePrev      bool
}

func NewInterceptCourse(fix *av.FmsPoint, course float32) *InterceptCourse {
	return &InterceptCourse{Fix: fix, Course: math.NormalizeHeading(course)}
}

func (ic *InterceptCourse) Mode() LateralMode { return LateralModeIntercept }
func (ic *InterceptCourse) lateral()          {}

// RemainingMeters returns the along-track distance from the aircraft to
// the fix; it is negative once the fix has been passed.
func (ic *InterceptCourse) RemainingMeters(pos *AircraftPosition) float32 {
	return -math.AlongTrackMeters(pos.Location(), ic.Fix.Location, ic.Course)
}

func (ic *InterceptCourse) CrossTrackMeters(pos *AircraftPosition) float32 {
	return math.CrossTrackMeters(pos.Location(), ic.Fix.Location, ic.Course)
}

// requiredCourse returns the course of the great circle at the point
// abeam the aircraft.
func (ic *InterceptCourse) requiredCourse(pos *AircraftPosition) float32 {
	remaining := ic.RemainingMeters(pos)
	if math.Abs(remaining) < 1 {
		return ic.Course
	}
	if remaining > 0 {
		abeam := math.Destination(ic.Fix.Location, math.OppositeHeading(ic.Course), remaining)
		return math.InitialBearing(abeam, ic.Fix.Location)
	}
	abeam := math.Destination(ic.Fix.Location, ic.Course, -remaining)
	return math.FinalBearing(ic.Fix.Location, abeam)
}

// InterceptTrack returns the true track to fly: the course at the abeam
// point offset toward the course by up to 45 degrees, in proportion to
// the cross-track error.
func (ic *InterceptCourse) InterceptTrack(pos *AircraftPosition) float32 {
	xte := ic.CrossTrackMeters(pos)
	offset := -maxInterceptAngle * math.Clamp(xte/fullInterceptXTE, -1, 1)
	return math.NormalizeHeading(ic.requiredCourse(pos) + offset)
}

// LeadMeters returns the distance before the course at which the turn
// onto it must begin.
func (ic *InterceptCourse) LeadMeters(pos *AircraftPosition) float32 {
	track, gs := pos.TrueTrack(), pos.GS()
	if !ic.haveLead || math.Abs(math.TurnAmount(track, ic.leadTrack)) > 0.01 || math.Abs(gs-ic.leadGS) > 0.01 {
		delta := math.Min(math.HeadingDifference(track, ic.requiredCourse(pos)), 150)
		ic.leadMeters = TurnRadiusAt(gs) * math.Tan(math.Radians(delta/2))
		ic.leadTrack, ic.leadGS, ic.haveLead = track, gs, true
	}
	return ic.leadMeters
}

// ShouldActivate returns true when the aircraft is on the course or when
// the point where its track meets the course is within the turn lead
// distance plus one tick of flight.
func (ic *InterceptCourse) ShouldActivate(pos *AircraftPosition, fms *AircraftFms, dt time.Duration) bool {
	if math.Abs(ic.CrossTrackMeters(pos)) < 30 && math.HeadingDifference(pos.TrueTrack(), ic.Course) < 90 {
		return true
	}

	lead := ic.LeadMeters(pos)
	p := pos.Location()
	isect, ok := math.IntersectRadials(p, pos.TrueTrack(), ic.Fix.Location, math.OppositeHeading(ic.Course))
	if !ok {
		// The track may meet the course beyond the fix.
		if isect, ok = math.IntersectRadials(p, pos.TrueTrack(), ic.Fix.Location, ic.Course); !ok {
			return false
		}
	}
	return math.DistanceMeters(p, isect) <= lead+pos.DistanceInTick(dt)
}

func (ic *InterceptCourse) Update(pos *AircraftPosition, fms *AircraftFms, dt time.Duration) []LegEvent {
	if ev := ic.fly(pos, dt); ev.Type != EventNone {
		return []LegEvent{ev}
	}
	return nil
}

func (ic *InterceptCourse) fly(pos *AircraftPosition, dt time.Duration) LegEvent {
	flyTurn(pos, ic.InterceptTrack(pos), av.TurnClosest, true, dt)

	remaining := ic.RemainingMeters(pos)
	passed := ic.havePrev && ic.prevRemaining > waypointPassedThreshold &&
		remaining <= waypointPassedThreshold && remaining < ic.prevRemaining
	ic.prevRemaining, ic.havePrev = remaining, true

	if passed {
		return LegEvent{Type: EventWaypointPassed, Point: ic.Fix}
	}
	return LegEvent{}
}

func (ic *InterceptCourse) String() string {
	return fmt.Sprintf("%s/%03.0fT", ic.Fix.Identifier, ic.Course)
}

func (ic *InterceptCourse) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("fix", ic.Fix.Identifier),
		slog.Float64("course", float64(ic.Course)),
		slog.Float64("lead", float64(ic.leadMeters)))
}

///////////////////////////////////////////////////////////////////////////
// LNAV

// LNAV follows the FMS route. Without an active leg it holds the track
// the aircraft had when the route ran out.
type LNAV struct {
	fallback *TrackHold
}

func (l *LNAV) Mode() LateralMode { return LateralModeLNAV }
func (l *LNAV) lateral()          {}

func (l *LNAV) ShouldActivate(pos *AircraftPosition, fms *AircraftFms, dt time.Duration) bool {
	if fms == nil {
		return false
	}
	leg := fms.ActiveLeg()
	if leg == nil {
		if leg = fms.NextLeg(); leg == nil {
			return false
		}
	}
	return leg.ShouldBeginTurn(pos, dt)
}

func (l *LNAV) Update(pos *AircraftPosition, fms *AircraftFms, dt time.Duration) []LegEvent {
	var events []LegEvent
	if fms != nil {
		var ok bool
		if events, ok = fms.UpdateLateral(pos, dt); ok {
			l.fallback = nil
			return events
		}
	}

	// The route may have just ended; its last events are still returned.
	if l.fallback == nil {
		l.fallback = &TrackHold{Track: pos.TrueTrack(), True: true}
	}
	return append(events, l.fallback.Update(pos, fms, dt)...)
}

// Degraded returns true if there was no active leg at the last update.
func (l *LNAV) Degraded() bool { return l.fallback != nil }

func (l *LNAV) String() string {
	if l.fallback != nil {
		return "LNAV (" + l.fallback.String() + ")"
	}
	return "LNAV"
}

///////////////////////////////////////////////////////////////////////////
// ArcFollow

// ArcFollow flies a constant radius arc around Center, ending at End.
type ArcFollow struct {
	Center math.Point2LL
	Radius float32 // meters
	End    *av.FmsPoint
	Turn   av.TurnDirection // TurnLeft or TurnRight

	prevRemaining float32
	havePrev      bool
}

func (a *ArcFollow) Mode() LateralMode { return LateralModeArc }
func (a *ArcFollow) lateral()          {}

func (a *ArcFollow) sign() float32 {
	if a.Turn == av.TurnLeft {
		return -1
	}
	return 1
}

// RemainingDegrees returns the angle around the arc from the aircraft to
// the end point, measured in the direction of the turn.
func (a *ArcFollow) RemainingDegrees(pos *AircraftPosition) float32 {
	b := math.InitialBearing(a.Center, pos.Location())
	bEnd := math.InitialBearing(a.Center, a.End.Location)
	left := a.Turn == av.TurnLeft
	return a.sign() * math.TurnAmountDirected(b, bEnd, left, !left)
}

// passed returns true if the aircraft has reached or overflown the end
// of the arc; overflying shows up as the remaining angle wrapping around.
func (a *ArcFollow) passed(pos *AircraftPosition) bool {
	r := a.RemainingDegrees(pos)
	return r <= 0.5 || (a.havePrev && r > a.prevRemaining+180)
}

// TrackAt returns the tangent to the arc abeam the given point.
func (a *ArcFollow) TrackAt(p math.Point2LL) float32 {
	return math.NormalizeHeading(math.InitialBearing(a.Center, p) + a.sign()*90)
}

func (a *ArcFollow) ShouldActivate(*AircraftPosition, *AircraftFms, time.Duration) bool {
	return true
}

func (a *ArcFollow) Update(pos *AircraftPosition, fms *AircraftFms, dt time.Duration) []LegEvent {
	if ev := a.fly(pos, dt); ev.Type != EventNone {
		return []LegEvent{ev}
	}
	return nil
}

func (a *ArcFollow) fly(pos *AircraftPosition, dt time.Duration) LegEvent {
	// Positive when outside the arc; steer toward the center.
	e := math.DistanceMeters(a.Center, pos.Location()) - a.Radius
	offset := a.sign() * maxInterceptAngle * math.Clamp(e/fullInterceptXTE, -1, 1)
	flyTurn(pos, math.NormalizeHeading(a.TrackAt(pos.Location())+offset), av.TurnClosest, true, dt)

	passed := a.passed(pos)
	a.prevRemaining, a.havePrev = a.RemainingDegrees(pos), true
	if passed {
		return LegEvent{Type: EventWaypointPassed, Point: a.End}
	}
	return LegEvent{}
}

func (a *ArcFollow) String() string {
	return fmt.Sprintf("ARC %.1fnm %s to %s", a.Radius/math.MetersPerNM, a.Turn, a.End.Identifier)
}
