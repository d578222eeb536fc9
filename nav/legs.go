// nav/legs.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"log/slog"
	"time"

	av "github.com/sauna-sim/sauna-api-sub001/aviation"
	"github.com/sauna-sim/sauna-api-sub001/math"
)

type LegEventType int

const (
	EventNone LegEventType = iota
	// The aircraft passed the leg's end point.
	EventWaypointPassed
	// The leg was sequenced out of the FMS.
	EventLegTerminated
	// A holding pattern moved to a new phase.
	EventHoldPhase
)

func (t LegEventType) String() string {
	return []string{"none", "waypoint passed", "leg terminated", "hold phase"}[int(t)]
}

// LegEvent reports something that happened while flying a leg. Legs
// return events rather than calling back into the FMS; the FMS and
// AircraftControl interpret them.
type LegEvent struct {
	Type      LegEventType
	Point     *av.FmsPoint
	Leg       string
	HoldPhase HoldPhase
}

func (e LegEvent) String() string {
	switch e.Type {
	case EventWaypointPassed:
		return "passed " + e.Point.String()
	case EventLegTerminated:
		return "terminated " + e.Leg
	case EventHoldPhase:
		return "hold " + e.HoldPhase.String()
	default:
		return "none"
	}
}

type LegType int

const (
	LegDirectToFix LegType = iota
	LegCourseToFix
	LegTrackToFix
	LegFixToAltitude
	LegFixToManual
	LegHoldToManual
	LegRadiusToFix
)

func (t LegType) String() string {
	return []string{"DF", "CF", "TF", "FA", "FM", "HM", "RF"}[int(t)]
}

// RouteLeg is a segment of the route. The set of implementations is
// closed; they are the *...Leg types in this file.
type RouteLeg interface {
	Type() LegType
	// StartPoint and EndPoint may return nil.
	StartPoint() *av.FmsPoint
	EndPoint() *av.FmsPoint
	// InitialTrueCourse and FinalTrueCourse return -1 if the course is
	// not (yet) defined.
	InitialTrueCourse() float32
	FinalTrueCourse() float32

	// ShouldBeginTurn returns true when an aircraft that isn't yet on the
	// leg should start turning to join it.
	ShouldBeginTurn(pos *AircraftPosition, dt time.Duration) bool
	HasLegTerminated(pos *AircraftPosition) bool
	UpdateLateralPosition(pos *AircraftPosition, dt time.Duration) LegEvent
	String() string

	routeLeg()
}

// remainingTo returns the along-track distance to end along the course
// through it.
func remainingTo(pos *AircraftPosition, end *av.FmsPoint, course float32) float32 {
	return -math.AlongTrackMeters(pos.Location(), end.Location, course)
}

// withinTurn returns true if p is inside the circle the aircraft would
// fly turning toward it, so that turning alone would orbit it.
func withinTurn(pos *AircraftPosition, p math.Point2LL) bool {
	track := pos.TrueTrack()
	turn := math.TurnAmount(track, math.InitialBearing(pos.Location(), p))
	if math.Abs(turn) < 1 {
		return false
	}
	r := TurnRadiusAt(pos.GS())
	center := math.Destination(pos.Location(), track+math.Sign(turn)*90, r)
	return math.DistanceMeters(center, p) < r
}

///////////////////////////////////////////////////////////////////////////
// DirectToFixLeg

// DirectToFixLeg flies from wherever the aircraft is to a fix. Its course
// is computed from the aircraft's position when the leg is first flown
// and recomputed until the aircraft has turned onto it.
type DirectToFixLeg struct {
	End *av.FmsPoint

	start   math.Point2LL
	course  *InterceptCourse
	aligned bool
}

func NewDirectToFixLeg(end *av.FmsPoint) *DirectToFixLeg {
	return &DirectToFixLeg{End: end}
}

func (l *DirectToFixLeg) Type() LegType            { return LegDirectToFix }
func (l *DirectToFixLeg) routeLeg()                {}
func (l *DirectToFixLeg) StartPoint() *av.FmsPoint { return nil }
func (l *DirectToFixLeg) EndPoint() *av.FmsPoint   { return l.End }

func (l *DirectToFixLeg) InitialTrueCourse() float32 {
	if l.course == nil {
		return -1
	}
	return math.InitialBearing(l.start, l.End.Location)
}

func (l *DirectToFixLeg) FinalTrueCourse() float32 {
	if l.course == nil {
		return -1
	}
	return l.course.Course
}

func (l *DirectToFixLeg) ShouldBeginTurn(*AircraftPosition, time.Duration) bool {
	return true
}

func (l *DirectToFixLeg) HasLegTerminated(pos *AircraftPosition) bool {
	if l.course == nil {
		return math.DistanceMeters(pos.Location(), l.End.Location) < waypointPassedThreshold
	}
	return remainingTo(pos, l.End, l.course.Course) <= 0
}

func (l *DirectToFixLeg) UpdateLateralPosition(pos *AircraftPosition, dt time.Duration) LegEvent {
	if !l.aligned {
		p := pos.Location()
		if math.DistanceMeters(p, l.End.Location) > 1 {
			l.start = p
			l.course = NewInterceptCourse(l.End, math.FinalBearing(p, l.End.Location))
			l.aligned = math.HeadingDifference(pos.TrueTrack(), math.InitialBearing(p, l.End.Location)) < 1
			if !l.aligned && withinTurn(pos, l.End.Location) {
				// Fly straight until the fix can be reached by turning.
				flyTurn(pos, pos.TrueTrack(), av.TurnClosest, true, dt)
				return LegEvent{}
			}
		} else if l.course == nil {
			l.start = p
			l.course = NewInterceptCourse(l.End, pos.TrueTrack())
		}
	}
	return l.course.fly(pos, dt)
}

func (l *DirectToFixLeg) String() string {
	return "DF " + l.End.String()
}

func (l *DirectToFixLeg) LogValue() slog.Value {
	return slog.GroupValue(slog.String("type", "DF"), slog.Any("end", l.End))
}

///////////////////////////////////////////////////////////////////////////
// CourseToFixLeg

// CourseToFixLeg intercepts a course into a fix.
type CourseToFixLeg struct {
	End    *av.FmsPoint
	Course float32 // true, at End

	ic *InterceptCourse
}

func NewCourseToFixLeg(end *av.FmsPoint, course float32) *CourseToFixLeg {
	ic := NewInterceptCourse(end, course)
	return &CourseToFixLeg{End: end, Course: ic.Course, ic: ic}
}

func (l *CourseToFixLeg) Type() LegType              { return LegCourseToFix }
func (l *CourseToFixLeg) routeLeg()                  {}
func (l *CourseToFixLeg) StartPoint() *av.FmsPoint   { return nil }
func (l *CourseToFixLeg) EndPoint() *av.FmsPoint     { return l.End }
func (l *CourseToFixLeg) InitialTrueCourse() float32 { return l.Course }
func (l *CourseToFixLeg) FinalTrueCourse() float32   { return l.Course }

func (l *CourseToFixLeg) ShouldBeginTurn(pos *AircraftPosition, dt time.Duration) bool {
	return l.ic.ShouldActivate(pos, nil, dt)
}

func (l *CourseToFixLeg) HasLegTerminated(pos *AircraftPosition) bool {
	return l.ic.RemainingMeters(pos) <= 0
}

func (l *CourseToFixLeg) UpdateLateralPosition(pos *AircraftPosition, dt time.Duration) LegEvent {
	return l.ic.fly(pos, dt)
}

func (l *CourseToFixLeg) String() string {
	return fmt.Sprintf("CF %03.0fT %s", l.Course, l.End)
}

///////////////////////////////////////////////////////////////////////////
// TrackToFixLeg

// TrackToFixLeg flies the great circle between two fixes.
type TrackToFixLeg struct {
	Start, End *av.FmsPoint

	ic *InterceptCourse
}

func NewTrackToFixLeg(start, end *av.FmsPoint) *TrackToFixLeg {
	return &TrackToFixLeg{
		Start: start,
		End:   end,
		ic:    NewInterceptCourse(end, math.FinalBearing(start.Location, end.Location)),
	}
}

func (l *TrackToFixLeg) Type() LegType            { return LegTrackToFix }
func (l *TrackToFixLeg) routeLeg()                {}
func (l *TrackToFixLeg) StartPoint() *av.FmsPoint { return l.Start }
func (l *TrackToFixLeg) EndPoint() *av.FmsPoint   { return l.End }

func (l *TrackToFixLeg) InitialTrueCourse() float32 {
	return math.InitialBearing(l.Start.Location, l.End.Location)
}

func (l *TrackToFixLeg) FinalTrueCourse() float32 { return l.ic.Course }

func (l *TrackToFixLeg) ShouldBeginTurn(pos *AircraftPosition, dt time.Duration) bool {
	return l.ic.ShouldActivate(pos, nil, dt)
}

func (l *TrackToFixLeg) HasLegTerminated(pos *AircraftPosition) bool {
	return l.ic.RemainingMeters(pos) <= 0
}

func (l *TrackToFixLeg) UpdateLateralPosition(pos *AircraftPosition, dt time.Duration) LegEvent {
	return l.ic.fly(pos, dt)
}

func (l *TrackToFixLeg) String() string {
	return fmt.Sprintf("TF %s-%s", l.Start.Identifier, l.End)
}

///////////////////////////////////////////////////////////////////////////
// FixToAltitudeLeg

// FixToAltitudeLeg flies a course until reaching an altitude. With a
// Start fix the course is flown from the fix; otherwise the aircraft
// just holds the course as a track.
type FixToAltitudeLeg struct {
	Start    *av.FmsPoint
	Course   float32 // true
	Altitude float32

	ic           *InterceptCourse
	track        *TrackHold
	climbing     bool
	directionSet bool
}

func NewFixToAltitudeLeg(start *av.FmsPoint, course, altitude float32) *FixToAltitudeLeg {
	l := &FixToAltitudeLeg{Start: start, Course: math.NormalizeHeading(course), Altitude: altitude}
	if start != nil {
		l.ic = NewInterceptCourse(start, l.Course)
	} else {
		l.track = &TrackHold{Track: l.Course, True: true}
	}
	return l
}

func (l *FixToAltitudeLeg) Type() LegType              { return LegFixToAltitude }
func (l *FixToAltitudeLeg) routeLeg()                  {}
func (l *FixToAltitudeLeg) StartPoint() *av.FmsPoint   { return l.Start }
func (l *FixToAltitudeLeg) EndPoint() *av.FmsPoint     { return nil }
func (l *FixToAltitudeLeg) InitialTrueCourse() float32 { return l.Course }
func (l *FixToAltitudeLeg) FinalTrueCourse() float32   { return l.Course }

func (l *FixToAltitudeLeg) ShouldBeginTurn(pos *AircraftPosition, dt time.Duration) bool {
	if l.ic != nil {
		return l.ic.ShouldActivate(pos, nil, dt)
	}
	return true
}

// HasLegTerminated returns true once the altitude has been crossed in the
// direction the aircraft was going when the leg was first checked.
func (l *FixToAltitudeLeg) HasLegTerminated(pos *AircraftPosition) bool {
	alt := pos.IndicatedAltitude()
	if !l.directionSet {
		l.climbing = alt < l.Altitude
		l.directionSet = true
	}
	if l.climbing {
		return alt >= l.Altitude
	}
	return alt <= l.Altitude
}

func (l *FixToAltitudeLeg) UpdateLateralPosition(pos *AircraftPosition, dt time.Duration) LegEvent {
	if l.ic != nil {
		return l.ic.fly(pos, dt)
	}
	l.track.Update(pos, nil, dt)
	return LegEvent{}
}

func (l *FixToAltitudeLeg) String() string {
	if l.Start != nil {
		return fmt.Sprintf("FA %s %03.0fT %.0f", l.Start.Identifier, l.Course, l.Altitude)
	}
	return fmt.Sprintf("CA %03.0fT %.0f", l.Course, l.Altitude)
}

///////////////////////////////////////////////////////////////////////////
// FixToManualLeg

// FixToManualLeg flies a course from a fix until the route is changed.
type FixToManualLeg struct {
	Start  *av.FmsPoint
	Course float32 // true

	ic *InterceptCourse
}

func NewFixToManualLeg(start *av.FmsPoint, course float32) *FixToManualLeg {
	ic := NewInterceptCourse(start, course)
	return &FixToManualLeg{Start: start, Course: ic.Course, ic: ic}
}

func (l *FixToManualLeg) Type() LegType                           { return LegFixToManual }
func (l *FixToManualLeg) routeLeg()                               {}
func (l *FixToManualLeg) StartPoint() *av.FmsPoint                { return l.Start }
func (l *FixToManualLeg) EndPoint() *av.FmsPoint                  { return nil }
func (l *FixToManualLeg) InitialTrueCourse() float32              { return l.Course }
func (l *FixToManualLeg) FinalTrueCourse() float32                { return l.Course }
func (l *FixToManualLeg) HasLegTerminated(*AircraftPosition) bool { return false }

func (l *FixToManualLeg) ShouldBeginTurn(pos *AircraftPosition, dt time.Duration) bool {
	return l.ic.ShouldActivate(pos, nil, dt)
}

func (l *FixToManualLeg) UpdateLateralPosition(pos *AircraftPosition, dt time.Duration) LegEvent {
	return l.ic.fly(pos, dt)
}

func (l *FixToManualLeg) String() string {
	return fmt.Sprintf("FM %s %03.0fT", l.Start.Identifier, l.Course)
}

///////////////////////////////////////////////////////////////////////////
// HoldToManualLeg

// HoldToManualLeg holds at a fix until the hold exit is armed.
type HoldToManualLeg struct {
	Hold *HoldController
}

func NewHoldToManualLeg(h *HoldController) *HoldToManualLeg {
	return &HoldToManualLeg{Hold: h}
}

func (l *HoldToManualLeg) Type() LegType              { return LegHoldToManual }
func (l *HoldToManualLeg) routeLeg()                  {}
func (l *HoldToManualLeg) StartPoint() *av.FmsPoint   { return l.Hold.Fix }
func (l *HoldToManualLeg) EndPoint() *av.FmsPoint     { return l.Hold.Fix }
func (l *HoldToManualLeg) InitialTrueCourse() float32 { return -1 }
func (l *HoldToManualLeg) FinalTrueCourse() float32   { return l.Hold.InboundCourse }

func (l *HoldToManualLeg) ShouldBeginTurn(*AircraftPosition, time.Duration) bool {
	return true
}

func (l *HoldToManualLeg) HasLegTerminated(pos *AircraftPosition) bool {
	return l.Hold.Terminated(pos)
}

func (l *HoldToManualLeg) UpdateLateralPosition(pos *AircraftPosition, dt time.Duration) LegEvent {
	return l.Hold.Update(pos, dt)
}

func (l *HoldToManualLeg) String() string {
	return "HM " + l.Hold.String()
}

///////////////////////////////////////////////////////////////////////////
// RadiusToFixLeg

// RadiusToFixLeg flies a constant radius arc around Center from Start to
// End.
type RadiusToFixLeg struct {
	Start, End *av.FmsPoint
	Center     math.Point2LL
	Turn       av.TurnDirection

	arc *ArcFollow
}

func NewRadiusToFixLeg(start, end *av.FmsPoint, center math.Point2LL, turn av.TurnDirection) *RadiusToFixLeg {
	if turn != av.TurnLeft {
		turn = av.TurnRight
	}
	return &RadiusToFixLeg{
		Start:  start,
		End:    end,
		Center: center,
		Turn:   turn,
		arc: &ArcFollow{
			Center: center,
			Radius: math.DistanceMeters(center, end.Location),
			End:    end,
			Turn:   turn,
		},
	}
}

func (l *RadiusToFixLeg) Type() LegType            { return LegRadiusToFix }
func (l *RadiusToFixLeg) routeLeg()                {}
func (l *RadiusToFixLeg) StartPoint() *av.FmsPoint { return l.Start }
func (l *RadiusToFixLeg) EndPoint() *av.FmsPoint   { return l.End }
func (l *RadiusToFixLeg) Radius() float32          { return l.arc.Radius }

func (l *RadiusToFixLeg) InitialTrueCourse() float32 {
	return l.arc.TrackAt(l.Start.Location)
}

func (l *RadiusToFixLeg) FinalTrueCourse() float32 {
	return l.arc.TrackAt(l.End.Location)
}

// ShouldBeginTurn returns true when the start of the arc is within a
// tick of flight.
func (l *RadiusToFixLeg) ShouldBeginTurn(pos *AircraftPosition, dt time.Duration) bool {
	return remainingTo(pos, l.Start, l.InitialTrueCourse()) <= pos.DistanceInTick(dt)
}

func (l *RadiusToFixLeg) HasLegTerminated(pos *AircraftPosition) bool {
	return l.arc.passed(pos)
}

// RemainingDegrees returns the angle left to fly around the arc.
func (l *RadiusToFixLeg) RemainingDegrees(pos *AircraftPosition) float32 {
	return l.arc.RemainingDegrees(pos)
}

func (l *RadiusToFixLeg) UpdateLateralPosition(pos *AircraftPosition, dt time.Duration) LegEvent {
	return l.arc.fly(pos, dt)
}

func (l *RadiusToFixLeg) String() string {
	return fmt.Sprintf("RF %s-%s %.1fnm %s", l.Start.Identifier, l.End, l.arc.Radius/math.MetersPerNM, l.Turn)
}

// legAnticipatesTurn returns true if the aircraft may begin the turn onto
// the following leg before reaching the end of this one.
func legAnticipatesTurn(l RouteLeg) bool {
	switch l.(type) {
	case *DirectToFixLeg, *CourseToFixLeg, *TrackToFixLeg, *RadiusToFixLeg:
		return true
	case *FixToAltitudeLeg, *FixToManualLeg, *HoldToManualLeg:
		return false
	default:
		panic(fmt.Sprintf("unhandled leg type %T", l))
	}
}
