// nav/control.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	av "github.com/sauna-sim/sauna-api-sub001/aviation"
	"github.com/sauna-sim/sauna-api-sub001/log"
	"github.com/sauna-sim/sauna-api-sub001/math"
	"github.com/sauna-sim/sauna-api-sub001/util"

	"github.com/brunoga/deep"
)

// AircraftControl is the autopilot: it owns the current and armed
// lateral and vertical instructions, the speed target and the FMS, and
// advances the aircraft's position each tick.
//
// There is always exactly one current lateral and one current vertical
// instruction. At most one lateral instruction and one vertical
// instruction per mode may be armed; an armed instruction replaces the
// current one when its activation predicate fires.
type AircraftControl struct {
	Callsign         string
	Fms              *AircraftFms
	Acceleration     float32 // knots per second
	HoldRadiusBuffer float32

	mu              sync.Mutex
	currentLateral  LateralInstruction
	armedLateral    LateralInstruction
	currentVertical VerticalInstruction
	armedVertical   map[VerticalMode]VerticalInstruction
	speed           SpeedTarget

	lg *log.Logger
}

// NewAircraftControl returns a control that holds the aircraft's current
// heading, altitude and speed.
func NewAircraftControl(callsign string, pos *AircraftPosition, lg *log.Logger) *AircraftControl {
	return &AircraftControl{
		Callsign:         callsign,
		Fms:              NewAircraftFms(callsign),
		Acceleration:     DefaultAcceleration,
		HoldRadiusBuffer: DefaultHoldRadiusBuffer,
		currentLateral:   &HeadingHold{Heading: pos.MagneticHeading()},
		currentVertical:  &AltitudeHold{Altitude: pos.IndicatedAltitude()},
		armedVertical:    make(map[VerticalMode]VerticalInstruction),
		lg:               lg,
	}
}

func (c *AircraftControl) CurrentLateral() LateralInstruction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLateral
}

// ArmedLateral returns the armed lateral instruction or nil.
func (c *AircraftControl) ArmedLateral() LateralInstruction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armedLateral
}

func (c *AircraftControl) CurrentVertical() VerticalInstruction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentVertical
}

// ArmedVertical returns the armed vertical instructions ordered by mode.
func (c *AircraftControl) ArmedVertical() []VerticalInstruction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armedVerticalLocked()
}

func (c *AircraftControl) armedVerticalLocked() []VerticalInstruction {
	var v []VerticalInstruction
	for _, mode := range util.SortedMapKeys(c.armedVertical) {
		v = append(v, c.armedVertical[mode])
	}
	return v
}

func (c *AircraftControl) Speed() SpeedTarget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

func (c *AircraftControl) setLateral(current, armed LateralInstruction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentLateral = current
	c.armedLateral = armed
}

///////////////////////////////////////////////////////////////////////////
// Commands

func checkDegrees(d float32) error {
	if d <= 0 || d > 360 {
		return ErrInvalidHeading
	}
	return nil
}

// FlyHeading turns to a magnetic heading. Assigning the heading that is
// already being flown leaves the instruction unchanged.
func (c *AircraftControl) FlyHeading(pos *AircraftPosition, heading float32, turn av.TurnDirection) error {
	if err := checkDegrees(heading); err != nil {
		return err
	}
	heading = math.NormalizeHeading(heading)

	c.mu.Lock()
	defer c.mu.Unlock()
	if hh, ok := c.currentLateral.(*HeadingHold); ok && hh.Heading == heading && (turn == av.TurnClosest || turn == hh.Turn) {
		c.armedLateral = nil
		return nil
	}
	c.currentLateral = &HeadingHold{Heading: heading, Turn: turn}
	c.armedLateral = nil
	NavLog(c.Callsign, pos.Time(), NavLogCommand, "fly heading %03.0f %s", heading, turn)
	return nil
}

// FlyTrack flies a magnetic track over the ground.
func (c *AircraftControl) FlyTrack(pos *AircraftPosition, track float32, turn av.TurnDirection) error {
	if err := checkDegrees(track); err != nil {
		return err
	}
	c.setLateral(&TrackHold{Track: math.NormalizeHeading(track), Turn: turn}, nil)
	NavLog(c.Callsign, pos.Time(), NavLogCommand, "fly track %03.0f %s", track, turn)
	return nil
}

// InterceptCourse arms the interception of a magnetic course to a fix;
// the current lateral instruction is flown until the course is
// captured.
func (c *AircraftControl) InterceptCourse(pos *AircraftPosition, fix *av.FmsPoint, course float32) error {
	if err := checkDegrees(course); err != nil {
		return err
	}
	trueCourse := av.MagneticToTrue(pos.MagneticModel(), fix.Location, pos.Time(), course)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.armedLateral = NewInterceptCourse(fix, trueCourse)
	NavLog(c.Callsign, pos.Time(), NavLogCommand, "intercept %s course %03.0f", fix.Identifier, course)
	return nil
}

// AssignAltitude climbs or descends at the altitude hold rate and arms
// the capture of the given altitude. A positive altimeterHPa changes the
// pressure setting first.
func (c *AircraftControl) AssignAltitude(pos *AircraftPosition, altitude, altimeterHPa float32) error {
	if altitude < -1000 || altitude > 60000 {
		return ErrInvalidAltitude
	}
	if altimeterHPa > 0 {
		pos.SetAltimeterSetting(altimeterHPa)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	hold := &AltitudeHold{Altitude: altitude}
	diff := altitude - pos.IndicatedAltitude()
	if math.Abs(diff) <= altitudeCaptureSlack {
		c.currentVertical = hold
		delete(c.armedVertical, VerticalModeAltitude)
	} else {
		rate := math.Sign(diff) * AltitudeHoldRate
		c.currentVertical = &VerticalSpeed{Rate: rate}
		setVerticalSpeed(pos, rate)
		c.armedVertical[VerticalModeAltitude] = hold
	}
	NavLog(c.Callsign, pos.Time(), NavLogAltitude, "assigned altitude %.0f", altitude)
	return nil
}

func (c *AircraftControl) AssignSpeed(pos *AircraftPosition, target SpeedTarget) error {
	if target.Constraint != av.ConstraintNone {
		if target.Mach > 0 {
			if target.Mach > 1 {
				return ErrInvalidSpeed
			}
		} else if target.IAS <= 0 || target.IAS > 450 {
			return ErrInvalidSpeed
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = target
	NavLog(c.Callsign, pos.Time(), NavLogSpeed, "assigned speed %s", target)
	return nil
}

// DirectTo flies direct to a point and engages LNAV. If the point is in
// the route, the legs before it are removed; otherwise the route is
// replaced. It returns whether the point was in the route.
func (c *AircraftControl) DirectTo(pos *AircraftPosition, p *av.FmsPoint) bool {
	_, found := c.Fms.DirectTo(p)
	c.setLateral(&LNAV{}, nil)
	NavLog(c.Callsign, pos.Time(), NavLogCommand, "direct %s (in route %v)", p.Identifier, found)
	LogRoute(c.Callsign, pos.Time(), c.Fms.Route())
	return found
}

// Hold enters a hold at the controller's fix. If the fix is in the route,
// the hold is flown when the aircraft gets there; otherwise the aircraft
// proceeds direct to the fix.
func (c *AircraftControl) Hold(pos *AircraftPosition, h *HoldController) {
	if err := c.Fms.InsertHold(h); err != nil {
		c.DirectTo(pos, h.Fix)
		// The direct leg ends at the fix, so this can't fail.
		_ = c.Fms.InsertHold(h)
	}
	NavLog(c.Callsign, pos.Time(), NavLogHold, "hold %s", h)
	LogRoute(c.Callsign, pos.Time(), c.Fms.Route())
}

// ArmHoldExit ends the hold the next time the aircraft is inbound at the
// fix.
func (c *AircraftControl) ArmHoldExit(pos *AircraftPosition) error {
	if err := c.Fms.ArmHoldExit(); err != nil {
		return err
	}
	NavLog(c.Callsign, pos.Time(), NavLogHold, "hold exit armed")
	return nil
}

// Approach arms the localizer and, if the approach has one, the
// glidepath.
func (c *AircraftControl) Approach(pos *AircraftPosition, loc av.Localizer) {
	threshold := av.NewFmsPoint(loc.Airport+loc.Runway, loc.Threshold, av.FlyOver)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.armedLateral = NewInterceptCourse(threshold, loc.Course)
	if loc.GlideslopeAngle > 0 {
		c.armedVertical[VerticalModeGlidepath] = &Glidepath{
			Threshold:      loc.Threshold,
			Elevation:      loc.Elevation,
			CrossingHeight: loc.CrossingHeight,
			Angle:          loc.GlideslopeAngle,
			Course:         loc.Course,
		}
	}
	NavLog(c.Callsign, pos.Time(), NavLogApproach, "cleared %s %s", loc.Airport, loc.Runway)
}

// EngageLNAV arms LNAV; it becomes active when the aircraft should begin
// its turn onto the active leg.
func (c *AircraftControl) EngageLNAV(pos *AircraftPosition) error {
	if len(c.Fms.Route()) == 0 {
		return ErrNoRoute
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.currentLateral.(*LNAV); !ok {
		c.armedLateral = &LNAV{}
		NavLog(c.Callsign, pos.Time(), NavLogCommand, "LNAV armed")
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////
// Update

// promote replaces current instructions with armed ones whose activation
// predicates fire. The predicates are evaluated without holding the
// mutex.
func (c *AircraftControl) promote(pos *AircraftPosition, dt time.Duration) {
	c.mu.Lock()
	lateral := c.armedLateral
	vertical := c.armedVerticalLocked()
	c.mu.Unlock()

	if lateral != nil && lateral.ShouldActivate(pos, c.Fms, dt) {
		c.mu.Lock()
		if c.armedLateral == lateral {
			c.currentLateral, c.armedLateral = lateral, nil
		}
		c.mu.Unlock()
		NavLog(c.Callsign, pos.Time(), NavLogState, "lateral %s active", lateral)
	}

	for _, v := range vertical {
		if !v.ShouldActivate(pos, c.Fms, dt) {
			continue
		}
		c.mu.Lock()
		if c.armedVertical[v.Mode()] == v {
			c.currentVertical = v
			delete(c.armedVertical, v.Mode())
		}
		c.mu.Unlock()
		NavLog(c.Callsign, pos.Time(), NavLogState, "vertical %s active", v)
		break
	}
}

// UpdatePosition advances the aircraft by dt and returns the leg events
// that occurred.
func (c *AircraftControl) UpdatePosition(pos *AircraftPosition, dt time.Duration) []LegEvent {
	c.promote(pos, dt)

	c.mu.Lock()
	lateral, vertical, speed := c.currentLateral, c.currentVertical, c.speed
	c.mu.Unlock()

	events := lateral.Update(pos, c.Fms, dt)
	vertical.Update(pos, c.Fms, dt)
	updateSpeed(pos, speed, c.Acceleration, dt)
	pos.AdvanceTime(dt)

	for _, ev := range events {
		NavLog(c.Callsign, pos.Time(), NavLogWaypoint, "%s", ev)
		c.lg.Debug("leg event", slog.String("event", ev.String()))
	}
	return events
}

///////////////////////////////////////////////////////////////////////////
// Snapshots

// ControlSnapshot is a deep copy of the control state.
type ControlSnapshot struct {
	CurrentLateral  LateralInstruction
	ArmedLateral    LateralInstruction
	CurrentVertical VerticalInstruction
	ArmedVertical   []VerticalInstruction
	Speed           SpeedTarget
	Route           []RouteLeg
	Suspended       bool
}

// Snapshot returns a copy of the control state that shares nothing with
// the live state.
func (c *AircraftControl) Snapshot() ControlSnapshot {
	route := c.Fms.Route()
	suspended := c.Fms.Suspended()

	c.mu.Lock()
	snap := ControlSnapshot{
		CurrentLateral:  c.currentLateral,
		ArmedLateral:    c.armedLateral,
		CurrentVertical: c.currentVertical,
		ArmedVertical:   c.armedVerticalLocked(),
		Speed:           c.speed,
		Route:           route,
		Suspended:       suspended,
	}
	c.mu.Unlock()

	return deep.MustCopy(snap)
}

// Checkpoint records the instructions, the route and the position's
// pilot-set values; the returned function puts them back. It must be
// called on the aircraft's update worker, with no update in between.
func (c *AircraftControl) Checkpoint(pos *AircraftPosition) (restore func()) {
	restoreFms := c.Fms.checkpoint()

	c.mu.Lock()
	currentLateral, armedLateral := c.currentLateral, c.armedLateral
	currentVertical, armedVertical := c.currentVertical, maps.Clone(c.armedVertical)
	speed := c.speed
	c.mu.Unlock()

	altimeter, vs, pitch := pos.AltimeterSetting(), pos.VerticalSpeed(), pos.Pitch()

	return func() {
		restoreFms()

		c.mu.Lock()
		c.currentLateral, c.armedLateral = currentLateral, armedLateral
		c.currentVertical, c.armedVertical = currentVertical, armedVertical
		c.speed = speed
		c.mu.Unlock()

		pos.SetAltimeterSetting(altimeter)
		pos.SetVerticalSpeed(vs)
		pos.SetPitch(pitch)
	}
}

func (s ControlSnapshot) String() string {
	str := fmt.Sprintf("lateral %s", s.CurrentLateral)
	if s.ArmedLateral != nil {
		str += fmt.Sprintf(" (armed %s)", s.ArmedLateral)
	}
	str += fmt.Sprintf(" vertical %s", s.CurrentVertical)
	for _, v := range s.ArmedVertical {
		str += fmt.Sprintf(" (armed %s)", v)
	}
	str += " speed " + s.Speed.String()
	return str
}

func (c *AircraftControl) LogValue() slog.Value {
	c.mu.Lock()
	defer c.mu.Unlock()
	attrs := []slog.Attr{
		slog.String("lateral", c.currentLateral.String()),
		slog.String("vertical", c.currentVertical.String()),
		slog.String("speed", c.speed.String()),
	}
	if c.armedLateral != nil {
		attrs = append(attrs, slog.String("armed_lateral", c.armedLateral.String()))
	}
	for _, v := range c.armedVerticalLocked() {
		attrs = append(attrs, slog.String("armed_"+v.Mode().String(), v.String()))
	}
	if leg := c.Fms.ActiveLeg(); leg != nil {
		attrs = append(attrs, slog.String("active_leg", leg.String()))
	}
	return slog.GroupValue(attrs...)
}
