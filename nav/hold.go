// nav/hold.go
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

// DefaultHoldRadiusBuffer is the factor by which hold turn radii exceed
// the radius the aircraft would fly at its current speed.
const DefaultHoldRadiusBuffer = 1.1

type HoldPhase int

const (
	HoldPhaseEntry HoldPhase = iota
	HoldPhaseTurnOutbound
	HoldPhaseOutbound
	HoldPhaseTurnInbound
	HoldPhaseInbound
)

func (p HoldPhase) String() string {
	return []string{"entry", "turn outbound", "outbound", "turn inbound", "inbound"}[int(p)]
}

// HoldController flies a holding pattern. The aircraft first flies to the
// fix; the entry procedure is chosen when it gets there. Each circuit
// consists of four sub-legs (outbound turn, outbound, inbound turn and
// inbound), which are recomputed each time around so that they follow
// changes in speed and wind.
type HoldController struct {
	Fix             *av.FmsPoint
	InboundCourse   float32 // true
	InboundMagnetic float32
	Turn            av.TurnDirection // TurnLeft or TurnRight
	LegLength       av.HoldLegLength
	RadiusBuffer    float32

	entry       av.HoldEntry
	haveEntry   bool
	phase       HoldPhase
	legs        []RouteLeg
	legIndex    int
	exitArmed   bool
	radius      float32 // meters
	legLengthNM float32
}

// NewHoldController returns a controller for a hold at fix with the
// given inbound course (true and magnetic).
func NewHoldController(fix *av.FmsPoint, inboundTrue, inboundMagnetic float32, turn av.TurnDirection,
	length av.HoldLegLength, radiusBuffer float32) *HoldController {
	if turn != av.TurnLeft {
		turn = av.TurnRight
	}
	if radiusBuffer < 1 {
		radiusBuffer = DefaultHoldRadiusBuffer
	}
	return &HoldController{
		Fix:             fix,
		InboundCourse:   math.NormalizeHeading(inboundTrue),
		InboundMagnetic: math.NormalizeHeading(inboundMagnetic),
		Turn:            turn,
		LegLength:       length,
		RadiusBuffer:    radiusBuffer,
	}
}

// Entry returns the entry procedure; the bool is false until the
// aircraft has reached the fix and it has been determined.
func (h *HoldController) Entry() (av.HoldEntry, bool) { return h.entry, h.haveEntry }
func (h *HoldController) Phase() HoldPhase            { return h.phase }
func (h *HoldController) ExitArmed() bool             { return h.exitArmed }
func (h *HoldController) Radius() float32             { return h.radius }
func (h *HoldController) LegLengthNM() float32        { return h.legLengthNM }

// ArmExit makes the hold end the next time the aircraft reaches the fix
// on the inbound leg.
func (h *HoldController) ArmExit() { h.exitArmed = true }

// SubLegs returns the sub-legs being flown.
func (h *HoldController) SubLegs() []RouteLeg {
	return append([]RouteLeg(nil), h.legs...)
}

// CurrentSubLeg returns the sub-leg being flown or nil before the first
// update.
func (h *HoldController) CurrentSubLeg() RouteLeg {
	if h.legIndex < len(h.legs) {
		return h.legs[h.legIndex]
	}
	return nil
}

// Terminated returns true when the exit has been armed and the aircraft
// has completed the inbound leg.
func (h *HoldController) Terminated(pos *AircraftPosition) bool {
	leg := h.CurrentSubLeg()
	return h.exitArmed && h.phase == HoldPhaseInbound && leg != nil && leg.HasLegTerminated(pos)
}

func (h *HoldController) Update(pos *AircraftPosition, dt time.Duration) LegEvent {
	var ev LegEvent
	if h.legs == nil {
		h.legs = []RouteLeg{NewDirectToFixLeg(h.Fix)}
		h.legIndex = 0
		h.phase = HoldPhaseEntry
		// Normally the hold is sequenced as the fix is crossed.
		if math.DistanceMeters(pos.Location(), h.Fix.Location) <= pos.DistanceInTick(dt)+waypointPassedThreshold {
			ev = h.advance(pos)
		}
	} else if h.legs[h.legIndex].HasLegTerminated(pos) && !(h.exitArmed && h.phase == HoldPhaseInbound) {
		ev = h.advance(pos)
	}

	if lev := h.legs[h.legIndex].UpdateLateralPosition(pos, dt); ev.Type == EventNone {
		ev = lev
	}
	return ev
}

// advance moves to the next sub-leg, building a new set at the fix.
func (h *HoldController) advance(pos *AircraftPosition) LegEvent {
	switch {
	case h.phase == HoldPhaseEntry:
		h.entry = av.SelectHoldEntry(pos.TrueTrack(), h.InboundCourse, h.Turn)
		h.haveEntry = true
		h.legs = h.buildLegs(pos, h.entry, false)
	case h.legIndex+1 < len(h.legs):
		h.legIndex++
		h.phase++
		return LegEvent{Type: EventHoldPhase, HoldPhase: h.phase}
	default:
		h.legs = h.buildLegs(pos, h.entry, true)
	}
	h.legIndex = 0
	h.phase = HoldPhaseTurnOutbound
	return LegEvent{Type: EventHoldPhase, HoldPhase: h.phase, Point: h.Fix}
}

// computeGeometry sizes the turns and the legs for the aircraft's
// current speed and the wind.
func (h *HoldController) computeGeometry(pos *AircraftPosition) {
	entryRadius := TurnRadiusAt(pos.GS())
	steadyRadius := TurnRadiusAt(pos.TAS() + pos.Wind().Speed)
	h.radius = math.Max(entryRadius, steadyRadius) * h.RadiusBuffer

	inboundGS := pos.GroundSpeedOnTrack(h.InboundCourse)
	h.legLengthNM = h.LegLength.DistanceNM(pos.IndicatedAltitude(), inboundGS)
	// The legs must be long enough for the turns to connect.
	h.legLengthNM = math.Max(h.legLengthNM, 2*h.radius/math.MetersPerNM)
}

func (h *HoldController) point(suffix string, p math.Point2LL) *av.FmsPoint {
	return av.NewFmsPoint(h.Fix.Identifier+"/"+suffix, p, av.FlyOver)
}

// buildLegs returns the four sub-legs for the given entry procedure, or
// for a regular circuit if steady is set.
func (h *HoldController) buildLegs(pos *AircraftPosition, entry av.HoldEntry, steady bool) []RouteLeg {
	h.computeGeometry(pos)

	f := h.Fix.Location
	in := h.InboundCourse
	out := math.OppositeHeading(in)
	s := h.Turn.Sign()
	r := h.radius
	l := h.legLengthNM * math.MetersPerNM

	// Outbound turn from the fix around c1 to p1, then the outbound leg
	// to p2 and the inbound turn around c2 to p3, which is on the inbound
	// course.
	c1 := math.Destination(f, in+s*90, r)
	p1 := h.point("P1", math.Destination(f, in+s*90, 2*r))
	p2 := h.point("P2", math.Destination(p1.Location, out, l))
	c2 := math.Destination(p2.Location, in-s*90, r)
	p3 := h.point("P3", math.Destination(p2.Location, in-s*90, 2*r))
	inbound := NewCourseToFixLeg(h.Fix, in)

	if steady {
		return []RouteLeg{
			NewRadiusToFixLeg(h.Fix, p1, c1, h.Turn),
			NewTrackToFixLeg(p1, p2),
			NewRadiusToFixLeg(p2, p3, c2, h.Turn),
			inbound,
		}
	}

	switch entry {
	case av.HoldEntryDirect:
		return []RouteLeg{
			NewDirectToFixLeg(p1),
			NewTrackToFixLeg(p1, p2),
			NewRadiusToFixLeg(p2, p3, c2, h.Turn),
			inbound,
		}

	case av.HoldEntryTeardrop:
		// Outbound 30 degrees toward the holding side, then a turn in the
		// holding direction along the arc tangent to both the outbound
		// track and the inbound course. The points of tangency are d
		// from the fix; the arc's radius is d*tan(15), at least r.
		brg := out - s*30
		d := math.Max(l, r/math.Tan(math.Radians(15)))
		ta := h.point("TA", math.Destination(f, brg, r))
		t := h.point("T", math.Destination(f, brg, d))
		tc := math.Destination(f, out-s*15, d/math.Cos(math.Radians(15)))
		ti := h.point("TI", math.Destination(f, out, d))
		return []RouteLeg{
			NewTrackToFixLeg(h.Fix, ta),
			NewTrackToFixLeg(ta, t),
			NewRadiusToFixLeg(t, ti, tc, h.Turn),
			inbound,
		}

	case av.HoldEntryParallel:
		// Outbound on the reciprocal of the inbound course, then a turn
		// away from the holding direction through 210 degrees, which
		// leaves the aircraft on the holding side converging on the
		// inbound course at 30 degrees.
		d := math.Max(l, 4*r)
		away := util.Select(h.Turn == av.TurnLeft, av.TurnRight, av.TurnLeft)
		q1 := h.point("Q1", math.Destination(f, out, r))
		q2 := h.point("Q2", math.Destination(f, out, d))
		qc := math.Destination(q2.Location, in+s*90, r)
		q3 := h.point("Q3", math.Destination(qc, in+s*60, r))
		return []RouteLeg{
			NewTrackToFixLeg(h.Fix, q1),
			NewTrackToFixLeg(q1, q2),
			NewRadiusToFixLeg(q2, q3, qc, away),
			inbound,
		}

	default:
		panic(fmt.Sprintf("unhandled hold entry %v", entry))
	}
}

func (h *HoldController) String() string {
	return fmt.Sprintf("%s %03.0f %s %s", h.Fix.Identifier, h.InboundMagnetic, h.Turn, h.LegLength)
}

func (h *HoldController) LogValue() slog.Value {
	entry := "(pending)"
	if h.haveEntry {
		entry = h.entry.String()
	}
	return slog.GroupValue(
		slog.String("fix", h.Fix.Identifier),
		slog.Float64("inbound", float64(h.InboundCourse)),
		slog.String("turn", h.Turn.String()),
		slog.String("entry", entry),
		slog.String("phase", h.phase.String()),
		slog.Bool("exit_armed", h.exitArmed),
		slog.Float64("radius", float64(h.radius)),
		slog.Float64("leg_nm", float64(h.legLengthNM)))
}
