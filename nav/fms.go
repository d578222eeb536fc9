// nav/fms.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"slices"
	"sync"
	"time"

	av "github.com/sauna-sim/sauna-api-sub001/aviation"
	"github.com/sauna-sim/sauna-api-sub001/math"
)

// Minimum course change between legs for the turn to be anticipated.
const minAnticipatedTurn = 0.5 // degrees

// AircraftFms holds the route: the active leg and the queue of legs that
// follow it. The queue and the active leg are protected by a mutex that
// is held only while they are read or replaced; the legs themselves are
// only updated by the aircraft's update worker.
type AircraftFms struct {
	Callsign       string
	CruiseAltitude float32
	Departure      string
	Arrival        string

	mu        sync.Mutex
	active    RouteLeg
	queue     []RouteLeg
	suspended bool
}

func NewAircraftFms(callsign string) *AircraftFms {
	return &AircraftFms{Callsign: callsign}
}

// AddLeg appends a leg to the end of the route.
func (f *AircraftFms) AddLeg(leg RouteLeg) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, leg)
}

// ActivateNextLeg makes the first queued leg the active one and returns
// it. If the queue is empty, nothing changes and false is returned.
func (f *AircraftFms) ActivateNextLeg() (RouteLeg, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activateNextLocked()
}

func (f *AircraftFms) activateNextLocked() (RouteLeg, bool) {
	if len(f.queue) == 0 {
		return nil, false
	}
	f.active = f.queue[0]
	f.queue = slices.Delete(f.queue, 0, 1)
	return f.active, true
}

func (f *AircraftFms) ActiveLeg() RouteLeg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// NextLeg returns the first queued leg or nil.
func (f *AircraftFms) NextLeg() RouteLeg {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return nil
	}
	return f.queue[0]
}

// Legs returns a copy of the queued legs, not including the active leg.
func (f *AircraftFms) Legs() []RouteLeg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.queue)
}

// Route returns the active leg, if any, followed by the queued legs.
func (f *AircraftFms) Route() []RouteLeg {
	f.mu.Lock()
	defer f.mu.Unlock()
	var r []RouteLeg
	if f.active != nil {
		r = append(r, f.active)
	}
	return append(r, f.queue...)
}

func (f *AircraftFms) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = nil
	f.queue = nil
}

// SetSuspended sets whether sequencing is suspended; while it is, the
// active leg is flown past its end.
func (f *AircraftFms) SetSuspended(s bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suspended = s
}

func (f *AircraftFms) Suspended() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suspended
}

func samePoint(a, b *av.FmsPoint) bool {
	if a == nil || b == nil {
		return false
	}
	return a == b || (a.Identifier == b.Identifier && math.NMDistance2LL(a.Location, b.Location) < 1)
}

// findEndPointLocked returns the index of the first leg ending at p: -1
// for the active leg, a queue index, or -2 if there is none.
func (f *AircraftFms) findEndPointLocked(p *av.FmsPoint) int {
	if f.active != nil && samePoint(f.active.EndPoint(), p) {
		return -1
	}
	for i, leg := range f.queue {
		if samePoint(leg.EndPoint(), p) {
			return i
		}
	}
	return -2
}

// FindPoint returns the first point in the route with the given
// identifier.
func (f *AircraftFms) FindPoint(id string) (*av.FmsPoint, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	check := func(leg RouteLeg) *av.FmsPoint {
		if leg == nil {
			return nil
		}
		if ep := leg.EndPoint(); ep != nil && ep.Identifier == id {
			return ep
		}
		return nil
	}
	if ep := check(f.active); ep != nil {
		return ep, true
	}
	for _, leg := range f.queue {
		if ep := check(leg); ep != nil {
			return ep, true
		}
	}
	return nil, false
}

// DirectTo replaces the route up to and including the first leg that
// ends at p with a direct leg to p; the rest of the route is kept. If
// the route doesn't include p, the entire route is replaced. It returns
// whether p was found in the route.
func (f *AircraftFms) DirectTo(p *av.FmsPoint) (*DirectToFixLeg, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.findEndPointLocked(p)
	found := idx != -2
	switch {
	case idx >= 0:
		// Use the route's point so that its constraints are kept.
		p = f.queue[idx].EndPoint()
		f.queue = slices.Delete(f.queue, 0, idx+1)
	case idx == -1:
		p = f.active.EndPoint()
	default:
		f.queue = nil
	}

	df := NewDirectToFixLeg(p)
	f.active = df
	return df, found
}

// checkpoint returns a function that restores the route as it is now,
// including the end point types and the holds' exit state.
func (f *AircraftFms) checkpoint() func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	active, queue, suspended := f.active, slices.Clone(f.queue), f.suspended
	legs := append([]RouteLeg{active}, queue...)
	types := make(map[*av.FmsPoint]av.PointType)
	exits := make(map[*HoldController]bool)
	for _, leg := range legs {
		if leg == nil {
			continue
		}
		if p := leg.EndPoint(); p != nil {
			types[p] = p.Type
		}
		if hm, ok := leg.(*HoldToManualLeg); ok {
			exits[hm.Hold] = hm.Hold.exitArmed
		}
	}

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()

		f.active, f.queue, f.suspended = active, queue, suspended
		for p, t := range types {
			p.Type = t
		}
		for h, armed := range exits {
			h.exitArmed = armed
		}
	}
}

// InsertHold adds a hold after the first leg that ends at its fix. The
// fix becomes a fly-over point.
func (f *AircraftFms) InsertHold(h *HoldController) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.findEndPointLocked(h.Fix)
	if idx == -2 {
		return ErrFixNotInRoute
	}

	var end *av.FmsPoint
	if idx == -1 {
		end = f.active.EndPoint()
	} else {
		end = f.queue[idx].EndPoint()
	}
	end.Type = av.FlyOver
	h.Fix = end

	f.queue = slices.Insert(f.queue, idx+1, RouteLeg(NewHoldToManualLeg(h)))
	return nil
}

// ArmHoldExit arms the exit of the active hold or, failing that, the
// first hold in the route.
func (f *AircraftFms) ArmHoldExit() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if hm, ok := f.active.(*HoldToManualLeg); ok {
		hm.Hold.ArmExit()
		return nil
	}
	for _, leg := range f.queue {
		if hm, ok := leg.(*HoldToManualLeg); ok {
			hm.Hold.ArmExit()
			return nil
		}
	}
	return ErrNotHolding
}

// ActiveHold returns the hold being flown, if any.
func (f *AircraftFms) ActiveHold() *HoldController {
	if hm, ok := f.ActiveLeg().(*HoldToManualLeg); ok {
		return hm.Hold
	}
	return nil
}

// shouldAnticipate returns true if the aircraft should begin turning onto
// next before reaching the end of active.
func shouldAnticipate(active, next RouteLeg, pos *AircraftPosition, dt time.Duration) bool {
	ep := active.EndPoint()
	if ep == nil || ep.Type != av.FlyBy || !legAnticipatesTurn(active) {
		return false
	}
	final, initial := active.FinalTrueCourse(), next.InitialTrueCourse()
	if final < 0 || initial < 0 || math.HeadingDifference(final, initial) <= minAnticipatedTurn {
		return false
	}
	return next.ShouldBeginTurn(pos, dt)
}

// sequence replaces the active leg with the next one if it is still
// active; it returns false if something else changed the route first.
func (f *AircraftFms) sequence(from RouteLeg) (RouteLeg, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active != from {
		return f.active, false
	}
	if leg, ok := f.activateNextLocked(); ok {
		return leg, true
	}
	f.active = nil
	return nil, true
}

// UpdateLateral flies the active leg for one tick, first sequencing to
// the next leg if the active one has terminated or the turn onto the
// next one should begin. It returns false if there is no leg to fly.
func (f *AircraftFms) UpdateLateral(pos *AircraftPosition, dt time.Duration) ([]LegEvent, bool) {
	f.mu.Lock()
	active, suspended := f.active, f.suspended
	var next RouteLeg
	if len(f.queue) > 0 {
		next = f.queue[0]
	}
	if active == nil && next != nil && !suspended {
		active, _ = f.activateNextLocked()
		next = nil
		if len(f.queue) > 0 {
			next = f.queue[0]
		}
	}
	f.mu.Unlock()

	if active == nil {
		return nil, false
	}

	var events []LegEvent
	if !suspended {
		terminated := active.HasLegTerminated(pos)
		if terminated || (next != nil && shouldAnticipate(active, next, pos, dt)) {
			if terminated && next == nil {
				// End of the route.
				f.sequence(active)
				NavLog(f.Callsign, pos.Time(), NavLogRoute, "route complete after %s", active)
				return []LegEvent{{Type: EventLegTerminated, Point: active.EndPoint(), Leg: active.String()}}, false
			}
			if leg, ok := f.sequence(active); ok {
				NavLog(f.Callsign, pos.Time(), NavLogWaypoint, "sequenced %s -> %s (terminated %v)",
					active, leg, terminated)
				events = append(events, LegEvent{Type: EventLegTerminated, Point: active.EndPoint(), Leg: active.String()})
				active = leg
			}
		}
	}

	if ev := active.UpdateLateralPosition(pos, dt); ev.Type != EventNone {
		events = append(events, ev)
	}
	return events, true
}
