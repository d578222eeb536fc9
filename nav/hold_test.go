// nav/hold_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"testing"
	"time"

	av "github.com/sauna-sim/sauna-api-sub001/aviation"
	"github.com/sauna-sim/sauna-api-sub001/math"
)

func TestHoldEntryLegs(t *testing.T) {
	tests := []struct {
		name     string
		track    float32
		entry    av.HoldEntry
		expected []LegType
	}{
		{"direct", 90, av.HoldEntryDirect, []LegType{LegDirectToFix, LegTrackToFix, LegRadiusToFix, LegCourseToFix}},
		{"teardrop", 330, av.HoldEntryTeardrop, []LegType{LegTrackToFix, LegTrackToFix, LegRadiusToFix, LegCourseToFix}},
		{"parallel", 210, av.HoldEntryParallel, []LegType{LegTrackToFix, LegTrackToFix, LegRadiusToFix, LegCourseToFix}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix := av.NewFmsPoint("FIX", math.Point2LL{0, 0}, av.FlyOver)
			h := NewHoldController(fix, 270, 270, av.TurnRight, av.HoldLegLength{}, 0)
			if _, ok := h.Entry(); ok {
				t.Errorf("entry determined before reaching the fix")
			}

			pos := makePosition(fix.Location, 5000, tt.track, 250, nil)
			ev := h.Update(pos, time.Second)

			if e, ok := h.Entry(); !ok || e != tt.entry {
				t.Errorf("Entry() = %s, %v, expected %s", e, ok, tt.entry)
			}
			if ev.Type != EventHoldPhase || ev.HoldPhase != HoldPhaseTurnOutbound {
				t.Errorf("event = %s, expected hold %s", ev, HoldPhaseTurnOutbound)
			}
			legs := h.SubLegs()
			if len(legs) != len(tt.expected) {
				t.Fatalf("sub-legs = %v, expected %v", legs, tt.expected)
			}
			for i, leg := range legs {
				if leg.Type() != tt.expected[i] {
					t.Errorf("sub-leg %d = %s, expected %s", i, leg.Type(), tt.expected[i])
				}
			}
			if last := legs[len(legs)-1]; last.EndPoint() != fix || math.HeadingDifference(last.FinalTrueCourse(), 270) > 0.01 {
				t.Errorf("last sub-leg = %s, expected inbound to the fix on 270", last)
			}
		})
	}
}

func TestHoldEntries(t *testing.T) {
	tests := []struct {
		turn  av.TurnDirection
		track float32
		entry av.HoldEntry
	}{
		{av.TurnRight, 30, av.HoldEntryDirect},
		{av.TurnRight, 90, av.HoldEntryDirect},
		{av.TurnRight, 140, av.HoldEntryDirect},
		{av.TurnRight, 290, av.HoldEntryTeardrop},
		{av.TurnRight, 320, av.HoldEntryTeardrop},
		{av.TurnRight, 180, av.HoldEntryParallel},
		{av.TurnRight, 240, av.HoldEntryParallel},
		{av.TurnRight, 0, av.HoldEntryParallel},
		{av.TurnLeft, 30, av.HoldEntryDirect},
		{av.TurnLeft, 90, av.HoldEntryDirect},
		{av.TurnLeft, 140, av.HoldEntryDirect},
		{av.TurnLeft, 220, av.HoldEntryTeardrop},
		{av.TurnLeft, 250, av.HoldEntryTeardrop},
		{av.TurnLeft, 0, av.HoldEntryParallel},
		{av.TurnLeft, 300, av.HoldEntryParallel},
		{av.TurnLeft, 180, av.HoldEntryParallel},
	}
	for _, tt := range tests {
		for _, ias := range []float32{160, 250} {
			name := fmt.Sprintf("%s/%03.0f/%.0fkt", tt.turn, tt.track, ias)
			t.Run(name, func(t *testing.T) {
				fix := av.NewFmsPoint("HOLDS", math.Point2LL{0, 0}, av.FlyBy)
				start := math.Destination(fix.Location, math.OppositeHeading(tt.track), 5*math.MetersPerNM)
				c, pos := makeControl(start, 5000, tt.track, ias)

				h := NewHoldController(fix, 270, 270, tt.turn, av.HoldLegLength{}, 0)
				c.Hold(pos, h)

				seen := make(map[HoldPhase]int)
				var maxDist float32
				ticks := 0
				for ; ticks < 3000 && seen[HoldPhaseTurnOutbound] < 3; ticks++ {
					for _, ev := range c.UpdatePosition(pos, time.Second) {
						if ev.Type == EventHoldPhase {
							seen[ev.HoldPhase]++
						}
					}
					if _, ok := h.Entry(); ok {
						maxDist = math.Max(maxDist, math.DistanceMeters(pos.Location(), fix.Location))
					}
				}

				if e, ok := h.Entry(); !ok || e != tt.entry {
					t.Fatalf("Entry() = %s, %v, expected %s", e, ok, tt.entry)
				}
				for _, phase := range []HoldPhase{HoldPhaseTurnOutbound, HoldPhaseOutbound, HoldPhaseTurnInbound, HoldPhaseInbound} {
					if seen[phase] == 0 {
						t.Errorf("hold never reached phase %s", phase)
					}
				}
				if seen[HoldPhaseInbound] < 2 || seen[HoldPhaseTurnOutbound] < 3 {
					t.Errorf("hold phases = %v after %d ticks in phase %s, expected the entry and a full circuit",
						seen, ticks, h.Phase())
				}
				if limit := 6*h.Radius() + h.LegLengthNM()*math.MetersPerNM; maxDist > limit {
					t.Errorf("max distance from the fix = %v, expected at most %v", maxDist, limit)
				}
			})
		}
	}
}

func TestHoldGeometry(t *testing.T) {
	fix := av.NewFmsPoint("FIX", math.Point2LL{0, 0}, av.FlyOver)
	h := NewHoldController(fix, 270, 270, av.TurnRight, av.HoldLegLength{}, 0)
	pos := makePosition(fix.Location, 5000, 90, 250, nil)
	h.Update(pos, time.Second)

	if r := h.Radius(); r < DefaultHoldRadiusBuffer*TurnRadiusAt(pos.GS())-1 {
		t.Errorf("Radius = %v, expected at least %v", r, DefaultHoldRadiusBuffer*TurnRadiusAt(pos.GS()))
	}
	if l := h.LegLengthNM(); l < 2*h.Radius()/math.MetersPerNM {
		t.Errorf("LegLengthNM = %v, expected the turns to fit", l)
	}

	// Right turns: the pattern is on the north side of an inbound course
	// of 270.
	legs := h.SubLegs()
	for _, leg := range legs[:2] {
		if ep := leg.EndPoint(); ep.Location.Latitude() <= 0 {
			t.Errorf("sub-leg %s ends south of the fix", leg)
		}
	}
}

func TestHoldCircuit(t *testing.T) {
	start := math.Point2LL{0, 0}
	fix := av.NewFmsPoint("HOLDS", math.Point2LL{0.1, 0}, av.FlyBy)
	c, pos := makeControl(start, 5000, 90, 250)

	h := NewHoldController(fix, 270, 270, av.TurnRight, av.HoldLegLength{}, 0)
	c.Hold(pos, h)
	if _, ok := c.CurrentLateral().(*LNAV); !ok {
		t.Fatalf("current lateral = %s, expected LNAV", c.CurrentLateral())
	}
	if fix.Type != av.FlyOver {
		t.Errorf("hold fix is %s, expected fly-over", fix.Type)
	}

	seen := make(map[HoldPhase]int)
	for i := 0; i < 3000 && seen[HoldPhaseTurnOutbound] < 2; i++ {
		for _, ev := range c.UpdatePosition(pos, time.Second) {
			if ev.Type == EventHoldPhase {
				seen[ev.HoldPhase]++
			}
		}
	}

	if e, ok := h.Entry(); !ok || e != av.HoldEntryDirect {
		t.Fatalf("Entry() = %s, %v, expected Direct", e, ok)
	}
	for _, phase := range []HoldPhase{HoldPhaseTurnOutbound, HoldPhaseOutbound, HoldPhaseTurnInbound, HoldPhaseInbound} {
		if seen[phase] == 0 {
			t.Errorf("hold never reached phase %s", phase)
		}
	}
	if seen[HoldPhaseTurnOutbound] < 2 {
		t.Fatalf("hold completed %d circuits, expected 2", seen[HoldPhaseTurnOutbound])
	}
	if c.Fms.ActiveHold() != h {
		t.Fatalf("active hold = %v, expected %s", c.Fms.ActiveHold(), h)
	}
	// Steady circuits start with the outbound turn.
	if leg := h.CurrentSubLeg(); leg == nil || leg.Type() != LegRadiusToFix {
		t.Errorf("current sub-leg = %v, expected the outbound turn", leg)
	}

	if err := c.ArmHoldExit(pos); err != nil {
		t.Fatalf("ArmHoldExit: %v", err)
	}
	exited := false
	for range 1500 {
		c.UpdatePosition(pos, time.Second)
		if c.Fms.ActiveLeg() == nil {
			exited = true
			break
		}
	}
	if !exited {
		t.Fatalf("hold didn't end after the exit was armed; phase %s", h.Phase())
	}
	if d := math.DistanceMeters(pos.Location(), fix.Location); d > 1000 {
		t.Errorf("left the hold %vm from the fix, expected at the fix", d)
	}
	if math.HeadingDifference(pos.TrueTrack(), 270) > 15 {
		t.Errorf("track = %v on exit, expected inbound", pos.TrueTrack())
	}
}
