// math/greatcircle_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"testing"
)

// one degree of arc on the mean-radius sphere
const degreeMeters = EarthRadiusMeters * 3.14159265358979 / 180

func TestDistanceAndBearing(t *testing.T) {
	tests := []struct {
		name       string
		a, b       Point2LL
		distance   float32
		initialBrg float32
	}{
		{"east along equator", Point2LL{0, 0}, Point2LL{1, 0}, degreeMeters, 90},
		{"north along meridian", Point2LL{10, 0}, Point2LL{10, 1}, degreeMeters, 0},
		{"south", Point2LL{10, 1}, Point2LL{10, 0}, degreeMeters, 180},
		{"west", Point2LL{1, 0}, Point2LL{0, 0}, degreeMeters, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := DistanceMeters(tt.a, tt.b); Abs(d-tt.distance) > 1 {
				t.Errorf("DistanceMeters(%v, %v) = %v, expected %v", tt.a, tt.b, d, tt.distance)
			}
			if b := InitialBearing(tt.a, tt.b); HeadingDifference(b, tt.initialBrg) > 0.01 {
				t.Errorf("InitialBearing(%v, %v) = %v, expected %v", tt.a, tt.b, b, tt.initialBrg)
			}
		})
	}
}

func TestDestinationRoundTrip(t *testing.T) {
	start := Point2LL{-73.7781, 40.6413}
	for _, hdg := range []float32{0, 45, 133, 180, 271, 359} {
		for _, dist := range []float32{5000, 18520, 200000} {
			p := Destination(start, hdg, dist)
			if d := DistanceMeters(start, p); Abs(d-dist) > 1+dist*1e-5 {
				t.Errorf("Destination(%v, %v, %v): distance back %v", start, hdg, dist, d)
			}
			if b := InitialBearing(start, p); HeadingDifference(b, hdg) > 0.05 {
				t.Errorf("Destination(%v, %v, %v): bearing back %v", start, hdg, dist, b)
			}
		}
	}
}

func TestCrossAndAlongTrack(t *testing.T) {
	start := Point2LL{0, 0}
	tests := []struct {
		name         string
		p            Point2LL
		course       float32
		cross, along float32
	}{
		{"left of eastbound", Point2LL{0.5, 0.01}, 90, -0.01 * degreeMeters, 0.5 * degreeMeters},
		{"right of eastbound", Point2LL{0.5, -0.01}, 90, 0.01 * degreeMeters, 0.5 * degreeMeters},
		{"behind start", Point2LL{-0.5, 0}, 90, 0, -0.5 * degreeMeters},
		{"right of northbound", Point2LL{0.02, 0.3}, 0, 0.02 * degreeMeters, 0.3 * degreeMeters},
		{"at start", Point2LL{0, 0}, 45, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if xt := CrossTrackMeters(tt.p, start, tt.course); Abs(xt-tt.cross) > 2 {
				t.Errorf("CrossTrackMeters(%v, %v, %v) = %v, expected %v", tt.p, start, tt.course, xt, tt.cross)
			}
			if at := AlongTrackMeters(tt.p, start, tt.course); Abs(at-tt.along) > 2 {
				t.Errorf("AlongTrackMeters(%v, %v, %v) = %v, expected %v", tt.p, start, tt.course, at, tt.along)
			}
		})
	}
}

func TestIntersectRadials(t *testing.T) {
	p, ok := IntersectRadials(Point2LL{0, 0}, 45, Point2LL{1, 0}, 315)
	if !ok {
		t.Fatalf("IntersectRadials: expected an intersection")
	}
	if Abs(p[0]-0.5) > 0.01 || Abs(p[1]-0.5) > 0.01 {
		t.Errorf("IntersectRadials = %v, expected approximately (0.5, 0.5)", p)
	}

	if _, ok := IntersectRadials(Point2LL{0, 0}, 45, Point2LL{0, 0}, 90); ok {
		t.Errorf("IntersectRadials: coincident points should not intersect")
	}
	if _, ok := IntersectRadials(Point2LL{0, 0}, 45, Point2LL{1, 0}, 135); ok {
		t.Errorf("IntersectRadials: diverging radials should not intersect")
	}
}

func TestParseLatLong(t *testing.T) {
	tests := []struct {
		s        string
		expected Point2LL
		ok       bool
	}{
		{"N40.30.00.000,W073.15.00.000", Point2LL{-73.25, 40.5}, true},
		{"S33.56.24.000, E151.10.12.000", Point2LL{151.17, -33.94}, true},
		{"40.5,-73.25", Point2LL{-73.25, 40.5}, true},
		{"95.0,10.0", Point2LL{}, false},
		{"KJFK", Point2LL{}, false},
	}
	for _, tt := range tests {
		p, err := ParseLatLong([]byte(tt.s))
		if (err == nil) != tt.ok {
			t.Errorf("ParseLatLong(%q) error = %v, expected ok %v", tt.s, err, tt.ok)
			continue
		}
		if tt.ok && (Abs(p[0]-tt.expected[0]) > 1e-3 || Abs(p[1]-tt.expected[1]) > 1e-3) {
			t.Errorf("ParseLatLong(%q) = %v, expected %v", tt.s, p, tt.expected)
		}
	}
}
