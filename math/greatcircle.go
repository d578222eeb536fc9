// math/greatcircle.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
)

// Spherical-earth navigation. Positions are stored as float32 but the
// trigonometry is done in float64: differences of nearby angles lose too
// much precision otherwise.
//
// https://www.movable-type.co.uk/scripts/latlong.html

const EarthRadiusMeters = 6371008.8

func (p Point2LL) radians() (lat, lon float64) {
	return float64(p[1]) * gomath.Pi / 180, float64(p[0]) * gomath.Pi / 180
}

func fromRadians(lat, lon float64) Point2LL {
	lon = gomath.Mod(lon+3*gomath.Pi, 2*gomath.Pi) - gomath.Pi
	return Point2LL{float32(lon * 180 / gomath.Pi), float32(lat * 180 / gomath.Pi)}
}

func clamp64(v float64) float64 {
	return gomath.Max(-1, gomath.Min(1, v))
}

// angular distance between a and b, in radians.
func angularDistance(a, b Point2LL) float64 {
	lat1, lon1 := a.radians()
	lat2, lon2 := b.radians()
	dlat, dlon := lat2-lat1, lon2-lon1

	h := Sqr(gomath.Sin(dlat/2)) + gomath.Cos(lat1)*gomath.Cos(lat2)*Sqr(gomath.Sin(dlon/2))
	return 2 * gomath.Atan2(gomath.Sqrt(h), gomath.Sqrt(gomath.Max(0, 1-h)))
}

// initial bearing from a to b in radians, measured clockwise from north.
func initialBearing(a, b Point2LL) float64 {
	lat1, lon1 := a.radians()
	lat2, lon2 := b.radians()
	dlon := lon2 - lon1

	y := gomath.Sin(dlon) * gomath.Cos(lat2)
	x := gomath.Cos(lat1)*gomath.Sin(lat2) - gomath.Sin(lat1)*gomath.Cos(lat2)*gomath.Cos(dlon)
	return gomath.Atan2(y, x)
}

// DistanceMeters returns the great-circle distance between two points.
func DistanceMeters(a, b Point2LL) float32 {
	return float32(angularDistance(a, b) * EarthRadiusMeters)
}

// InitialBearing returns the true course in degrees at a of the great
// circle from a to b. Coincident points give 0.
func InitialBearing(a, b Point2LL) float32 {
	return NormalizeHeading(float32(initialBearing(a, b) * 180 / gomath.Pi))
}

// FinalBearing returns the true course in degrees on arrival at b when
// following the great circle from a.
func FinalBearing(a, b Point2LL) float32 {
	return OppositeHeading(InitialBearing(b, a))
}

// Destination returns the point reached by travelling the given number of
// meters from p along the great circle with initial true bearing hdg.
func Destination(p Point2LL, hdg float32, meters float32) Point2LL {
	lat1, lon1 := p.radians()
	d := float64(meters) / EarthRadiusMeters
	theta := float64(hdg) * gomath.Pi / 180

	lat2 := gomath.Asin(clamp64(gomath.Sin(lat1)*gomath.Cos(d) + gomath.Cos(lat1)*gomath.Sin(d)*gomath.Cos(theta)))
	lon2 := lon1 + gomath.Atan2(gomath.Sin(theta)*gomath.Sin(d)*gomath.Cos(lat1),
		gomath.Cos(d)-gomath.Sin(lat1)*gomath.Sin(lat2))
	return fromRadians(lat2, lon2)
}

// crossAlong returns the cross-track and along-track angular distances of
// p with respect to the great circle through start with the given course.
func crossAlong(p, start Point2LL, course float32) (xt, at float64) {
	d13 := angularDistance(start, p)
	if d13 == 0 {
		return 0, 0
	}
	dtheta := initialBearing(start, p) - float64(course)*gomath.Pi/180

	xt = gomath.Asin(clamp64(gomath.Sin(d13) * gomath.Sin(dtheta)))
	at = gomath.Acos(clamp64(gomath.Cos(d13) / gomath.Cos(xt)))
	if gomath.Cos(dtheta) < 0 {
		at = -at
	}
	return
}

// CrossTrackMeters returns the distance of p from the great circle that
// passes through start with true course |course|. Points to the right of
// the direction of travel give positive values.
func CrossTrackMeters(p, start Point2LL, course float32) float32 {
	xt, _ := crossAlong(p, start, course)
	return float32(xt * EarthRadiusMeters)
}

// AlongTrackMeters returns the distance from start to the point abeam p
// on the great circle through start with true course |course|; it is
// negative when p is behind start.
func AlongTrackMeters(p, start Point2LL, course float32) float32 {
	_, at := crossAlong(p, start, course)
	return float32(at * EarthRadiusMeters)
}

// IntersectRadials returns the point where the great circle leaving p1 on
// true bearing brg1 meets the one leaving p2 on true bearing brg2. The
// returned bool is false if the points are coincident, the radials are
// the same great circle, or the intersection is ambiguous (behind one of
// the two points).
func IntersectRadials(p1 Point2LL, brg1 float32, p2 Point2LL, brg2 float32) (Point2LL, bool) {
	lat1, lon1 := p1.radians()
	lat2, lon2 := p2.radians()
	t13 := float64(brg1) * gomath.Pi / 180
	t23 := float64(brg2) * gomath.Pi / 180

	d12 := angularDistance(p1, p2)
	if d12 < 1e-9 {
		return Point2LL{}, false
	}

	cosTa := (gomath.Sin(lat2) - gomath.Sin(lat1)*gomath.Cos(d12)) / (gomath.Sin(d12) * gomath.Cos(lat1))
	cosTb := (gomath.Sin(lat1) - gomath.Sin(lat2)*gomath.Cos(d12)) / (gomath.Sin(d12) * gomath.Cos(lat2))
	ta := gomath.Acos(clamp64(cosTa))
	tb := gomath.Acos(clamp64(cosTb))

	var t12, t21 float64
	if gomath.Sin(lon2-lon1) > 0 {
		t12, t21 = ta, 2*gomath.Pi-tb
	} else {
		t12, t21 = 2*gomath.Pi-ta, tb
	}

	a1 := t13 - t12
	a2 := t21 - t23
	s1, s2 := gomath.Sin(a1), gomath.Sin(a2)
	if gomath.Abs(s1) < 1e-12 && gomath.Abs(s2) < 1e-12 {
		return Point2LL{}, false
	}
	if s1*s2 < 0 {
		return Point2LL{}, false
	}

	cosA3 := -gomath.Cos(a1)*gomath.Cos(a2) + s1*s2*gomath.Cos(d12)
	d13 := gomath.Atan2(gomath.Sin(d12)*s1*s2, gomath.Cos(a2)+gomath.Cos(a1)*cosA3)

	lat3 := gomath.Asin(clamp64(gomath.Sin(lat1)*gomath.Cos(d13) + gomath.Cos(lat1)*gomath.Sin(d13)*gomath.Cos(t13)))
	dlon13 := gomath.Atan2(gomath.Sin(t13)*gomath.Sin(d13)*gomath.Cos(lat1), gomath.Cos(d13)-gomath.Sin(lat1)*gomath.Sin(lat3))
	return fromRadians(lat3, lon1+dlon13), true
}
