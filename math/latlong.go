// math/latlong.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

const (
	NMPerLatitude        = 60
	MetersPerNM          = 1852
	NauticalMilesToFeet  = 6076.12
	FeetToNauticalMiles  = 1 / NauticalMilesToFeet
	FeetPerMeter         = 3.28084
	MetersPerFoot        = 1 / FeetPerMeter
	KnotsToMetersPerSec  = 0.514444
	MetersPerSecToKnots  = 1 / KnotsToMetersPerSec
	StandardGravityMPerS = 9.80665
)

///////////////////////////////////////////////////////////////////////////
// Point2LL

// Point2LL represents a 2D point on the Earth in latitude-longitude.
// Important: 0 (x) is longitude, 1 (y) is latitude
type Point2LL [2]float32

func (p Point2LL) Longitude() float32 {
	return p[0]
}

func (p Point2LL) Latitude() float32 {
	return p[1]
}

func (p Point2LL) IsZero() bool {
	return p[0] == 0 && p[1] == 0
}

// DDString returns the position in decimal degrees, e.g.:
// (39.860901, -75.274864)
func (p Point2LL) DDString() string {
	return fmt.Sprintf("(%f, %f)", p[1], p[0]) // latitude, longitude
}

// DMSString returns the position in degrees minutes, seconds, e.g.
// N039.51.39.243,W075.16.29.511
func (p Point2LL) DMSString() string {
	format := func(v float32) string {
		s := fmt.Sprintf("%03d", int(v))
		v -= Floor(v)
		v *= 60
		s += fmt.Sprintf(".%02d", int(v))
		v -= Floor(v)
		v *= 60
		s += fmt.Sprintf(".%02d", int(v))
		v -= Floor(v)
		v *= 1000
		s += fmt.Sprintf(".%03d", int(v))
		return s
	}

	s := "N"
	if p[1] < 0 {
		s = "S"
	}
	s += format(Abs(p[1]))

	if p[0] < 0 {
		s += ",W"
	} else {
		s += ",E"
	}
	s += format(Abs(p[0]))

	return s
}

var (
	// pair of floats (no exponents), latitude first
	reWaypointFloat = regexp.MustCompile(`^(\-?[0-9]+\.?[0-9]*), *(\-?[0-9]+\.?[0-9]*)$`)
	// N40.37.58.400,W073.46.17.000
	reWaypointDotted = regexp.MustCompile(`^([NS])([0-9]+)\.([0-9]+)\.([0-9]+)\.([0-9]+), *([EW])([0-9]+)\.([0-9]+)\.([0-9]+)\.([0-9]+)$`)
)

// ParseLatLong parses positions given either as dotted degrees, minutes,
// seconds ("N40.37.58.400,W073.46.17.000") or as a latitude, longitude
// pair of decimal degrees ("40.6328,-73.7714").
func ParseLatLong(llstr []byte) (Point2LL, error) {
	if strs := reWaypointDotted.FindStringSubmatch(string(llstr)); len(strs) == 11 {
		parse := func(hemi, deg, min, sec, frac string) (float32, error) {
			var v [4]int
			for i, s := range []string{deg, min, sec, frac} {
				n, err := strconv.Atoi(s)
				if err != nil {
					return 0, err
				}
				v[i] = n
			}
			// Nxx.yy.zz.1 is handled like Nxx.yy.zz.100.
			for j := len(frac); j < 3; j++ {
				v[3] *= 10
			}
			ll := float32(v[0]) + float32(v[1])/60 + float32(v[2])/3600 + float32(v[3])/3600000
			if hemi == "S" || hemi == "W" {
				ll = -ll
			}
			return ll, nil
		}

		var p Point2LL
		var err error
		if p[1], err = parse(strs[1], strs[2], strs[3], strs[4], strs[5]); err != nil {
			return Point2LL{}, err
		}
		if p[0], err = parse(strs[6], strs[7], strs[8], strs[9], strs[10]); err != nil {
			return Point2LL{}, err
		}
		return p, nil
	} else if strs := reWaypointFloat.FindStringSubmatch(string(llstr)); len(strs) == 3 {
		lat, err := strconv.ParseFloat(strs[1], 32)
		if err != nil {
			return Point2LL{}, err
		}
		lon, err := strconv.ParseFloat(strs[2], 32)
		if err != nil {
			return Point2LL{}, err
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return Point2LL{}, fmt.Errorf("%s: latlong out of range", llstr)
		}
		return Point2LL{float32(lon), float32(lat)}, nil
	}
	return Point2LL{}, fmt.Errorf("%s: invalid latlong string", llstr)
}

// NMDistance2LL returns the distance in nautical miles between two
// provided lat-long coordinates.
func NMDistance2LL(a Point2LL, b Point2LL) float32 {
	return DistanceMeters(a, b) / MetersPerNM
}

// Store Point2LLs as strings is JSON, for compactness/friendliness...
func (p Point2LL) MarshalJSON() ([]byte, error) {
	return []byte("\"" + p.DMSString() + "\""), nil
}

func (p *Point2LL) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '[' {
		// [lon, lat] arrays of two floats are also accepted.
		var pt [2]float32
		err := json.Unmarshal(b, &pt)
		if err == nil {
			*p = pt
		}
		return err
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	pt, err := ParseLatLong([]byte(s))
	if err == nil {
		*p = pt
	}
	return err
}
