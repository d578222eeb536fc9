// aviation/magnetic.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"time"

	"github.com/sauna-sim/sauna-api-sub001/math"
)

// MagneticModel provides the magnetic variation (declination) at a point
// on the earth; east variation is positive.
type MagneticModel interface {
	Declination(p math.Point2LL, t time.Time) float32
}

func declination(m MagneticModel, p math.Point2LL, t time.Time) float32 {
	if m == nil {
		// No model loaded: true and magnetic are the same.
		return 0
	}
	return m.Declination(p, t)
}

// TrueToMagnetic converts a true bearing at p to a magnetic bearing. A nil
// model is allowed and gives zero variation.
func TrueToMagnetic(m MagneticModel, p math.Point2LL, t time.Time, bearing float32) float32 {
	return math.NormalizeHeading(bearing - declination(m, p, t))
}

// MagneticToTrue is the inverse of TrueToMagnetic.
func MagneticToTrue(m MagneticModel, p math.Point2LL, t time.Time, bearing float32) float32 {
	return math.NormalizeHeading(bearing + declination(m, p, t))
}

// FixedDeclination applies the same variation everywhere; it's handy for
// tests and for sessions confined to a small area.
type FixedDeclination float32

func (d FixedDeclination) Declination(math.Point2LL, time.Time) float32 {
	return float32(d)
}

// DipoleModel approximates the earth's field as a dipole whose north pole
// is at Pole; the declination at a point is then the bearing from the
// point to the pole.
type DipoleModel struct {
	Pole math.Point2LL
}

// DefaultDipole uses the geomagnetic north pole of the 2025 field model.
var DefaultDipole = DipoleModel{Pole: math.Point2LL{-72.7, 80.8}}

func (d DipoleModel) Declination(p math.Point2LL, t time.Time) float32 {
	if math.DistanceMeters(p, d.Pole) < 1000 || p[1] >= 89.99 || p[1] <= -89.99 {
		return 0
	}
	return math.TurnAmount(0, math.InitialBearing(p, d.Pole))
}
