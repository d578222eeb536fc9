// aviation/atmosphere.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	gomath "math"

	"github.com/sauna-sim/sauna-api-sub001/math"
)

// International Standard Atmosphere. Altitudes are in feet, pressures in
// hectopascals, temperatures in degrees Celsius and speeds in knots.

const (
	StandardPressureHPa     = 1013.25
	StandardTemperatureC    = 15
	StandardLapseRateCPerFt = 0.0019812
	TropopauseFeet          = 36089
	TropopauseTemperatureC  = -56.5
	HPaPerInHg              = 33.8639

	// h = scale * (1 - (p/p0)^exponent), valid below the tropopause.
	pressureAltitudeScale    = 145366.45
	pressureAltitudeExponent = 0.190284

	speedOfSoundSeaLevelKts = 661.4786
	kelvinOffset            = 273.15
)

// StandardTemperature returns the ISA temperature at the given pressure
// altitude.
func StandardTemperature(pressureAltitude float32) float32 {
	if pressureAltitude >= TropopauseFeet {
		return TropopauseTemperatureC
	}
	return StandardTemperatureC - StandardLapseRateCPerFt*pressureAltitude
}

// pressureAt returns the pressure at altitude alt above the level where
// the pressure is ref.
func pressureAt(alt, ref float64) float64 {
	base := gomath.Max(1-alt/pressureAltitudeScale, 1e-6)
	return ref * gomath.Pow(base, 1/pressureAltitudeExponent)
}

// altitudeAt is the inverse of pressureAt.
func altitudeAt(p, ref float64) float64 {
	return pressureAltitudeScale * (1 - gomath.Pow(p/ref, pressureAltitudeExponent))
}

// StaticPressure returns the ambient pressure at an aircraft whose
// altimeter, set to altimeterHPa, reads the given indicated altitude.
func StaticPressure(indicatedAltitude, altimeterHPa float32) float32 {
	return float32(pressureAt(float64(indicatedAltitude), float64(altimeterHPa)))
}

// StandardPressure returns the ISA pressure at the given altitude.
func StandardPressure(alt float32) float32 {
	return float32(pressureAt(float64(alt), StandardPressureHPa))
}

// AbsoluteFromIndicated converts an indicated altitude to the true
// altitude above mean sea level given the altimeter setting and the
// actual sea-level pressure.
func AbsoluteFromIndicated(indicated, altimeterHPa, surfaceHPa float32) float32 {
	p := pressureAt(float64(indicated), float64(altimeterHPa))
	return float32(altitudeAt(p, float64(surfaceHPa)))
}

// IndicatedFromAbsolute is the inverse of AbsoluteFromIndicated.
func IndicatedFromAbsolute(absolute, altimeterHPa, surfaceHPa float32) float32 {
	p := pressureAt(float64(absolute), float64(surfaceHPa))
	return float32(altitudeAt(p, float64(altimeterHPa)))
}

// PressureAltitude returns the altitude that would be indicated with the
// altimeter set to standard pressure.
func PressureAltitude(indicated, altimeterHPa float32) float32 {
	p := pressureAt(float64(indicated), float64(altimeterHPa))
	return float32(altitudeAt(p, StandardPressureHPa))
}

// DensityAltitude returns the altitude in the standard atmosphere that
// has the same air density as air at the given pressure and temperature.
func DensityAltitude(pressureHPa, temperatureC float32) float32 {
	sigma := (float64(pressureHPa) / StandardPressureHPa) *
		((StandardTemperatureC + kelvinOffset) / (float64(temperatureC) + kelvinOffset))
	return float32(145442.16 * (1 - gomath.Pow(sigma, 0.234969)))
}

// SpeedOfSound returns the speed of sound in knots at the given
// temperature.
func SpeedOfSound(temperatureC float32) float32 {
	return float32(38.967854 * gomath.Sqrt(gomath.Max(float64(temperatureC)+kelvinOffset, 1)))
}

// impactPressure returns the dynamic pressure sensed by the pitot tube
// at the given Mach number and static pressure.
func impactPressure(mach, staticHPa float64) float64 {
	return staticHPa * (gomath.Pow(1+0.2*mach*mach, 3.5) - 1)
}

// machFromImpact inverts impactPressure.
func machFromImpact(qc, staticHPa float64) float64 {
	return gomath.Sqrt(gomath.Max(5*(gomath.Pow(qc/staticHPa+1, 2.0/7)-1), 0))
}

// IASToTAS converts indicated (calibrated) airspeed to true airspeed
// using compressible flow, given the static pressure and temperature at
// the aircraft.
func IASToTAS(ias, staticHPa, temperatureC float32) float32 {
	if ias <= 0 {
		return 0
	}
	qc := impactPressure(float64(ias)/speedOfSoundSeaLevelKts, StandardPressureHPa)
	mach := machFromImpact(qc, float64(staticHPa))
	return float32(mach) * SpeedOfSound(temperatureC)
}

// TASToIAS is the inverse of IASToTAS.
func TASToIAS(tas, staticHPa, temperatureC float32) float32 {
	if tas <= 0 {
		return 0
	}
	mach := float64(tas / SpeedOfSound(temperatureC))
	qc := impactPressure(mach, float64(staticHPa))
	return float32(speedOfSoundSeaLevelKts * machFromImpact(qc, StandardPressureHPa))
}

func TASToMach(tas, temperatureC float32) float32 {
	return tas / SpeedOfSound(temperatureC)
}

func MachToTAS(mach, temperatureC float32) float32 {
	return mach * SpeedOfSound(temperatureC)
}

// InHgToHPa converts an altimeter setting in inches of mercury.
func InHgToHPa(inHg float32) float32 {
	return inHg * HPaPerInHg
}

// TurnRadius returns the radius of a coordinated turn in meters for the
// given speed (knots) and bank angle (degrees).
func TurnRadius(speed, bank float32) float32 {
	v := speed * math.KnotsToMetersPerSec
	t := math.Tan(math.Radians(math.Abs(bank)))
	if t < 1e-4 {
		return float32(gomath.Inf(1))
	}
	return v * v / (math.StandardGravityMPerS * t)
}
