// aviation/atmosphere_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"testing"

	"github.com/sauna-sim/sauna-api-sub001/math"
)

func TestAltitudeRoundTrip(t *testing.T) {
	for _, alt := range []float32{-500, 0, 1500, 5000, 10000, 18000, 35000, 45000} {
		for _, q := range []float32{960, 995.5, 1013.25, 1030, 1050} {
			for _, psfc := range []float32{970, 1000, 1013.25, 1040} {
				abs := AbsoluteFromIndicated(alt, q, psfc)
				if back := IndicatedFromAbsolute(abs, q, psfc); math.Abs(back-alt) > 1 {
					t.Errorf("IndicatedFromAbsolute(AbsoluteFromIndicated(%v, %v, %v)) = %v", alt, q, psfc, back)
				}
			}
		}
	}
}

func TestAltimetry(t *testing.T) {
	// With the altimeter set to the actual sea-level pressure the altimeter
	// reads true altitude.
	if a := AbsoluteFromIndicated(8000, 1002, 1002); math.Abs(a-8000) > 0.5 {
		t.Errorf("AbsoluteFromIndicated with matching setting = %v, expected 8000", a)
	}

	// High to low, look out below: with a stale high setting the aircraft is
	// lower than indicated.
	if a := AbsoluteFromIndicated(5000, 1020, 1000); a >= 5000 {
		t.Errorf("AbsoluteFromIndicated(5000, 1020, 1000) = %v, expected below 5000", a)
	}

	// Roughly 27-30 ft per hPa near sea level.
	pa := PressureAltitude(1000, 1003.25)
	if pa < 1260 || pa > 1300 {
		t.Errorf("PressureAltitude(1000, 1003.25) = %v, expected about 1280", pa)
	}

	if p := StandardPressure(0); math.Abs(p-StandardPressureHPa) > 0.01 {
		t.Errorf("StandardPressure(0) = %v", p)
	}
	if p := StandardPressure(18000); math.Abs(p-506) > 2 {
		t.Errorf("StandardPressure(18000) = %v, expected about 506", p)
	}
}

func TestDensityAltitude(t *testing.T) {
	if da := DensityAltitude(StandardPressureHPa, 15); math.Abs(da) > 1 {
		t.Errorf("DensityAltitude(ISA sea level) = %v, expected 0", da)
	}
	// A hot day raises the density altitude.
	if da := DensityAltitude(StandardPressureHPa, 35); da < 2000 || da > 2800 {
		t.Errorf("DensityAltitude(sea level, 35C) = %v, expected about 2400", da)
	}
}

func TestAirspeeds(t *testing.T) {
	if tas := IASToTAS(250, StandardPressureHPa, 15); math.Abs(tas-250) > 0.1 {
		t.Errorf("IASToTAS at ISA sea level = %v, expected 250", tas)
	}

	p, temp := StandardPressure(10000), StandardTemperature(10000)
	tas := IASToTAS(250, p, temp)
	if tas < 285 || tas > 300 {
		t.Errorf("IASToTAS(250) at 10,000' = %v, expected about 290", tas)
	}
	if ias := TASToIAS(tas, p, temp); math.Abs(ias-250) > 0.05 {
		t.Errorf("TASToIAS(IASToTAS(250)) = %v", ias)
	}

	if ias := IASToTAS(0, p, temp); ias != 0 {
		t.Errorf("IASToTAS(0) = %v", ias)
	}

	m := TASToMach(MachToTAS(0.78, -56.5), -56.5)
	if math.Abs(m-0.78) > 1e-5 {
		t.Errorf("Mach round trip = %v", m)
	}
	if a := SpeedOfSound(15); math.Abs(a-661.47) > 0.1 {
		t.Errorf("SpeedOfSound(15) = %v", a)
	}
}

func TestTurnRadius(t *testing.T) {
	// 250 knots at 25 degrees of bank
	r := TurnRadius(250, 25)
	if r < 3500 || r > 3700 {
		t.Errorf("TurnRadius(250, 25) = %v, expected about 3610m", r)
	}
	if TurnRadius(250, 12.5) <= r {
		t.Errorf("shallower bank should give a larger radius")
	}
}
