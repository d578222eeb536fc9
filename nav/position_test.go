// nav/position_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"testing"
	"time"

	av "github.com/sauna-sim/sauna-api-sub001/aviation"
	"github.com/sauna-sim/sauna-api-sub001/math"
	"github.com/sauna-sim/sauna-api-sub001/wx"
)

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func makePosition(loc math.Point2LL, alt, heading, ias float32, atmosphere wx.Oracle) *AircraftPosition {
	if atmosphere == nil {
		atmosphere = wx.StandardAtmosphere{}
	}
	return NewAircraftPosition(InitialPosition{
		Location:          loc,
		Time:              testStart,
		IndicatedAltitude: alt,
		MagneticHeading:   heading,
		IAS:               ias,
	}, atmosphere, nil, nil)
}

func TestAirspeeds(t *testing.T) {
	tests := []struct {
		name   string
		alt    float32
		ias    float32
		minTAS float32
		maxTAS float32
	}{
		{"sea level", 0, 250, 249, 251},
		{"10000ft", 10000, 250, 280, 300},
		{"FL350", 35000, 250, 410, 450},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := makePosition(math.Point2LL{0, 0}, tt.alt, 90, tt.ias, nil)
			if p.TAS() < tt.minTAS || p.TAS() > tt.maxTAS {
				t.Errorf("TAS = %v, expected between %v and %v", p.TAS(), tt.minTAS, tt.maxTAS)
			}
			// No wind: ground speed and track follow the air vector.
			if math.Abs(p.GS()-p.TAS()) > 0.01 {
				t.Errorf("GS = %v, expected TAS %v", p.GS(), p.TAS())
			}
			if math.HeadingDifference(p.TrueTrack(), 90) > 0.01 {
				t.Errorf("TrueTrack = %v, expected 90", p.TrueTrack())
			}
			if p.Mach() <= 0 || p.Mach() >= 1 {
				t.Errorf("Mach = %v, expected subsonic", p.Mach())
			}
		})
	}
}

func TestWindTriangle(t *testing.T) {
	north := wx.Uniform{Wind: wx.Wind{Direction: 360, Speed: 20}}
	p := makePosition(math.Point2LL{0, 0}, 0, 90, 250, north)

	// Heading east with wind from the north drifts the track south.
	if tr := p.TrueTrack(); tr <= 90 || tr >= 100 {
		t.Errorf("TrueTrack = %v, expected between 90 and 100", tr)
	}
	if p.GS() <= p.TAS() {
		t.Errorf("GS = %v, expected more than TAS %v with a crosswind", p.GS(), p.TAS())
	}

	p.SetTrueTrack(90)
	if h := p.TrueHeading(); h >= 90 || h <= 80 {
		t.Errorf("TrueHeading for track 090 = %v, expected a crab to the left", h)
	}
	// Flying the solved heading gives back the requested track.
	p.SetTrueHeading(p.TrueHeading())
	if math.HeadingDifference(p.TrueTrack(), 90) > 0.1 {
		t.Errorf("TrueTrack = %v, expected 90", p.TrueTrack())
	}
}

func TestWindCorrectionAngle(t *testing.T) {
	gale := wx.Uniform{Wind: wx.Wind{Direction: 360, Speed: 50}}

	stopped := makePosition(math.Point2LL{0, 0}, 0, 90, 0, gale)
	if wca := stopped.WindCorrectionAngle(90); wca != 0 {
		t.Errorf("WindCorrectionAngle with zero TAS = %v, expected 0", wca)
	}

	slow := makePosition(math.Point2LL{0, 0}, 0, 90, 10, gale)
	if wca := slow.WindCorrectionAngle(90); math.Abs(math.Abs(wca)-90) > 0.01 {
		t.Errorf("WindCorrectionAngle with crosswind > TAS = %v, expected +/-90", wca)
	}

	headwind := makePosition(math.Point2LL{0, 0}, 0, 360, 250, gale)
	if wca := headwind.WindCorrectionAngle(360); math.Abs(wca) > 0.01 {
		t.Errorf("WindCorrectionAngle into a headwind = %v, expected 0", wca)
	}
	if gs := headwind.GroundSpeedOnTrack(360); math.Abs(gs-(headwind.TAS()-50)) > 0.1 {
		t.Errorf("GroundSpeedOnTrack = %v, expected %v", gs, headwind.TAS()-50)
	}
}

func TestAltimeterSetting(t *testing.T) {
	p := makePosition(math.Point2LL{0, 0}, 5000, 90, 250, nil)
	absolute := p.AbsoluteAltitude()

	p.SetAltimeterSetting(1023.25)
	if p.IndicatedAltitude() <= 5000 {
		t.Errorf("IndicatedAltitude = %v, expected more than 5000 after raising the setting", p.IndicatedAltitude())
	}
	if math.Abs(p.AbsoluteAltitude()-absolute) > 1 {
		t.Errorf("AbsoluteAltitude = %v, expected unchanged %v", p.AbsoluteAltitude(), absolute)
	}

	// Invalid settings are ignored.
	p.SetAltimeterSetting(0)
	if p.AltimeterSetting() != 1023.25 {
		t.Errorf("AltimeterSetting = %v, expected 1023.25", p.AltimeterSetting())
	}
}

func TestMove(t *testing.T) {
	p := makePosition(math.Point2LL{0, 0}, 5000, 90, 250, nil)
	p.Move(90, math.MetersPerNM)
	if d := math.NMDistance2LL(math.Point2LL{0, 0}, p.Location()); math.Abs(d-1) > 0.001 {
		t.Errorf("distance moved = %vnm, expected 1", d)
	}

	// One second at 250 knots.
	sl := makePosition(math.Point2LL{0, 0}, 0, 90, 250, nil)
	if d := sl.DistanceInTick(time.Second); math.Abs(d-250*math.KnotsToMetersPerSec) > 0.5 {
		t.Errorf("DistanceInTick = %v, expected %v", d, 250*math.KnotsToMetersPerSec)
	}

	p.AdvanceTime(time.Second)
	if !p.Time().Equal(testStart.Add(time.Second)) {
		t.Errorf("Time = %v, expected %v", p.Time(), testStart.Add(time.Second))
	}
}

func TestMagneticConversions(t *testing.T) {
	p := NewAircraftPosition(InitialPosition{
		Location:          math.Point2LL{0, 0},
		Time:              testStart,
		IndicatedAltitude: 5000,
		MagneticHeading:   90,
		IAS:               250,
	}, wx.StandardAtmosphere{}, av.FixedDeclination(-10), nil)

	if math.HeadingDifference(p.TrueHeading(), 80) > 0.01 {
		t.Errorf("TrueHeading = %v, expected 80", p.TrueHeading())
	}
	if math.HeadingDifference(p.MagneticHeading(), 90) > 0.01 {
		t.Errorf("MagneticHeading = %v, expected 90", p.MagneticHeading())
	}
	if b := p.MagneticToTrue(p.TrueToMagnetic(123)); math.HeadingDifference(b, 123) > 0.01 {
		t.Errorf("MagneticToTrue(TrueToMagnetic(123)) = %v", b)
	}
}
