// nav/position.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"log/slog"
	"time"

	av "github.com/sauna-sim/sauna-api-sub001/aviation"
	"github.com/sauna-sim/sauna-api-sub001/log"
	"github.com/sauna-sim/sauna-api-sub001/math"
	"github.com/sauna-sim/sauna-api-sub001/wx"
)

// AircraftPosition holds the kinematic and air-data state of an aircraft.
// Heading, track, airspeeds, ground speed and wind form a closed system:
// the setters keep all of them consistent, so the fields are only
// accessible through methods.
type AircraftPosition struct {
	location math.Point2LL
	simTime  time.Time

	indicatedAltitude float32
	absoluteAltitude  float32
	pressureAltitude  float32
	densityAltitude   float32
	altimeterSetting  float32 // hPa

	sample            wx.Sample
	magneticVariation float32

	trueHeading float32
	trueTrack   float32
	ias         float32
	tas         float32
	gs          float32
	mach        float32

	bank          float32
	pitch         float32
	verticalSpeed float32 // fpm

	atmosphere wx.Oracle
	magnetic   av.MagneticModel
	// Set while the atmosphere oracle has no data for our location.
	isaFallback bool

	lg *log.Logger
}

// PositionState is a copy of the values of an AircraftPosition.
type PositionState struct {
	Location          math.Point2LL `msgpack:"loc"`
	Time              time.Time     `msgpack:"t"`
	IndicatedAltitude float32       `msgpack:"alt"`
	AbsoluteAltitude  float32       `msgpack:"abs_alt"`
	PressureAltitude  float32       `msgpack:"press_alt"`
	DensityAltitude   float32       `msgpack:"dens_alt"`
	AltimeterSetting  float32       `msgpack:"qnh"`
	TrueHeading       float32       `msgpack:"hdg_true"`
	MagneticHeading   float32       `msgpack:"hdg_mag"`
	TrueTrack         float32       `msgpack:"trk"`
	IAS               float32       `msgpack:"ias"`
	TAS               float32       `msgpack:"tas"`
	GS                float32       `msgpack:"gs"`
	Mach              float32       `msgpack:"mach"`
	Bank              float32       `msgpack:"bank"`
	Pitch             float32       `msgpack:"pitch"`
	VerticalSpeed     float32       `msgpack:"vs"`
	Wind              wx.Wind       `msgpack:"wind"`
	Temperature       float32       `msgpack:"temp"`
	SurfacePressure   float32       `msgpack:"psfc"`
}

// InitialPosition describes an aircraft at spawn.
type InitialPosition struct {
	Location          math.Point2LL
	Time              time.Time
	IndicatedAltitude float32
	AltimeterSetting  float32 // hPa; standard pressure if zero
	MagneticHeading   float32
	IAS               float32
}

// NewAircraftPosition returns a position initialized from the given
// telemetry. Either oracle may be nil, in which case the standard
// atmosphere and zero magnetic variation are used.
func NewAircraftPosition(init InitialPosition, atmosphere wx.Oracle, magnetic av.MagneticModel, lg *log.Logger) *AircraftPosition {
	p := &AircraftPosition{
		location:          init.Location,
		simTime:           init.Time,
		indicatedAltitude: init.IndicatedAltitude,
		altimeterSetting:  init.AltimeterSetting,
		ias:               init.IAS,
		atmosphere:        atmosphere,
		magnetic:          magnetic,
		lg:                lg,
	}
	if p.altimeterSetting <= 0 {
		p.altimeterSetting = av.StandardPressureHPa
	}
	p.resample()
	p.trueHeading = av.MagneticToTrue(magnetic, init.Location, init.Time, init.MagneticHeading)
	p.updateAirspeeds()
	return p
}

func (p *AircraftPosition) Location() math.Point2LL    { return p.location }
func (p *AircraftPosition) Time() time.Time            { return p.simTime }
func (p *AircraftPosition) IndicatedAltitude() float32 { return p.indicatedAltitude }
func (p *AircraftPosition) AbsoluteAltitude() float32  { return p.absoluteAltitude }
func (p *AircraftPosition) PressureAltitude() float32  { return p.pressureAltitude }
func (p *AircraftPosition) DensityAltitude() float32   { return p.densityAltitude }
func (p *AircraftPosition) AltimeterSetting() float32  { return p.altimeterSetting }
func (p *AircraftPosition) TrueHeading() float32       { return p.trueHeading }
func (p *AircraftPosition) TrueTrack() float32         { return p.trueTrack }
func (p *AircraftPosition) IAS() float32               { return p.ias }
func (p *AircraftPosition) TAS() float32               { return p.tas }
func (p *AircraftPosition) GS() float32                { return p.gs }
func (p *AircraftPosition) Mach() float32              { return p.mach }
func (p *AircraftPosition) Bank() float32              { return p.bank }
func (p *AircraftPosition) Pitch() float32             { return p.pitch }
func (p *AircraftPosition) VerticalSpeed() float32     { return p.verticalSpeed }
func (p *AircraftPosition) Wind() wx.Wind              { return p.sample.Wind }
func (p *AircraftPosition) Temperature() float32       { return p.sample.Temperature }
func (p *AircraftPosition) SurfacePressure() float32   { return p.sample.SurfacePressure }
func (p *AircraftPosition) MagneticVariation() float32 { return p.magneticVariation }

// StaticPressure returns the ambient pressure at the aircraft in hPa.
func (p *AircraftPosition) StaticPressure() float32 {
	return av.StaticPressure(p.indicatedAltitude, p.altimeterSetting)
}

func (p *AircraftPosition) MagneticHeading() float32 {
	return math.NormalizeHeading(p.trueHeading - p.magneticVariation)
}

func (p *AircraftPosition) MagneticTrack() float32 {
	return math.NormalizeHeading(p.trueTrack - p.magneticVariation)
}

// TrueToMagnetic converts a true bearing at the aircraft's location.
func (p *AircraftPosition) TrueToMagnetic(bearing float32) float32 {
	return math.NormalizeHeading(bearing - p.magneticVariation)
}

func (p *AircraftPosition) MagneticToTrue(bearing float32) float32 {
	return math.NormalizeHeading(bearing + p.magneticVariation)
}

// MagneticModel returns the model used for magnetic variation; it may be
// nil.
func (p *AircraftPosition) MagneticModel() av.MagneticModel { return p.magnetic }

// resample queries the atmosphere and magnetic models at the current
// location and altitude and updates the altitudes that depend on them.
func (p *AircraftPosition) resample() {
	var s wx.Sample
	ok := false
	if p.atmosphere != nil {
		s, ok = p.atmosphere.Lookup(p.location, p.indicatedAltitude, p.simTime)
	}
	if !ok {
		s = wx.StandardSample(p.indicatedAltitude)
		if !p.isaFallback {
			p.lg.Warn("no atmosphere data; using standard atmosphere",
				slog.String("location", p.location.DDString()),
				slog.Float64("altitude", float64(p.indicatedAltitude)))
		}
	} else if p.isaFallback {
		p.lg.Info("atmosphere data available", slog.String("location", p.location.DDString()))
	}
	p.isaFallback = !ok
	p.sample = s

	p.magneticVariation = 0
	if p.magnetic != nil {
		p.magneticVariation = p.magnetic.Declination(p.location, p.simTime)
	}

	p.absoluteAltitude = av.AbsoluteFromIndicated(p.indicatedAltitude, p.altimeterSetting, s.SurfacePressure)
	p.pressureAltitude = av.PressureAltitude(p.indicatedAltitude, p.altimeterSetting)
	p.densityAltitude = av.DensityAltitude(p.StaticPressure(), s.Temperature)
}

// updateAirspeeds recomputes TAS and Mach from IAS and then the track and
// ground speed from the heading.
func (p *AircraftPosition) updateAirspeeds() {
	p.tas = av.IASToTAS(p.ias, p.StaticPressure(), p.sample.Temperature)
	p.mach = av.TASToMach(p.tas, p.sample.Temperature)
	p.updateGroundTrack()
}

// updateGroundTrack computes the track and ground speed as the vector sum
// of the air velocity and the wind.
func (p *AircraftPosition) updateGroundTrack() {
	hs, hc := math.Sin(math.Radians(p.trueHeading)), math.Cos(math.Radians(p.trueHeading))
	w := p.sample.Wind.Vector()
	east, north := p.tas*hs+w[0], p.tas*hc+w[1]

	p.gs = math.Sqrt(east*east + north*north)
	if p.gs < 1e-3 {
		p.gs = 0
		p.trueTrack = p.trueHeading
	} else {
		p.trueTrack = math.NormalizeHeading(math.Degrees(math.Atan2(east, north)))
	}
}

// WindCorrectionAngle returns the angle between the heading that must be
// flown to achieve the given true track and the track itself, given the
// current wind and TAS. Positive angles are to the right. The crosswind
// ratio is clamped to [-1,1] so that a crosswind stronger than the TAS
// gives a 90 degree correction, and zero TAS gives zero correction.
func (p *AircraftPosition) WindCorrectionAngle(track float32) float32 {
	if p.tas <= 0 {
		return 0
	}
	rel := math.Radians(p.sample.Wind.Direction - track)
	crosswind := p.sample.Wind.Speed * math.Sin(rel)
	return math.Degrees(math.SafeASin(math.Clamp(crosswind/p.tas, -1, 1)))
}

// GroundSpeedOnTrack returns the ground speed the aircraft would have
// flying the given true track at its current TAS.
func (p *AircraftPosition) GroundSpeedOnTrack(track float32) float32 {
	return groundSpeedOnTrack(p.tas, track, p.sample.Wind, p.WindCorrectionAngle(track))
}

func groundSpeedOnTrack(tas, track float32, wind wx.Wind, wca float32) float32 {
	rel := math.Radians(wind.Direction - track)
	headwind := wind.Speed * math.Cos(rel)
	return math.Max(0, tas*math.Cos(math.Radians(wca))-headwind)
}

// SetTrueHeading sets the heading and updates the track and ground speed.
func (p *AircraftPosition) SetTrueHeading(hdg float32) {
	p.trueHeading = math.NormalizeHeading(hdg)
	p.updateGroundTrack()
}

func (p *AircraftPosition) SetMagneticHeading(hdg float32) {
	p.SetTrueHeading(p.MagneticToTrue(hdg))
}

// SetTrueTrack sets the track and solves for the heading and ground
// speed using the wind correction angle.
func (p *AircraftPosition) SetTrueTrack(track float32) {
	track = math.NormalizeHeading(track)
	wca := p.WindCorrectionAngle(track)
	p.trueTrack = track
	p.trueHeading = math.NormalizeHeading(track + wca)
	p.gs = groundSpeedOnTrack(p.tas, track, p.sample.Wind, wca)
}

// SetIAS sets the indicated airspeed; TAS, Mach and ground speed follow.
func (p *AircraftPosition) SetIAS(ias float32) {
	p.ias = math.Max(0, ias)
	p.updateAirspeeds()
}

// SetTAS sets the true airspeed; IAS, Mach and ground speed follow.
func (p *AircraftPosition) SetTAS(tas float32) {
	p.tas = math.Max(0, tas)
	p.ias = av.TASToIAS(p.tas, p.StaticPressure(), p.sample.Temperature)
	p.mach = av.TASToMach(p.tas, p.sample.Temperature)
	p.updateGroundTrack()
}

func (p *AircraftPosition) SetMach(mach float32) {
	p.SetTAS(av.MachToTAS(mach, p.sample.Temperature))
}

// SetGS sets the ground speed along the current track; the TAS and
// heading that give it in the current wind are solved for.
func (p *AircraftPosition) SetGS(gs float32) {
	gs = math.Max(0, gs)
	ts, tc := math.Sin(math.Radians(p.trueTrack)), math.Cos(math.Radians(p.trueTrack))
	w := p.sample.Wind.Vector()
	east, north := gs*ts-w[0], gs*tc-w[1]

	p.tas = math.Sqrt(east*east + north*north)
	if p.tas > 1e-3 {
		p.trueHeading = math.NormalizeHeading(math.Degrees(math.Atan2(east, north)))
	}
	p.ias = av.TASToIAS(p.tas, p.StaticPressure(), p.sample.Temperature)
	p.mach = av.TASToMach(p.tas, p.sample.Temperature)
	p.updateGroundTrack()
}

// SetLocation moves the aircraft; the atmosphere and magnetic variation
// are resampled and the dependent values recomputed, holding IAS and
// heading constant.
func (p *AircraftPosition) SetLocation(loc math.Point2LL) {
	p.location = loc
	p.resample()
	p.updateAirspeeds()
}

// SetIndicatedAltitude changes the altitude, holding IAS and heading
// constant.
func (p *AircraftPosition) SetIndicatedAltitude(alt float32) {
	p.indicatedAltitude = alt
	p.resample()
	p.updateAirspeeds()
}

// SetAltimeterSetting changes the pressure setting. The aircraft stays at
// the same true altitude, so its indicated altitude changes.
func (p *AircraftPosition) SetAltimeterSetting(hPa float32) {
	if hPa <= 0 {
		return
	}
	p.indicatedAltitude = av.IndicatedFromAbsolute(p.absoluteAltitude, hPa, p.sample.SurfacePressure)
	p.altimeterSetting = hPa
	p.resample()
	p.updateAirspeeds()
}

func (p *AircraftPosition) SetBank(bank float32)        { p.bank = bank }
func (p *AircraftPosition) SetPitch(pitch float32)      { p.pitch = pitch }
func (p *AircraftPosition) SetVerticalSpeed(vs float32) { p.verticalSpeed = vs }

// AdvanceTime moves the position's clock forward by dt.
func (p *AircraftPosition) AdvanceTime(dt time.Duration) {
	p.simTime = p.simTime.Add(dt)
}

// Move moves the aircraft the given number of meters along a true
// bearing.
func (p *AircraftPosition) Move(bearing, meters float32) {
	if meters <= 0 {
		return
	}
	p.SetLocation(math.Destination(p.location, bearing, meters))
}

// DistanceInTick returns the distance in meters travelled over the
// ground in dt at the current ground speed.
func (p *AircraftPosition) DistanceInTick(dt time.Duration) float32 {
	return p.gs * math.KnotsToMetersPerSec * float32(dt.Seconds())
}

// State returns a copy of the position's values.
func (p *AircraftPosition) State() PositionState {
	return PositionState{
		Location:          p.location,
		Time:              p.simTime,
		IndicatedAltitude: p.indicatedAltitude,
		AbsoluteAltitude:  p.absoluteAltitude,
		PressureAltitude:  p.pressureAltitude,
		DensityAltitude:   p.densityAltitude,
		AltimeterSetting:  p.altimeterSetting,
		TrueHeading:       p.trueHeading,
		MagneticHeading:   p.MagneticHeading(),
		TrueTrack:         p.trueTrack,
		IAS:               p.ias,
		TAS:               p.tas,
		GS:                p.gs,
		Mach:              p.mach,
		Bank:              p.bank,
		Pitch:             p.pitch,
		VerticalSpeed:     p.verticalSpeed,
		Wind:              p.sample.Wind,
		Temperature:       p.sample.Temperature,
		SurfacePressure:   p.sample.SurfacePressure,
	}
}

func (p *AircraftPosition) Summary() string {
	return fmt.Sprintf("%s hdg %03.0f trk %03.0f alt %.0f ias %.0f tas %.0f gs %.0f vs %.0f",
		p.location.DDString(), p.MagneticHeading(), p.MagneticTrack(), p.indicatedAltitude,
		p.ias, p.tas, p.gs, p.verticalSpeed)
}

func (p *AircraftPosition) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("location", p.location.DDString()),
		slog.Float64("altitude", float64(p.indicatedAltitude)),
		slog.Float64("heading", float64(p.trueHeading)),
		slog.Float64("track", float64(p.trueTrack)),
		slog.Float64("ias", float64(p.ias)),
		slog.Float64("tas", float64(p.tas)),
		slog.Float64("gs", float64(p.gs)),
		slog.Float64("vs", float64(p.verticalSpeed)),
		slog.String("wind", p.sample.Wind.String()))
}
