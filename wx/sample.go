// wx/sample.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"fmt"
	"log/slog"
	"time"

	av "github.com/sauna-sim/sauna-api-sub001/aviation"
	"github.com/sauna-sim/sauna-api-sub001/math"
	"github.com/sauna-sim/sauna-api-sub001/util"
)

type Wind struct {
	Direction float32 `msgpack:"dir"` // true, direction the wind is blowing from
	Speed     float32 `msgpack:"spd"` // knots
}

// Vector returns the velocity of the air mass in knots as [east, north].
func (w Wind) Vector() [2]float32 {
	s, c := math.Sin(math.Radians(w.Direction)), math.Cos(math.Radians(w.Direction))
	return [2]float32{-w.Speed * s, -w.Speed * c}
}

func (w Wind) String() string {
	return fmt.Sprintf("%03.0f@%.0f", w.Direction, w.Speed)
}

// Sample is the state of the atmosphere at a point.
type Sample struct {
	Wind            Wind
	Temperature     float32 // Celsius
	Pressure        float32 // hPa, static pressure at the sample altitude
	SurfacePressure float32 // hPa, reduced to sea level
}

// StandardSample returns the ISA atmosphere with no wind at the given
// altitude.
func StandardSample(alt float32) Sample {
	return Sample{
		Temperature:     av.StandardTemperature(alt),
		Pressure:        av.StandardPressure(alt),
		SurfacePressure: av.StandardPressureHPa,
	}
}

func (s Sample) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("wind", s.Wind.String()),
		slog.Float64("temperature", float64(s.Temperature)),
		slog.Float64("pressure", float64(s.Pressure)),
		slog.Float64("surface_pressure", float64(s.SurfacePressure)))
}

// Oracle provides atmospheric conditions. Lookup returns false if it has
// no data covering the point, in which case the returned sample is the
// standard atmosphere.
type Oracle interface {
	Lookup(p math.Point2LL, alt float32, t time.Time) (Sample, bool)
}

// StandardAtmosphere is an Oracle that reports the ISA everywhere.
type StandardAtmosphere struct{}

func (StandardAtmosphere) Lookup(p math.Point2LL, alt float32, t time.Time) (Sample, bool) {
	return StandardSample(alt), true
}

// Uniform is an Oracle that reports the same wind, sea-level pressure and
// ISA temperature deviation everywhere.
type Uniform struct {
	Wind            Wind
	SurfacePressure float32
	ISADeviation    float32
}

func (u Uniform) Lookup(p math.Point2LL, alt float32, t time.Time) (Sample, bool) {
	psfc := util.Select(u.SurfacePressure > 0, u.SurfacePressure, av.StandardPressureHPa)
	return Sample{
		Wind:            u.Wind,
		Temperature:     av.StandardTemperature(alt) + u.ISADeviation,
		Pressure:        av.StaticPressure(alt, psfc),
		SurfacePressure: psfc,
	}, true
}
