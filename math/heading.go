// math/heading.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// headings and directions

// NormalizeHeading reduces h to [0,360).
func NormalizeHeading(h float32) float32 {
	h = Mod(h, 360)
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		// -tiny + 360 rounds to 360 in float32
		h = 0
	}
	return h
}

func OppositeHeading(h float32) float32 {
	return NormalizeHeading(h + 180)
}

// HeadingDifference returns the minimum difference between two
// headings. (i.e., the result is always in the range [0,180].)
func HeadingDifference(a float32, b float32) float32 {
	return Abs(TurnAmount(a, b))
}

// TurnAmount returns the signed number of degrees to turn from heading
// |from| to reach heading |to| the short way around; positive values are
// right turns. The result is in (-180,180]; a reversal is reported as a
// right turn of 180.
func TurnAmount(from, to float32) float32 {
	d := Mod(to-from, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// TurnAmountDirected is like TurnAmount but forces the direction of the
// turn: with left set the result is in (-360,0] and with right in [0,360).
func TurnAmountDirected(from, to float32, left, right bool) float32 {
	d := TurnAmount(from, to)
	if left && d > 0 {
		d -= 360
	} else if right && d < 0 {
		d += 360
	}
	return d
}

// IsHeadingBetween returns true if h is within the clockwise arc that
// starts at h1 and ends at h2.
func IsHeadingBetween(h, h1, h2 float32) bool {
	h, h1, h2 = NormalizeHeading(h), NormalizeHeading(h1), NormalizeHeading(h2)
	if h1 <= h2 {
		return h >= h1 && h <= h2
	}
	return h >= h1 || h <= h2
}

// ShortCompass converts a heading expressed in degrees into an abbreviated
// string corresponding to the closest compass direction.
func ShortCompass(heading float32) string {
	h := NormalizeHeading(heading + 22.5) // now [0,45] is north, etc...
	idx := int(h / 45)
	return [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}[idx]
}
