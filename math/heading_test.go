// math/heading_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"testing"
)

func TestNormalizeHeading(t *testing.T) {
	tests := []struct {
		h, expected float32
	}{
		{0, 0}, {359.5, 359.5}, {360, 0}, {365, 5}, {-10, 350}, {-360, 0}, {725, 5},
	}
	for _, tt := range tests {
		if n := NormalizeHeading(tt.h); Abs(n-tt.expected) > 1e-4 {
			t.Errorf("NormalizeHeading(%v) = %v, expected %v", tt.h, n, tt.expected)
		}
	}
}

func TestTurnAmount(t *testing.T) {
	tests := []struct {
		name     string
		from, to float32
		expected float32
	}{
		{"right", 90, 180, 90},
		{"left", 180, 90, -90},
		{"across north right", 350, 10, 20},
		{"across north left", 10, 350, -20},
		{"reversal", 0, 180, 180},
		{"reversal other way", 180, 0, 180},
		{"none", 270, 270, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := TurnAmount(tt.from, tt.to); Abs(d-tt.expected) > 1e-4 {
				t.Errorf("TurnAmount(%v, %v) = %v, expected %v", tt.from, tt.to, d, tt.expected)
			}
		})
	}
}

func TestTurnAmountProperties(t *testing.T) {
	for h1 := float32(0); h1 < 360; h1 += 7.5 {
		for h2 := float32(0); h2 < 360; h2 += 5.25 {
			d := TurnAmount(h1, h2)
			if d <= -180 || d > 180 {
				t.Fatalf("TurnAmount(%v, %v) = %v, outside (-180,180]", h1, h2, d)
			}

			// Turning by the amount returned must leave nothing left to turn.
			after := NormalizeHeading(h1 + d)
			if rem := TurnAmount(after, h2); Abs(rem) > 1e-3 {
				t.Errorf("TurnAmount(%v, %v) = %v leaves %v to turn", h1, h2, d, rem)
			}
			if rem := TurnAmount(after, after); rem != 0 {
				t.Errorf("TurnAmount(%v, %v) = %v, expected 0", after, after, rem)
			}
		}
	}
}

func TestTurnAmountDirected(t *testing.T) {
	tests := []struct {
		name        string
		from, to    float32
		left, right bool
		expected    float32
	}{
		{"closest", 90, 180, false, false, 90},
		{"forced left the long way", 90, 180, true, false, -270},
		{"forced right the long way", 180, 90, false, true, 270},
		{"forced right already right", 90, 180, false, true, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := TurnAmountDirected(tt.from, tt.to, tt.left, tt.right); Abs(d-tt.expected) > 1e-4 {
				t.Errorf("TurnAmountDirected(%v, %v) = %v, expected %v", tt.from, tt.to, d, tt.expected)
			}
		})
	}
}

func TestIsHeadingBetween(t *testing.T) {
	tests := []struct {
		name     string
		h        float32
		h1       float32
		h2       float32
		expected bool
	}{
		{"middle of range", 45, 0, 90, true},
		{"at start", 0, 0, 90, true},
		{"before range", 350, 0, 90, false},
		{"wraparound middle", 10, 350, 20, true},
		{"wraparound at 360", 360, 350, 20, true},
		{"wraparound outside", 100, 350, 20, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r := IsHeadingBetween(tt.h, tt.h1, tt.h2); r != tt.expected {
				t.Errorf("IsHeadingBetween(%v, %v, %v) = %v, expected %v", tt.h, tt.h1, tt.h2, r, tt.expected)
			}
		})
	}
}
