// rand/rand_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	r := New()
	r.Seed(1234)
	for i := 0; i < 1000; i++ {
		d := r.Duration(500*time.Millisecond, 2*time.Second)
		if d < 500*time.Millisecond || d > 2*time.Second {
			t.Fatalf("Duration = %v, outside [500ms, 2s]", d)
		}
	}
	if d := r.Duration(time.Second, time.Second); d != time.Second {
		t.Errorf("Duration(1s, 1s) = %v, expected 1s", d)
	}
}

func TestSeedDeterminism(t *testing.T) {
	a, b := New(), New()
	a.Seed(42)
	b.Seed(42)
	for i := 0; i < 100; i++ {
		if x, y := a.Intn(1000), b.Intn(1000); x != y {
			t.Fatalf("same seed gave %d and %d", x, y)
		}
	}
}
