package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	cases := []struct {
		value, min, max, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
		{0.5, 1, 0, 0.5}, // swapped bounds
		{5, 1, 0, 1},
	}

	for _, tc := range cases {
		if got := Clamp(tc.value, tc.min, tc.max); got != tc.want {
			t.Errorf("Clamp(%v, %v, %v): got %v want %v",
				tc.value, tc.min, tc.max, got, tc.want)
		}
	}
}

func TestClampInt(t *testing.T) {
	cases := []struct {
		value, min, max, want int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{5, 10, 0, 5}, // swapped bounds
		{-1, 10, 0, 0},
	}

	for _, tc := range cases {
		if got := ClampInt(tc.value, tc.min, tc.max); got != tc.want {
			t.Errorf("ClampInt(%d, %d, %d): got %d want %d",
				tc.value, tc.min, tc.max, got, tc.want)
		}
	}
}

func TestNearlyEqual(t *testing.T) {
	if !NearlyEqual(1, 1+1e-13, 1e-12) {
		t.Error("expected nearly equal")
	}
	if NearlyEqual(1, 1.1, 1e-12) {
		t.Error("expected not equal")
	}
	if !NearlyEqual(0, 0, 0) {
		t.Error("zero eps falls back to default")
	}
}

func TestFlushDenormals(t *testing.T) {
	if got := FlushDenormals(1e-31); got != 0 {
		t.Errorf("got %v want 0", got)
	}
	if got := FlushDenormals(-1e-31); got != 0 {
		t.Errorf("got %v want 0", got)
	}
	if got := FlushDenormals(1e-3); got != 1e-3 {
		t.Errorf("got %v want 1e-3", got)
	}
}

func TestDBConversions(t *testing.T) {
	if got := DBToLinear(0); got != 1 {
		t.Errorf("DBToLinear(0): got %v want 1", got)
	}
	if got := DBToLinear(20); math.Abs(got-10) > 1e-12 {
		t.Errorf("DBToLinear(20): got %v want 10", got)
	}

	if got := LinearToDB(1); got != 0 {
		t.Errorf("LinearToDB(1): got %v want 0", got)
	}
	if got := LinearToDB(0); !math.IsInf(got, -1) {
		t.Errorf("LinearToDB(0): got %v want -Inf", got)
	}
	if got := LinearToDB(-1); !math.IsNaN(got) {
		t.Errorf("LinearToDB(-1): got %v want NaN", got)
	}
}
