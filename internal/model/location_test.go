package model

import (
	"math"
	"testing"
)

func TestNewLocation(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z float64
		want    Location
	}{
		{name: "zero values", want: Location{}},
		{name: "positive coordinates", x: 1.5, y: 2, z: 3, want: Location{X: 1.5, Y: 2, Z: 3}},
		{name: "negative coordinates", x: -1, y: -2, z: -3.25, want: Location{X: -1, Y: -2, Z: -3.25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewLocation(tt.x, tt.y, tt.z)
			if got != tt.want {
				t.Errorf("NewLocation() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLocation_WithCoordinates(t *testing.T) {
	original := NewLocation(1, 2, 3)

	got := original.WithCoordinates(4, 5, 6)
	if got != (Location{X: 4, Y: 5, Z: 6}) {
		t.Errorf("WithCoordinates() = %+v", got)
	}
	// original must not change
	if original != (Location{X: 1, Y: 2, Z: 3}) {
		t.Errorf("WithCoordinates() mutated original: %+v", original)
	}
}

func TestLocation_Distance(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Location
		wantSq float64
		want   float64
	}{
		{name: "same location", wantSq: 0, want: 0},
		{name: "x axis", b: NewLocation(10, 0, 0), wantSq: 100, want: 10},
		{name: "3-4-5 triangle", b: NewLocation(3, 4, 0), wantSq: 25, want: 5},
		{name: "3D distance", b: NewLocation(1, 2, 2), wantSq: 9, want: 3},
		{name: "negative", a: NewLocation(-1, -1, -1), b: NewLocation(1, 1, 1), wantSq: 12, want: math.Sqrt(12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.DistanceSquared(tt.b); got != tt.wantSq {
				t.Errorf("DistanceSquared() = %v, want %v", got, tt.wantSq)
			}
			if got := tt.a.Distance(tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Distance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLocation_Lerp(t *testing.T) {
	a := NewLocation(0, 0, 0)
	b := NewLocation(10, 20, -10)

	if got := a.Lerp(b, 0.5); got != NewLocation(5, 10, -5) {
		t.Errorf("Lerp(0.5) = %+v", got)
	}
	if got := a.Lerp(b, 2); got != b {
		t.Errorf("Lerp(2) should clamp to target, got %+v", got)
	}
	if got := a.Lerp(b, -1); got != a {
		t.Errorf("Lerp(-1) should clamp to origin, got %+v", got)
	}
}
