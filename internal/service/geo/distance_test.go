package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKM_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		lat1      float64
		lng1      float64
		lat2      float64
		lng2      float64
		wantKm    float64
		tolerance float64
	}{
		{
			name: "same point",
			lat1: 23.8103, lng1: 90.4125,
			lat2: 23.8103, lng2: 90.4125,
			wantKm:    0,
			tolerance: 1e-9,
		},
		{
			name: "Dhaka center to Savar (~14km)",
			lat1: 23.8103, lng1: 90.4125,
			lat2: 23.7806, lng2: 90.2792,
			wantKm:    13.9,
			tolerance: 0.5,
		},
		{
			name: "New York to Los Angeles (~3944km)",
			lat1: 40.7128, lng1: -74.0060,
			lat2: 34.0522, lng2: -118.2437,
			wantKm:    3944,
			tolerance: 50,
		},
		{
			name: "antipodal points",
			lat1: 0, lng1: 0,
			lat2: 0, lng2: 180,
			wantKm:    math.Pi * EarthRadiusKM,
			tolerance: 0.001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineKM(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.InDelta(t, tt.wantKm, got, tt.tolerance)
		})
	}
}

func TestHaversineKM_Symmetric(t *testing.T) {
	points := [][2]float64{
		{23.8103, 90.4125}, {-33.8688, 151.2093}, {51.5074, -0.1278}, {89.9, -179.9}, {-90, 180},
	}
	for _, a := range points {
		for _, b := range points {
			ab := HaversineKM(a[0], a[1], b[0], b[1])
			ba := HaversineKM(b[0], b[1], a[0], a[1])
			assert.InDelta(t, ab, ba, 1e-9)
			assert.GreaterOrEqual(t, ab, 0.0)
		}
		assert.Equal(t, 0.0, HaversineKM(a[0], a[1], a[0], a[1]))
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name  string
		lat   float64
		lng   float64
		valid bool
	}{
		{"origin", 0, 0, true},
		{"bounds", 90, -180, true},
		{"lat too high", 90.0001, 0, false},
		{"lat too low", -91, 0, false},
		{"lng too high", 0, 180.5, false},
		{"nan", math.NaN(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidCoordinates)
			}
		})
	}
}
