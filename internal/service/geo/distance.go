package geo

import (
	"errors"
	"math"
)

// EarthRadiusKM is the mean Earth radius used for great-circle distance
const EarthRadiusKM = 6371.0

var ErrInvalidCoordinates = errors.New("invalid coordinates")

// HaversineKM calculates the great-circle distance between two points in km
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKM * c
}

// ValidateCoordinates checks latitude is in [-90, 90] and longitude in [-180, 180]
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return ErrInvalidCoordinates
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
