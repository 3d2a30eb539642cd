package pricing

import (
	"errors"
	"math"

	"github.com/gocomet/rideshare/internal/domain/driver"
)

// ErrNegativeDistance is returned for distances below zero
var ErrNegativeDistance = errors.New("distance must not be negative")

// Service handles fare calculation
type Service struct {
	config Config
}

// Config holds the per-class fare table
type Config struct {
	BaseFare  map[driver.VehicleType]float64
	PerKMRate map[driver.VehicleType]float64
	// FallbackType supplies the rates for classes missing from the table
	FallbackType driver.VehicleType
}

// DefaultConfig is the published fare table
func DefaultConfig() Config {
	return Config{
		BaseFare: map[driver.VehicleType]float64{
			driver.VehicleCar:  50,
			driver.VehicleBike: 30,
		},
		PerKMRate: map[driver.VehicleType]float64{
			driver.VehicleCar:  30,
			driver.VehicleBike: 15,
		},
		FallbackType: driver.VehicleCar,
	}
}

// NewService creates a new pricing service
func NewService(config Config) *Service {
	if config.FallbackType == "" {
		config.FallbackType = driver.VehicleCar
	}
	return &Service{config: config}
}

// EstimateFare returns round(base + rate*distance) in whole currency units.
// Unknown vehicle classes are charged at the fallback class rates.
func (s *Service) EstimateFare(distanceKM float64, vehicleType driver.VehicleType) (int64, error) {
	if distanceKM < 0 || math.IsNaN(distanceKM) {
		return 0, ErrNegativeDistance
	}

	base, perKM := s.rates(vehicleType)
	return int64(math.Round(base + perKM*distanceKM)), nil
}

func (s *Service) rates(vehicleType driver.VehicleType) (float64, float64) {
	base, okBase := s.config.BaseFare[vehicleType]
	perKM, okRate := s.config.PerKMRate[vehicleType]
	if okBase && okRate {
		return base, perKM
	}
	return s.config.BaseFare[s.config.FallbackType], s.config.PerKMRate[s.config.FallbackType]
}
