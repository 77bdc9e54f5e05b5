package facility

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/slog"
)

const (
	DefaultRadiusKm = 10.0
	MaxRadiusKm     = 200.0
	DefaultLimit    = 20
	MaxLimit        = 100
)

type Servicer interface {
	Nearby(ctx context.Context, lat, lon, radiusKm float64, kind string, limit int) ([]Facility, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "facility_service"),
	}
}

// Nearby ищет учреждения в радиусе от точки, ближайшие первыми
func (s *Service) Nearby(ctx context.Context, lat, lon, radiusKm float64, kind string, limit int) ([]Facility, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: %f,%f", ErrInvalidLocation, lat, lon)
	}

	switch {
	case radiusKm == 0:
		radiusKm = DefaultRadiusKm
	case radiusKm < 0 || radiusKm > MaxRadiusKm:
		return nil, fmt.Errorf("%w: %.1f km", ErrInvalidRadius, radiusKm)
	}

	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	candidates, err := s.repo.Within(ctx, BoundsAround(lat, lon, radiusKm), kind)
	if err != nil {
		return nil, fmt.Errorf("load facilities: %w", err)
	}

	result := make([]Facility, 0, len(candidates))
	for _, f := range candidates {
		f.DistanceKm = Haversine(lat, lon, f.Latitude, f.Longitude)
		if f.DistanceKm <= radiusKm {
			result = append(result, f)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DistanceKm < result[j].DistanceKm
	})

	if len(result) > limit {
		result = result[:limit]
	}

	s.log.Debug("nearby facilities", "candidates", len(candidates), "found", len(result), "radius_km", radiusKm)
	return result, nil
}
