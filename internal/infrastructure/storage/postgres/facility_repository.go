package postgres

import (
	"context"
	"fmt"

	"hemapp/internal/domain/facility"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"
)

type FacilityRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewFacilityRepository(pool *pgxpool.Pool, log *slog.Logger) *FacilityRepository {
	return &FacilityRepository{
		pool: pool,
		log:  log.With("component", "facility_repository"),
	}
}

func (r *FacilityRepository) Within(ctx context.Context, b facility.Bounds, kind string) ([]facility.Facility, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, kind, address, phone, latitude, longitude
         FROM facilities
         WHERE latitude BETWEEN $1 AND $2
           AND longitude BETWEEN $3 AND $4
           AND ($5::text = '' OR kind = $5::text)`,
		b.MinLat, b.MaxLat, b.MinLon, b.MaxLon, kind)
	if err != nil {
		return nil, fmt.Errorf("query facilities: %w", err)
	}
	defer rows.Close()

	var result []facility.Facility
	for rows.Next() {
		var f facility.Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.Kind, &f.Address, &f.Phone, &f.Latitude, &f.Longitude); err != nil {
			return nil, fmt.Errorf("scan facility: %w", err)
		}
		result = append(result, f)
	}

	return result, rows.Err()
}
