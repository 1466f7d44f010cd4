package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thorrangonak/ucustazminati-sub002/internal/domain"
)

// AirportRepository is the read-only reference catalog. Rows are maintained
// by an external importer, never written here.
type AirportRepository interface {
	FindByIATA(ctx context.Context, code string) (*domain.Airport, error)
	List(ctx context.Context) ([]domain.Airport, error)
}

type PGAirportRepository struct {
	db *pgxpool.Pool
}

func NewAirportRepository(db *pgxpool.Pool) AirportRepository {
	return &PGAirportRepository{db: db}
}

func (r *PGAirportRepository) FindByIATA(ctx context.Context, code string) (*domain.Airport, error) {
	row := r.db.QueryRow(ctx, `SELECT iata_code, name, city, country_code, latitude, longitude, created_at, updated_at
		FROM airports WHERE iata_code=$1`, code)
	var a domain.Airport
	if err := row.Scan(&a.IATACode, &a.Name, &a.City, &a.CountryCode,
		&a.Coordinate.Latitude, &a.Coordinate.Longitude, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAirportNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGAirportRepository) List(ctx context.Context) ([]domain.Airport, error) {
	rows, err := r.db.Query(ctx, `SELECT iata_code, name, city, country_code, latitude, longitude, created_at, updated_at
		FROM airports ORDER BY iata_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	airports := make([]domain.Airport, 0)
	for rows.Next() {
		var a domain.Airport
		if err := rows.Scan(&a.IATACode, &a.Name, &a.City, &a.CountryCode,
			&a.Coordinate.Latitude, &a.Coordinate.Longitude, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		airports = append(airports, a)
	}
	return airports, rows.Err()
}

var _ AirportRepository = (*PGAirportRepository)(nil)
