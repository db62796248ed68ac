package fleet

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles fleet data access
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new fleet repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const vehicleColumns = `id, immat, marque, type, status,
	date_ct, date_tachy, date_atp, created_at, updated_at`

// CreateVehicle registers a new vehicle
func (r *Repository) CreateVehicle(ctx context.Context, v *Vehicle) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO vehicles (
			id, immat, marque, type, status,
			date_ct, date_tachy, date_atp, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		v.ID, v.Immat, v.Marque, v.Type, v.Status,
		v.DateCT, v.DateTachy, v.DateATP, v.CreatedAt, v.UpdatedAt,
	)
	return err
}

// GetVehicleByID retrieves a vehicle by ID
func (r *Repository) GetVehicleByID(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	v := &Vehicle{}
	err := r.db.QueryRow(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles WHERE id = $1`, id,
	).Scan(
		&v.ID, &v.Immat, &v.Marque, &v.Type, &v.Status,
		&v.DateCT, &v.DateTachy, &v.DateATP, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// GetVehicleByImmat retrieves a vehicle by registration plate, ignoring case
func (r *Repository) GetVehicleByImmat(ctx context.Context, immat string) (*Vehicle, error) {
	v := &Vehicle{}
	err := r.db.QueryRow(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles WHERE LOWER(immat) = LOWER($1)`, immat,
	).Scan(
		&v.ID, &v.Immat, &v.Marque, &v.Type, &v.Status,
		&v.DateCT, &v.DateTachy, &v.DateATP, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ListVehicles returns the whole fleet, newest first
func (r *Repository) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		v := Vehicle{}
		if err := rows.Scan(
			&v.ID, &v.Immat, &v.Marque, &v.Type, &v.Status,
			&v.DateCT, &v.DateTachy, &v.DateATP, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// UpdateVehicle updates vehicle details
func (r *Repository) UpdateVehicle(ctx context.Context, v *Vehicle) error {
	_, err := r.db.Exec(ctx, `
		UPDATE vehicles
		SET marque = $2, type = $3, status = $4,
			date_ct = $5, date_tachy = $6, date_atp = $7,
			updated_at = $8
		WHERE id = $1`,
		v.ID, v.Marque, v.Type, v.Status,
		v.DateCT, v.DateTachy, v.DateATP,
		v.UpdatedAt,
	)
	return err
}

// CountByStatus returns the number of vehicles per operational status
func (r *Repository) CountByStatus(ctx context.Context) (map[VehicleStatus]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT status, COUNT(*)
		FROM vehicles
		GROUP BY status`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[VehicleStatus]int)
	for rows.Next() {
		var status VehicleStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
