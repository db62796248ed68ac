package intervention

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles intervention data access
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new intervention repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const interventionColumns = `id, vehicle_id, vehicule, immat, description, garage,
	montant_devis, status, rdv_date, rdv_lieu, created_at, updated_at`

// CreateIntervention opens a new maintenance request
func (r *Repository) CreateIntervention(ctx context.Context, i *Intervention) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO interventions (
			id, vehicle_id, vehicule, immat, description, garage,
			montant_devis, status, rdv_date, rdv_lieu, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		i.ID, i.VehicleID, i.Vehicule, i.Immat, i.Description, i.Garage,
		i.MontantDevis, i.Status, i.RdvDate, i.RdvLieu, i.CreatedAt, i.UpdatedAt,
	)
	return err
}

// GetInterventionByID retrieves an intervention by ID
func (r *Repository) GetInterventionByID(ctx context.Context, id uuid.UUID) (*Intervention, error) {
	i := &Intervention{}
	err := r.db.QueryRow(ctx, `
		SELECT `+interventionColumns+`
		FROM interventions WHERE id = $1`, id,
	).Scan(
		&i.ID, &i.VehicleID, &i.Vehicule, &i.Immat, &i.Description, &i.Garage,
		&i.MontantDevis, &i.Status, &i.RdvDate, &i.RdvLieu, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return i, nil
}

// ListInterventions returns interventions matching the filter, newest first.
// Rejected requests are excluded unless explicitly asked for.
func (r *Repository) ListInterventions(ctx context.Context, filter *ListFilter) ([]Intervention, error) {
	query := `
		SELECT ` + interventionColumns + `
		FROM interventions
		WHERE 1=1`
	args := []interface{}{}

	if filter != nil && !filter.IncludeRejected {
		query += ` AND status <> 'rejected'`
	}
	if filter != nil && filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter != nil && filter.VehicleID != nil {
		args = append(args, *filter.VehicleID)
		query += fmt.Sprintf(` AND vehicle_id = $%d`, len(args))
	} else if filter != nil && filter.Immat != "" {
		args = append(args, filter.Immat)
		query += fmt.Sprintf(` AND LOWER(immat) = LOWER($%d)`, len(args))
	}

	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interventions []Intervention
	for rows.Next() {
		i := Intervention{}
		if err := rows.Scan(
			&i.ID, &i.VehicleID, &i.Vehicule, &i.Immat, &i.Description, &i.Garage,
			&i.MontantDevis, &i.Status, &i.RdvDate, &i.RdvLieu, &i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		interventions = append(interventions, i)
	}
	return interventions, rows.Err()
}

// UpdateInterventionState persists the workflow fields after a transition
func (r *Repository) UpdateInterventionState(ctx context.Context, i *Intervention) error {
	_, err := r.db.Exec(ctx, `
		UPDATE interventions
		SET status = $2, rdv_date = $3, rdv_lieu = $4, updated_at = $5
		WHERE id = $1`,
		i.ID, i.Status, i.RdvDate, i.RdvLieu, i.UpdatedAt,
	)
	return err
}

// GetInterventionStats counts interventions per workflow status
func (r *Repository) GetInterventionStats(ctx context.Context) (*InterventionStats, error) {
	stats := &InterventionStats{}
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(CASE WHEN status = 'pending' THEN 1 END),
			COUNT(CASE WHEN status = 'approved_waiting_rdv' THEN 1 END),
			COUNT(CASE WHEN status = 'planned' THEN 1 END),
			COUNT(CASE WHEN status = 'completed' THEN 1 END),
			COUNT(CASE WHEN status = 'rejected' THEN 1 END)
		FROM interventions`,
	).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.ApprovedWaitingRdv,
		&stats.Planned,
		&stats.Completed,
		&stats.Rejected,
	)
	return stats, err
}
