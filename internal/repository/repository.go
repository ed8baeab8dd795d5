package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meterwatch/meter-reading-api/internal/db"
)

// Filter holds the exact-match criteria for listing measures. MeasureType
// is optional; nil means any type.
type Filter struct {
	CustomerCode string
	MeasureType  *string
}

// Repository handles database operations for measures
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateMeasure inserts a new measure record
func (r *Repository) CreateMeasure(ctx context.Context, m *db.Measure) error {
	query := `
		INSERT INTO measures (
			measure_uuid, image_url, customer_code, measure_value,
			measure_datetime, measure_type, has_confirmed
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		m.MeasureUUID,
		m.ImageURL,
		m.CustomerCode,
		m.MeasureValue,
		m.MeasureDatetime,
		m.MeasureType,
		m.HasConfirmed,
	)

	if err != nil {
		return fmt.Errorf("failed to insert measure: %w", err)
	}

	return nil
}

// FindByUUID returns the measure with the given identifier, or nil when no
// such record exists.
func (r *Repository) FindByUUID(ctx context.Context, id uuid.UUID) (*db.Measure, error) {
	query := `
		SELECT measure_uuid, image_url, customer_code, measure_value,
		       measure_datetime, measure_type, has_confirmed
		FROM measures
		WHERE measure_uuid = $1
	`

	var m db.Measure
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.MeasureUUID,
		&m.ImageURL,
		&m.CustomerCode,
		&m.MeasureValue,
		&m.MeasureDatetime,
		&m.MeasureType,
		&m.HasConfirmed,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query measure by uuid: %w", err)
	}

	return &m, nil
}

// FindExistingInPeriod returns any measure of the given type whose
// measure_datetime falls inside [start, end), or nil when none exists.
func (r *Repository) FindExistingInPeriod(ctx context.Context, measureType string, start, end time.Time) (*db.Measure, error) {
	query := `
		SELECT measure_uuid, image_url, customer_code, measure_value,
		       measure_datetime, measure_type, has_confirmed
		FROM measures
		WHERE measure_type = $1
		  AND measure_datetime >= $2
		  AND measure_datetime < $3
		LIMIT 1
	`

	var m db.Measure
	err := r.pool.QueryRow(ctx, query, measureType, start, end).Scan(
		&m.MeasureUUID,
		&m.ImageURL,
		&m.CustomerCode,
		&m.MeasureValue,
		&m.MeasureDatetime,
		&m.MeasureType,
		&m.HasConfirmed,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query measure in period: %w", err)
	}

	return &m, nil
}

// ConfirmMeasure sets the confirmed value and the has_confirmed flag on the
// measure with the given identifier, reporting how many rows were updated.
func (r *Repository) ConfirmMeasure(ctx context.Context, id uuid.UUID, value int64) (int64, error) {
	query := `
		UPDATE measures
		SET measure_value = $1, has_confirmed = true
		WHERE measure_uuid = $2
	`

	tag, err := r.pool.Exec(ctx, query, value, id)
	if err != nil {
		return 0, fmt.Errorf("failed to confirm measure: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ListByFilter returns all measures matching the filter, newest first.
func (r *Repository) ListByFilter(ctx context.Context, filter Filter) ([]db.Measure, error) {
	query := `
		SELECT measure_uuid, image_url, customer_code, measure_value,
		       measure_datetime, measure_type, has_confirmed
		FROM measures
		WHERE customer_code = $1
	`
	args := []interface{}{filter.CustomerCode}

	if filter.MeasureType != nil {
		query += ` AND measure_type = $2`
		args = append(args, *filter.MeasureType)
	}

	query += ` ORDER BY measure_datetime DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query measures: %w", err)
	}
	defer rows.Close()

	var measures []db.Measure
	for rows.Next() {
		var m db.Measure
		if err := rows.Scan(
			&m.MeasureUUID,
			&m.ImageURL,
			&m.CustomerCode,
			&m.MeasureValue,
			&m.MeasureDatetime,
			&m.MeasureType,
			&m.HasConfirmed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan measure: %w", err)
		}
		measures = append(measures, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return measures, nil
}
