package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/terralytics/limeplan/internal/database"
	"github.com/terralytics/limeplan/internal/models"
)

// CalculationRecord is one audit row describing a completed batch
// calculation. Only the batch-level summary and the parameters are
// stored; per-sample results stay derived data and are never persisted.
type CalculationRecord struct {
	ID              uuid.UUID     `json:"id"`
	Method          models.Method `json:"method"`
	SampleCount     int           `json:"sample_count"`
	TotalAreaHa     float64       `json:"total_area_ha"`
	AverageLimeKgHa float64       `json:"average_lime_kg_ha"`
	CappedSamples   int           `json:"capped_samples"`
	Parameters      []byte        `json:"parameters"` // JSON snapshot of the request parameters
	CreatedAt       time.Time     `json:"created_at"`
}

// CalculationRepository defines data access for the calculation history.
type CalculationRepository interface {
	// Record inserts an audit row. The ID and CreatedAt fields are
	// assigned here if unset.
	Record(ctx context.Context, rec *CalculationRecord) error

	// Recent returns the newest audit rows, most recent first.
	Recent(ctx context.Context, limit int) ([]CalculationRecord, error)
}

type calculationRepository struct {
	db *database.Database
}

// NewCalculationRepository creates a new instance of CalculationRepository.
func NewCalculationRepository(db *database.Database) CalculationRepository {
	return &calculationRepository{
		db: db,
	}
}

// Record inserts one history row into calculation_history.
func (r *calculationRepository) Record(ctx context.Context, rec *CalculationRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO calculation_history (
			id,
			method,
			sample_count,
			total_area_ha,
			average_lime_kg_ha,
			capped_samples,
			parameters,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		rec.ID,
		string(rec.Method),
		rec.SampleCount,
		rec.TotalAreaHa,
		rec.AverageLimeKgHa,
		rec.CappedSamples,
		rec.Parameters,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record calculation: %w", err)
	}

	return nil
}

// Recent queries the newest history rows ordered by creation time.
func (r *calculationRepository) Recent(ctx context.Context, limit int) ([]CalculationRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT
			id,
			method,
			sample_count,
			total_area_ha,
			average_lime_kg_ha,
			capped_samples,
			parameters,
			created_at
		FROM calculation_history
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query calculation history: %w", err)
	}
	defer rows.Close()

	records := make([]CalculationRecord, 0, limit)
	for rows.Next() {
		var rec CalculationRecord
		var method string
		if err := rows.Scan(
			&rec.ID,
			&method,
			&rec.SampleCount,
			&rec.TotalAreaHa,
			&rec.AverageLimeKgHa,
			&rec.CappedSamples,
			&rec.Parameters,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan calculation history row: %w", err)
		}
		rec.Method = models.Method(method)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate calculation history: %w", err)
	}

	return records, nil
}
