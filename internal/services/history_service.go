package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/terralytics/limeplan/internal/logger"
	"github.com/terralytics/limeplan/internal/models"
	"github.com/terralytics/limeplan/internal/repository"
)

// ErrHistoryDisabled is returned when history queries arrive while the
// service runs without a database.
var ErrHistoryDisabled = errors.New("calculation history is disabled")

// HistoryService records batch calculations for auditing. Recording is
// best-effort: a history failure must never fail a prescription.
type HistoryService interface {
	// RecordCalculation stores one audit row. Errors are logged, not
	// returned.
	RecordCalculation(ctx context.Context, summary models.PrescriptionSummary, params interface{})

	// RecentCalculations returns the newest audit rows.
	// Returns ErrHistoryDisabled when no database is configured.
	RecentCalculations(ctx context.Context, limit int) ([]repository.CalculationRecord, error)
}

type historyService struct {
	repo repository.CalculationRepository // nil when the store is disabled
	log  *logger.Logger
}

// NewHistoryService creates a HistoryService. A nil repository yields a
// no-op recorder, so callers never have to branch on configuration.
func NewHistoryService(repo repository.CalculationRepository, log *logger.Logger) HistoryService {
	return &historyService{
		repo: repo,
		log:  log,
	}
}

func (s *historyService) RecordCalculation(ctx context.Context, summary models.PrescriptionSummary, params interface{}) {
	if s.repo == nil {
		return
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		if s.log != nil {
			s.log.Error("failed to encode calculation parameters for history", err, nil)
		}
		paramsJSON = []byte("{}")
	}

	rec := repository.CalculationRecord{
		Method:          summary.Method,
		SampleCount:     summary.TotalSamples,
		TotalAreaHa:     summary.TotalArea,
		AverageLimeKgHa: summary.AverageLimeKgHa,
		CappedSamples:   summary.CappedSamples,
		Parameters:      paramsJSON,
	}
	if err := s.repo.Record(ctx, &rec); err != nil && s.log != nil {
		s.log.Error("failed to record calculation history", err, map[string]interface{}{
			"method": string(summary.Method),
		})
	}
}

func (s *historyService) RecentCalculations(ctx context.Context, limit int) ([]repository.CalculationRecord, error) {
	if s.repo == nil {
		return nil, ErrHistoryDisabled
	}
	return s.repo.Recent(ctx, limit)
}
