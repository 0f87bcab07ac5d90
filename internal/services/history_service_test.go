package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/terralytics/limeplan/internal/logger"
	"github.com/terralytics/limeplan/internal/models"
	"github.com/terralytics/limeplan/internal/repository"
)

type mockCalculationRepo struct {
	mock.Mock
}

func (m *mockCalculationRepo) Record(ctx context.Context, rec *repository.CalculationRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockCalculationRepo) Recent(ctx context.Context, limit int) ([]repository.CalculationRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.CalculationRecord), args.Error(1)
}

func TestHistoryService_RecordCalculation(t *testing.T) {
	repo := &mockCalculationRepo{}
	svc := NewHistoryService(repo, logger.New("test"))

	summary := models.PrescriptionSummary{
		TotalSamples:    3,
		TotalArea:       7.5,
		AverageLimeKgHa: 1200,
		CappedSamples:   1,
		Method:          models.MethodVDLUFA,
	}
	params := map[string]string{"lime_type": "CaCO3"}

	repo.On("Record", mock.Anything, mock.MatchedBy(func(rec *repository.CalculationRecord) bool {
		var decoded map[string]string
		if err := json.Unmarshal(rec.Parameters, &decoded); err != nil {
			return false
		}
		return rec.Method == models.MethodVDLUFA &&
			rec.SampleCount == 3 &&
			rec.CappedSamples == 1 &&
			decoded["lime_type"] == "CaCO3"
	})).Return(nil)

	svc.RecordCalculation(context.Background(), summary, params)
	repo.AssertExpectations(t)
}

func TestHistoryService_RecordCalculation_ErrorsAreSwallowed(t *testing.T) {
	repo := &mockCalculationRepo{}
	repo.On("Record", mock.Anything, mock.Anything).Return(errors.New("connection lost"))
	svc := NewHistoryService(repo, logger.New("test"))

	// Must not panic or propagate; history is best-effort.
	svc.RecordCalculation(context.Background(), models.PrescriptionSummary{}, nil)
	repo.AssertExpectations(t)
}

func TestHistoryService_Disabled(t *testing.T) {
	svc := NewHistoryService(nil, logger.New("test"))

	// Recording is a no-op.
	svc.RecordCalculation(context.Background(), models.PrescriptionSummary{}, nil)

	_, err := svc.RecentCalculations(context.Background(), 10)
	assert.ErrorIs(t, err, ErrHistoryDisabled)
}

func TestHistoryService_RecentCalculations(t *testing.T) {
	repo := &mockCalculationRepo{}
	repo.On("Recent", mock.Anything, 5).
		Return([]repository.CalculationRecord{{Method: models.MethodCEC}}, nil)
	svc := NewHistoryService(repo, logger.New("test"))

	records, err := svc.RecentCalculations(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.MethodCEC, records[0].Method)
}
