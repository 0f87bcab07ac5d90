package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/terralytics/limeplan/internal/calculator"
	"github.com/terralytics/limeplan/internal/leaching"
	"github.com/terralytics/limeplan/internal/logger"
	"github.com/terralytics/limeplan/internal/models"
	"github.com/terralytics/limeplan/internal/rainfall"
	"github.com/terralytics/limeplan/internal/refdata"
	"github.com/terralytics/limeplan/internal/texture"
)

// ErrInvalidParameters marks a parameter set that fails validation for
// the whole batch. Per-sample problems never surface as errors; they
// produce N/A results instead.
var ErrInvalidParameters = errors.New("invalid calculation parameters")

// maxConcurrentSamples bounds how many samples are calculated in
// parallel within one batch.
const maxConcurrentSamples = 8

const (
	defaultLimeProduct = "CaCO3"
	defaultTargetPh    = 6.5
	defaultFineDrySoil = 3500.0
)

// PrescriptionService runs batch lime prescriptions with either
// calculation method.
type PrescriptionService interface {
	CalculateVDLUFA(ctx context.Context, samples []models.SoilSample, params models.VDLUFAParameters) ([]models.PrescriptionResult, models.PrescriptionSummary, error)
	CalculateCEC(ctx context.Context, samples []models.SoilSample, params models.CECParameters) ([]models.PrescriptionResult, models.PrescriptionSummary, error)
}

type prescriptionService struct {
	rainfall rainfall.Service // nil disables the leaching correction
	cecTable *refdata.ExchangeCapacityTable
	log      *logger.Logger
}

// NewPrescriptionService creates a PrescriptionService. The rainfall
// service may be nil, in which case leaching losses are never computed
// and maintenance falls back accordingly.
func NewPrescriptionService(rf rainfall.Service, cecTable *refdata.ExchangeCapacityTable, log *logger.Logger) PrescriptionService {
	if cecTable == nil {
		cecTable = refdata.NewExchangeCapacityTable(nil)
	}
	return &prescriptionService{
		rainfall: rf,
		cecTable: cecTable,
		log:      log,
	}
}

// CalculateVDLUFA runs the empirical-curve method over a batch of
// samples. Parameter problems fail the whole batch; sample problems
// produce per-sample N/A results.
func (s *prescriptionService) CalculateVDLUFA(ctx context.Context, samples []models.SoilSample, params models.VDLUFAParameters) ([]models.PrescriptionResult, models.PrescriptionSummary, error) {
	if err := normalizeVDLUFAParams(&params); err != nil {
		return nil, models.PrescriptionSummary{}, err
	}

	results := s.runBatch(ctx, samples, models.MethodVDLUFA, func(ctx context.Context, sample models.SoilSample) models.PrescriptionResult {
		return s.vdlufaSample(ctx, sample, params)
	})
	return results, summarize(results, samples, models.MethodVDLUFA), nil
}

// CalculateCEC runs the cation-exchange-capacity method over a batch of
// samples.
func (s *prescriptionService) CalculateCEC(ctx context.Context, samples []models.SoilSample, params models.CECParameters) ([]models.PrescriptionResult, models.PrescriptionSummary, error) {
	if err := normalizeCECParams(&params); err != nil {
		return nil, models.PrescriptionSummary{}, err
	}

	results := s.runBatch(ctx, samples, models.MethodCEC, func(ctx context.Context, sample models.SoilSample) models.PrescriptionResult {
		return s.cecSample(ctx, sample, params)
	})
	return results, summarize(results, samples, models.MethodCEC), nil
}

// runBatch computes all samples with bounded parallelism, keeping
// results in input order. A panic in one sample is contained to that
// sample's slot.
func (s *prescriptionService) runBatch(ctx context.Context, samples []models.SoilSample, method models.Method, compute func(context.Context, models.SoilSample) models.PrescriptionResult) []models.PrescriptionResult {
	results := make([]models.PrescriptionResult, len(samples))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSamples)
	for i, sample := range samples {
		i, sample := i, sample
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					if s.log != nil {
						s.log.Error("sample calculation panicked", fmt.Errorf("%v", r), map[string]interface{}{
							"sample_id": sample.ID,
							"method":    string(method),
						})
					}
					results[i] = baseResult(sample, method, models.AppliedNotApplicable)
				}
			}()
			results[i] = compute(ctx, sample)
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()

	return results
}

func (s *prescriptionService) vdlufaSample(ctx context.Context, sample models.SoilSample, params models.VDLUFAParameters) models.PrescriptionResult {
	if sample.Ph == nil {
		return baseResult(sample, models.MethodVDLUFA, models.AppliedNotApplicable)
	}
	ph := *sample.Ph

	res := baseResult(sample, models.MethodVDLUFA, models.AppliedNotApplicable)
	tex, defaulted := resolveVDLUFATexture(sample.SoilTexture, params.DefaultTexture)
	res.SoilTexture = string(tex)
	res.DefaultedTexture = defaulted

	if mm := s.annualRainfall(ctx, sample); mm != nil {
		res.AnnualRainfallMm = mm
		if loss := leaching.AnnualLossVDLUFA(*mm, tex, ph); loss != nil {
			res.CaCO3LossKgHa = &loss.CaCO3KgHa
		}
	}

	nv := models.ProductFor(params.LimeProduct).NV
	reference := calculator.VDLUFAOptimalPh(tex, params.CropCategory)

	dose, applied := calculator.ResolveDose(calculator.ModeInput{
		Request:     params.Mode,
		CurrentPh:   ph,
		ReferencePh: reference,
		LossCaCO3:   res.CaCO3LossKgHa,
		ImprovementDose: func() float64 {
			return calculator.VDLUFARequirement(ph, tex, params.CropCategory, params.LimeProduct)
		},
		MaintenanceDose: func(loss float64) float64 {
			return calculator.MaintenanceProductDose(loss, nv)
		},
	})

	target := ph
	if applied == models.AppliedImprovement {
		target = reference
	}
	if params.MaxApplicationRate != nil && dose > *params.MaxApplicationRate {
		dose = *params.MaxApplicationRate
		res.Capped = true
		if applied == models.AppliedImprovement {
			target = calculator.VDLUFAAchievedPh(dose, tex, params.CropCategory, params.LimeProduct, ph)
		}
	}

	target = round2(target)
	res.TargetPh = &target
	res.LimeKgHa = round2(dose)
	res.AppliedMode = applied
	return res
}

func (s *prescriptionService) cecSample(ctx context.Context, sample models.SoilSample, params models.CECParameters) models.PrescriptionResult {
	if sample.Ph == nil {
		return baseResult(sample, models.MethodCEC, models.AppliedNotApplicable)
	}
	ph := *sample.Ph

	res := baseResult(sample, models.MethodCEC, models.AppliedNotApplicable)
	tex, defaulted := resolveCECTexture(sample.SoilTexture, params.DefaultTexture)
	res.SoilTexture = string(tex)
	res.DefaultedTexture = defaulted

	// The table lookup only applies to a texture the sample actually
	// carried; a defaulted texture says nothing about this soil's CEC.
	// The resolved class is consulted before the raw spelling so that
	// "Schwach Lehm Sand" and "SANDY_LOAM" dose like the Sandy Loam the
	// result reports.
	var cec float64
	switch {
	case sample.SoilTexture != "":
		cec = s.cecTable.LookupMapped(string(tex), sample.SoilTexture)
	case params.CECOverride != nil:
		cec = *params.CECOverride
	default:
		cec = refdata.DefaultCEC
	}

	if mm := s.annualRainfall(ctx, sample); mm != nil {
		res.AnnualRainfallMm = mm
		if loss := leaching.AnnualLossUSDA(*mm, tex, ph); loss != nil {
			res.CaCO3LossKgHa = &loss.CaCO3KgHa
		}
	}

	improvement := func() float64 {
		if params.ModifiedSCec != nil && params.SCecPercentage != nil {
			return calculator.CECRequirementWithSCec(ph, params.TargetPh, cec, params.FineDrySoil, params.NV, params.Dose, *params.ModifiedSCec)
		}
		return calculator.CECRequirement(ph, params.TargetPh, cec, params.FineDrySoil, params.NV, params.Dose)
	}

	dose, applied := calculator.ResolveDose(calculator.ModeInput{
		Request:         params.Mode,
		CurrentPh:       ph,
		ReferencePh:     params.TargetPh,
		LossCaCO3:       res.CaCO3LossKgHa,
		ImprovementDose: improvement,
		MaintenanceDose: func(loss float64) float64 {
			return calculator.MaintenanceProductDose(loss, params.NV)
		},
		AutomaticMaintenanceDose: func(loss float64) float64 {
			return calculator.MaintenanceDirectDose(loss, params.NV)
		},
		MaintenanceFallback: func() float64 {
			return calculator.CECRequirement(ph, ph+0.1, cec, params.FineDrySoil, params.NV, params.Dose)
		},
	})

	target := ph
	if applied == models.AppliedImprovement {
		target = params.TargetPh
	}
	if params.MaxApplicationRate != nil && dose > *params.MaxApplicationRate {
		dose = *params.MaxApplicationRate
		res.Capped = true
		if applied == models.AppliedImprovement {
			target = calculator.CECAchievedPh(dose, ph, cec, params.FineDrySoil, params.NV, params.Dose)
		}
	}

	target = round2(target)
	res.TargetPh = &target
	res.LimeKgHa = round2(dose)
	res.AppliedMode = applied
	return res
}

// annualRainfall resolves a sample's boundary centroid to annual
// precipitation. Any failure, including a no-data cell, simply disables
// the leaching correction.
func (s *prescriptionService) annualRainfall(ctx context.Context, sample models.SoilSample) *float64 {
	if s.rainfall == nil || sample.Boundary == nil {
		return nil
	}
	lon, lat, ok := sample.Boundary.Centroid()
	if !ok {
		return nil
	}
	mm, err := s.rainfall.Annual(ctx, lon, lat)
	if err != nil {
		if !errors.Is(err, rainfall.ErrNoData) && s.log != nil {
			s.log.Warn("rainfall lookup failed", map[string]interface{}{
				"sample_id": sample.ID,
				"error":     err.Error(),
			})
		}
		return nil
	}
	return &mm
}

func baseResult(sample models.SoilSample, method models.Method, applied models.AppliedMode) models.PrescriptionResult {
	return models.PrescriptionResult{
		SampleID:        sample.ID,
		SampleName:      sample.Name,
		FieldID:         sample.FieldID,
		FieldName:       sample.FieldName,
		ZoneName:        sample.ZoneName,
		ZoneArea:        sample.Area,
		CurrentPh:       sample.Ph,
		OriginalTexture: sample.SoilTexture,
		OrganicMatter:   sample.HumusLevel,
		Method:          method,
		AppliedMode:     applied,
	}
}

func resolveVDLUFATexture(raw, fallback string) (texture.VDLUFATexture, bool) {
	if raw != "" {
		if tex, ok := texture.ResolveVDLUFA(raw); ok {
			return tex, false
		}
	}
	if fallback != "" {
		if tex, ok := texture.ResolveVDLUFA(fallback); ok {
			return tex, true
		}
	}
	return texture.VDLUFASandySiltLoam, true
}

func resolveCECTexture(raw, fallback string) (texture.USDATexture, bool) {
	if raw != "" {
		tex, _ := texture.ResolveUSDA(raw)
		return tex, false
	}
	if fallback == "" {
		fallback = string(texture.USDASandyLoam)
	}
	tex, _ := texture.ResolveUSDA(fallback)
	return tex, true
}

func normalizeVDLUFAParams(params *models.VDLUFAParameters) error {
	if params.CropCategory == "" {
		params.CropCategory = models.CropStandard
	} else if !params.CropCategory.Valid() {
		return fmt.Errorf("%w: unknown crop category %q", ErrInvalidParameters, params.CropCategory)
	}
	if params.Mode == "" {
		params.Mode = models.ModeAutomatic
	} else if !params.Mode.Valid() {
		return fmt.Errorf("%w: unknown liming mode %q", ErrInvalidParameters, params.Mode)
	}
	if params.LimeProduct == "" {
		params.LimeProduct = defaultLimeProduct
	}
	if params.MaxApplicationRate != nil && *params.MaxApplicationRate <= 0 {
		return fmt.Errorf("%w: max application rate must be positive", ErrInvalidParameters)
	}
	return nil
}

func normalizeCECParams(params *models.CECParameters) error {
	if params.TargetPh == 0 {
		params.TargetPh = defaultTargetPh
	} else if params.TargetPh < 0 {
		return fmt.Errorf("%w: target pH must be positive", ErrInvalidParameters)
	}
	if params.FineDrySoil == 0 {
		params.FineDrySoil = defaultFineDrySoil
	} else if params.FineDrySoil < 0 {
		return fmt.Errorf("%w: fine dry soil mass must be positive", ErrInvalidParameters)
	}
	if params.NV <= 0 {
		return fmt.Errorf("%w: neutralizing value must be positive", ErrInvalidParameters)
	}
	if params.Dose == 0 {
		params.Dose = 1.0
	} else if params.Dose < 0 {
		return fmt.Errorf("%w: dose factor must be positive", ErrInvalidParameters)
	}
	if params.Mode == "" {
		params.Mode = models.ModeAutomatic
	} else if !params.Mode.Valid() {
		return fmt.Errorf("%w: unknown liming mode %q", ErrInvalidParameters, params.Mode)
	}
	if params.MaxApplicationRate != nil && *params.MaxApplicationRate <= 0 {
		return fmt.Errorf("%w: max application rate must be positive", ErrInvalidParameters)
	}
	return nil
}

func summarize(results []models.PrescriptionResult, samples []models.SoilSample, method models.Method) models.PrescriptionSummary {
	summary := models.PrescriptionSummary{
		TotalSamples: len(results),
		Method:       method,
	}

	var area float64
	for _, sample := range samples {
		if sample.Area != nil {
			area += *sample.Area
		}
	}
	summary.TotalArea = round2(area)

	var sum float64
	var decided int
	for _, res := range results {
		if res.AppliedMode == models.AppliedNotApplicable {
			continue
		}
		sum += res.LimeKgHa
		decided++
		if res.Capped {
			summary.CappedSamples++
		}
	}
	if decided > 0 {
		summary.AverageLimeKgHa = round2(sum / float64(decided))
	}

	return summary
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
