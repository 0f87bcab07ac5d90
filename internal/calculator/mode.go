package calculator

import (
	"github.com/terralytics/limeplan/internal/models"
)

// automaticBandWidth is how far below the reference pH a sample may sit
// and still be handled as maintenance rather than improvement when the
// requested mode is Automatic.
const automaticBandWidth = 0.1

// ModeInput parameterizes the liming-mode decision shared by both
// calculation methods. The dose closures return kg/ha of product; the
// loss, when present, is the annual CaCO3 leaching loss in kg/ha.
type ModeInput struct {
	Request     models.LimingMode
	CurrentPh   float64
	ReferencePh float64
	LossCaCO3   *float64

	// ImprovementDose computes the full dose toward the reference pH.
	ImprovementDose func() float64

	// MaintenanceDose compensates the annual leaching loss when the
	// caller explicitly requested maintenance.
	MaintenanceDose func(lossCaCO3 float64) float64

	// AutomaticMaintenanceDose handles the maintenance band of the
	// Automatic mode. Nil means reuse MaintenanceDose.
	AutomaticMaintenanceDose func(lossCaCO3 float64) float64

	// MaintenanceFallback, when non-nil, provides a maintenance dose
	// for the Automatic band without leaching data. Methods without a
	// fallback report AppliedNoData there instead.
	MaintenanceFallback func() float64
}

// ResolveDose runs the mode state machine for one sample and returns
// the dose in kg/ha of product together with the mode that was actually
// applied.
func ResolveDose(in ModeInput) (float64, models.AppliedMode) {
	switch in.Request {
	case models.ModeImprovement:
		return in.ImprovementDose(), models.AppliedImprovement

	case models.ModeMaintenance:
		if in.CurrentPh >= in.ReferencePh {
			return 0, models.AppliedNone
		}
		if in.LossCaCO3 == nil {
			return 0, models.AppliedNoData
		}
		return in.MaintenanceDose(*in.LossCaCO3), models.AppliedMaintenance

	case models.ModeAutomatic:
		if in.CurrentPh > in.ReferencePh {
			return 0, models.AppliedNone
		}
		if in.CurrentPh >= in.ReferencePh-automaticBandWidth {
			if in.LossCaCO3 != nil {
				dose := in.MaintenanceDose
				if in.AutomaticMaintenanceDose != nil {
					dose = in.AutomaticMaintenanceDose
				}
				return dose(*in.LossCaCO3), models.AppliedMaintenance
			}
			if in.MaintenanceFallback != nil {
				return in.MaintenanceFallback(), models.AppliedMaintenance
			}
			return 0, models.AppliedNoData
		}
		return in.ImprovementDose(), models.AppliedImprovement
	}

	return 0, models.AppliedNotApplicable
}

// MaintenanceProductDose converts an annual CaCO3 leaching loss into a
// product dose: CaCO3 to CaO equivalent first, then scaled by the
// product's neutralizing value.
func MaintenanceProductDose(lossCaCO3KgHa, nv float64) float64 {
	if nv <= 0 {
		return 0
	}
	caoKgHa := lossCaCO3KgHa / models.CaCO3Factor
	return caoKgHa * (100 / nv)
}

// MaintenanceDirectDose scales a CaCO3 loss by the neutralizing value
// without the CaO conversion step. The CEC method's automatic
// maintenance band compensates the loss directly in carbonate terms.
func MaintenanceDirectDose(lossCaCO3KgHa, nv float64) float64 {
	if nv <= 0 {
		return 0
	}
	return lossCaCO3KgHa * (100 / nv)
}
