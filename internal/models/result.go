package models

// AppliedMode records which dosing policy was actually applied to a
// sample after mode resolution. The zero-dose outcomes are deliberately
// distinct: "already at target", "no leaching data" and "no pH" must be
// observable in the result, not just as a numeric zero.
type AppliedMode string

const (
	AppliedImprovement   AppliedMode = "Improvement"
	AppliedMaintenance   AppliedMode = "Maintenance"
	AppliedNone          AppliedMode = "None (pH at/above target)"
	AppliedNoData        AppliedMode = "Maintenance (no leaching data)"
	AppliedNotApplicable AppliedMode = "N/A"
)

// Method identifies a calculation method in results and history rows.
type Method string

const (
	MethodVDLUFA Method = "VDLUFA"
	MethodCEC    Method = "CEC"
)

// PrescriptionResult is the per-sample output of a batch calculation.
// Derived data only; the engine never persists it.
type PrescriptionResult struct {
	SampleID         string      `json:"sample_id,omitempty"`
	SampleName       string      `json:"sample_name,omitempty"`
	FieldID          string      `json:"field_id,omitempty"`
	FieldName        string      `json:"field_name"`
	ZoneName         string      `json:"zone_name"`
	ZoneArea         *float64    `json:"zone_area,omitempty"`
	CurrentPh        *float64    `json:"current_ph,omitempty"`
	TargetPh         *float64    `json:"target_ph,omitempty"` // achieved pH when capped
	Capped           bool        `json:"was_capped"`
	SoilTexture      string      `json:"soil_texture,omitempty"`          // texture used for calculation
	OriginalTexture  string      `json:"original_soil_texture,omitempty"` // raw input, kept for audit
	DefaultedTexture bool        `json:"defaulted_texture,omitempty"`
	OrganicMatter    *float64    `json:"organic_matter,omitempty"`
	LimeKgHa         float64     `json:"lime_requirement_kg_ha"` // product units, always >= 0
	Method           Method      `json:"method"`
	AppliedMode      AppliedMode `json:"applied_mode"`
	AnnualRainfallMm *float64    `json:"annual_rainfall_mm,omitempty"`
	CaCO3LossKgHa    *float64    `json:"caco3_loss_kg_ha_year,omitempty"`
}

// PrescriptionSummary aggregates a whole batch.
type PrescriptionSummary struct {
	TotalSamples    int     `json:"total_samples"`
	TotalArea       float64 `json:"total_area"` // hectares, missing areas count as 0
	AverageLimeKgHa float64 `json:"average_lime_kg_ha"`
	CappedSamples   int     `json:"capped_samples"`
	Method          Method  `json:"method"`
}
