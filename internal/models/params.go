package models

// LimingMode is the requested dosing policy.
type LimingMode string

const (
	// ModeImprovement seeks a one-time pH improvement to the optimal or
	// target pH.
	ModeImprovement LimingMode = "pH Improvement"
	// ModeMaintenance compensates the annual leaching loss to hold the
	// current pH; it is not pH-seeking.
	ModeMaintenance LimingMode = "pH Maintenance"
	// ModeAutomatic picks between improvement, maintenance and no action
	// based on how far the current pH sits below the reference pH.
	ModeAutomatic LimingMode = "Automatic"
)

// Valid reports whether the mode is one of the three known policies.
func (m LimingMode) Valid() bool {
	switch m {
	case ModeImprovement, ModeMaintenance, ModeAutomatic:
		return true
	}
	return false
}

// CropCategory selects between the two published empirical curve sets.
type CropCategory string

const (
	CropStandard CropCategory = "Standard crops"
	CropOther    CropCategory = "Other crops"
)

// Valid reports whether the category is known.
func (c CropCategory) Valid() bool {
	return c == CropStandard || c == CropOther
}

// VDLUFAParameters configures a batch calculation with the empirical
// (VDLUFA) method.
type VDLUFAParameters struct {
	CropCategory       CropCategory
	LimeProduct        string // product identity for the result units
	Mode               LimingMode
	DefaultTexture     string   // raw texture used when a sample has none
	MaxApplicationRate *float64 // kg/ha in product units, nil = uncapped
}

// CECParameters configures a batch calculation with the CEC method.
type CECParameters struct {
	TargetPh           float64
	FineDrySoil        float64
	NV                 float64 // neutralizing value, percent
	Dose               float64 // dose factor, 1.0 when unset
	CECOverride        *float64
	SCecPercentage     *float64 // current S/CEC, percent
	ModifiedSCec       *float64 // user-modified S/CEC, percent
	Mode               LimingMode
	DefaultTexture     string
	MaxApplicationRate *float64 // kg/ha, nil = uncapped
}
