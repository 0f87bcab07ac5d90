// Package leaching models the natural, rainfall-driven depletion of soil
// carbonate. The resulting CaCO3 loss (kg/ha/year) sizes maintenance
// dosing for both calculation methods.
package leaching

import (
	"math"

	"github.com/terralytics/limeplan/internal/texture"
)

// Power-law fit of the bicarbonate concentration against pH. The model
// replaces an older stepwise table and is continuous over the whole
// agricultural pH range.
const (
	bicarbCoefficient = 0.002304
	bicarbExponent    = 5.792337

	bicarbMin = 5.0
	bicarbMax = 500.0
)

// vdlufaClay maps empirical-method texture classes to clay percentages.
// The empirical and CEC tables intentionally disagree for similarly named
// classes; they come from two independent classification systems and must
// not be unified.
var vdlufaClay = map[texture.VDLUFATexture]float64{
	texture.VDLUFASand:          5,
	texture.VDLUFAWeakLoamySand: 12,
	texture.VDLUFALoamySand:     12,
	texture.VDLUFASandySiltLoam: 15,
	texture.VDLUFAClayLoam:      32,
}

// cecClay maps USDA texture classes to clay percentages following the
// USDA soil texture triangle midpoints.
var cecClay = map[texture.USDATexture]float64{
	texture.USDASand:          5,
	texture.USDALoamySand:     8,
	texture.USDASandyLoam:     10,
	texture.USDALoam:          18,
	texture.USDASiltLoam:      15,
	texture.USDASilt:          6,
	texture.USDASandyClayLoam: 27,
	texture.USDAClayLoam:      33,
	texture.USDASandyClay:     42,
	texture.USDASiltyClay:     47,
	texture.USDAClay:          60,
	texture.USDASandySiltLoam: 17,
	texture.USDAOrganic:       20,
}

// Loss describes the annual carbonate loss for one sample along with the
// intermediate factors, which are reported for audit purposes.
type Loss struct {
	CaCO3KgHa         float64 // kg/ha/year, rounded to one decimal
	ClayPercent       float64
	DrainageCoef      float64
	BicarbonateFactor float64
}

// ClayForVDLUFA returns the clay percentage for an empirical-method
// texture class. The second return value is false when the class is not
// in the table, which makes the leaching model inapplicable.
func ClayForVDLUFA(t texture.VDLUFATexture) (float64, bool) {
	clay, ok := vdlufaClay[t]
	return clay, ok
}

// ClayForUSDA returns the clay percentage for a USDA texture class.
func ClayForUSDA(t texture.USDATexture) (float64, bool) {
	clay, ok := cecClay[t]
	return clay, ok
}

// BicarbonateFactor returns the bicarbonate concentration (mg/L) for a
// soil pH using the fitted power law, clamped to [5, 500].
func BicarbonateFactor(ph float64) float64 {
	b := bicarbCoefficient * math.Pow(ph, bicarbExponent)
	return math.Max(bicarbMin, math.Min(bicarbMax, b))
}

// DrainageCoefficient derives the drainage coefficient from clay content.
func DrainageCoefficient(clayPercent float64) float64 {
	return 0.6 - 0.005*clayPercent
}

// AnnualLoss computes the CaCO3 loss per hectare per year from natural
// leaching: P x (0.6 - 0.005 x clay%) x B x 0.82 / 100.
func AnnualLoss(precipitationMm, clayPercent, ph float64) Loss {
	d := DrainageCoefficient(clayPercent)
	b := BicarbonateFactor(ph)
	loss := precipitationMm * d * b * 0.82 / 100

	return Loss{
		CaCO3KgHa:         math.Round(loss*10) / 10,
		ClayPercent:       clayPercent,
		DrainageCoef:      math.Round(d*1000) / 1000,
		BicarbonateFactor: b,
	}
}

// AnnualLossVDLUFA computes the loss for an empirical-method texture.
// It returns nil when the texture has no clay-table entry.
func AnnualLossVDLUFA(precipitationMm float64, t texture.VDLUFATexture, ph float64) *Loss {
	clay, ok := ClayForVDLUFA(t)
	if !ok {
		return nil
	}
	loss := AnnualLoss(precipitationMm, clay, ph)
	return &loss
}

// AnnualLossUSDA computes the loss for a USDA texture. It returns nil
// when the texture has no clay-table entry.
func AnnualLossUSDA(precipitationMm float64, t texture.USDATexture, ph float64) *Loss {
	clay, ok := ClayForUSDA(t)
	if !ok {
		return nil
	}
	loss := AnnualLoss(precipitationMm, clay, ph)
	return &loss
}
