// Package calculator implements the two lime-requirement calculation
// methods (the piecewise empirical VDLUFA method and the linear CEC
// method) plus the liming-mode resolution shared by both. Everything in
// this package is pure and safe for concurrent use.
package calculator

import (
	"github.com/terralytics/limeplan/internal/models"
	"github.com/terralytics/limeplan/internal/texture"
)

// vdlufaCurve is one published dose curve: a flat ceiling below floorPh,
// a steep and a shallow descending linear segment, and zero above the
// optimal threshold. Doses are dt/ha CaO-equivalent.
//
// The segments must be evaluated in the tabulated order (ceiling, shallow
// band, zero threshold, steep remainder) to reproduce the published
// tables exactly, including their boundary quirks; do not "clean up" the
// overlapping bounds.
type vdlufaCurve struct {
	floorPh float64 // below this the ceiling dose applies
	ceiling float64 // dt/ha

	bandLo, bandHi float64 // shallow segment, exclusive bounds
	bandSlope      float64
	bandIntercept  float64

	zeroAbove float64 // strictly above this the dose is zero

	steepSlope     float64
	steepIntercept float64

	optimalPh float64 // pH at which the curve reaches zero
}

func (c vdlufaCurve) dose(ph float64) float64 {
	switch {
	case ph < c.floorPh:
		return c.ceiling
	case ph > c.bandLo && ph < c.bandHi:
		return c.bandSlope*ph + c.bandIntercept
	case ph > c.zeroAbove:
		return 0
	default:
		return c.steepSlope*ph + c.steepIntercept
	}
}

// vdlufaCurves holds the published VDLUFA dose curves per crop category
// and texture class. The constants are reference data; they are
// tabulated literally, never recomputed.
var vdlufaCurves = map[models.CropCategory]map[texture.VDLUFATexture]vdlufaCurve{
	models.CropStandard: {
		texture.VDLUFASand: {
			floorPh: 4.0, ceiling: 45.0,
			bandLo: 5.3, bandHi: 5.9, bandSlope: -11.852, bandIntercept: 69.93,
			zeroAbove: 5.8, steepSlope: -28.945, steepIntercept: 160.52,
			optimalPh: 5.9,
		},
		texture.VDLUFAWeakLoamySand: {
			floorPh: 4.0, ceiling: 77.0,
			bandLo: 5.7, bandHi: 6.4, bandSlope: -16.667, bandIntercept: 106.67,
			zeroAbove: 6.3, steepSlope: -38.71, steepIntercept: 231.47,
			optimalPh: 6.4,
		},
		texture.VDLUFALoamySand: {
			floorPh: 4.0, ceiling: 87.0,
			bandLo: 6.0, bandHi: 6.8, bandSlope: -20.0, bandIntercept: 136.0,
			zeroAbove: 6.7, steepSlope: -47.912, steepIntercept: 302.54,
			optimalPh: 6.8,
		},
		texture.VDLUFASandySiltLoam: {
			floorPh: 4.0, ceiling: 117.0,
			bandLo: 6.2, bandHi: 7.1, bandSlope: -21.25, bandIntercept: 150.87,
			zeroAbove: 7.0, steepSlope: -58.122, steepIntercept: 378.54,
			optimalPh: 7.1,
		},
		texture.VDLUFAClayLoam: {
			floorPh: 4.0, ceiling: 160.0,
			bandLo: 6.3, bandHi: 7.3, bandSlope: -22.222, bandIntercept: 162.22,
			zeroAbove: 6.3, steepSlope: -76.93, steepIntercept: 505.53,
			optimalPh: 7.3,
		},
	},
	models.CropOther: {
		texture.VDLUFASand: {
			floorPh: 3.4, ceiling: 50.0,
			bandLo: 4.6, bandHi: 5.2, bandSlope: -8.0, bandIntercept: 41.6,
			zeroAbove: 5.1, steepSlope: -37.692, steepIntercept: 178.46,
			optimalPh: 5.1,
		},
		texture.VDLUFAWeakLoamySand: {
			floorPh: 3.3, ceiling: 83.0,
			bandLo: 4.9, bandHi: 5.6, bandSlope: -13.333, bandIntercept: 74.667,
			zeroAbove: 5.5, steepSlope: -46.348, steepIntercept: 235.91,
			optimalPh: 5.5,
		},
		texture.VDLUFALoamySand: {
			floorPh: 3.8, ceiling: 90.0,
			bandLo: 5.1, bandHi: 5.9, bandSlope: -14.286, bandIntercept: 84.286,
			zeroAbove: 5.8, steepSlope: -60.989, steepIntercept: 322.04,
			optimalPh: 5.8,
		},
		texture.VDLUFASandySiltLoam: {
			floorPh: 3.8, ceiling: 109.0,
			bandLo: 5.3, bandHi: 6.2, bandSlope: -16.25, bandIntercept: 100.75,
			zeroAbove: 6.1, steepSlope: -63.309, steepIntercept: 349.87,
			optimalPh: 6.1,
		},
		texture.VDLUFAClayLoam: {
			floorPh: 3.8, ceiling: 121.0,
			bandLo: 5.4, bandHi: 6.4, bandSlope: -17.778, bandIntercept: 113.78,
			zeroAbove: 6.3, steepSlope: -65.0, steepIntercept: 368.24,
			optimalPh: 6.3,
		},
	},
}

// fallbackOptimalPh is used when a texture/category pair has no curve.
const fallbackOptimalPh = 6.5

// VDLUFADoseCaO returns the CaO-equivalent improvement dose in dt/ha for
// the given pH, texture class and crop category. Unknown combinations
// fall back to the conservative sand curve for standard crops and zero
// for other crops, mirroring the published tables' guidance.
func VDLUFADoseCaO(currentPh float64, tex texture.VDLUFATexture, crop models.CropCategory) float64 {
	curves, ok := vdlufaCurves[crop]
	if !ok {
		curves = vdlufaCurves[models.CropStandard]
	}
	if curve, ok := curves[tex]; ok {
		return curve.dose(currentPh)
	}
	if crop == models.CropOther {
		return 0
	}
	// Conservative sand-based estimate for unmapped textures.
	switch {
	case currentPh < 4.0:
		return 45.0
	case currentPh > 5.8:
		return 0
	default:
		return -28.945*currentPh + 160.52
	}
}

// VDLUFARequirement returns the improvement dose in kg/ha of the target
// lime product: the curve yields dt/ha CaO, converted to kg/ha (1 dt =
// 100 kg) and then into product units via the catalog factor.
func VDLUFARequirement(currentPh float64, tex texture.VDLUFATexture, crop models.CropCategory, product string) float64 {
	caoKgHa := VDLUFADoseCaO(currentPh, tex, crop) * 100
	return models.ConvertFromCaO(caoKgHa, product)
}

// VDLUFAOptimalPh returns the pH at which the dose curve reaches zero
// for a texture class and crop category.
func VDLUFAOptimalPh(tex texture.VDLUFATexture, crop models.CropCategory) float64 {
	curves, ok := vdlufaCurves[crop]
	if !ok {
		return fallbackOptimalPh
	}
	curve, ok := curves[tex]
	if !ok {
		return fallbackOptimalPh
	}
	return curve.optimalPh
}

// VDLUFAAchievedPh estimates the pH reached when only doseKgHa (in
// product units) of the full improvement requirement is applied, e.g.
// after a maximum-rate cap. The piecewise curve has no closed-form
// inverse from dose alone, so this is a proportional approximation: the
// achieved pH moves from currentPh toward the optimal pH by the fraction
// of the full requirement that was applied, clamped at 1. It is exact
// only where the curve is linear over the traversed range.
func VDLUFAAchievedPh(doseKgHa float64, tex texture.VDLUFATexture, crop models.CropCategory, product string, currentPh float64) float64 {
	if doseKgHa <= 0 {
		return currentPh
	}

	doseToOptimal := VDLUFARequirement(currentPh, tex, crop, product)
	if doseToOptimal <= 0 {
		// No lime was needed, so none was capped meaningfully.
		return currentPh
	}

	fraction := doseKgHa / doseToOptimal
	if fraction > 1 {
		fraction = 1
	}

	optimal := VDLUFAOptimalPh(tex, crop)
	return currentPh + fraction*(optimal-currentPh)
}
