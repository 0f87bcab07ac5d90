package calculator

// The CEC method sizes the lime dose from the soil's cation exchange
// capacity instead of empirical texture curves. The buffering factor K
// converts one unit of pH change into kg/ha of neutralizing product:
//
//	K = ((CEC * 150 / 3500) * fineDrySoil) / (NV * 10) / 0.5
//
// with CEC in meq/100g, fineDrySoil in t/ha and NV the neutralizing
// value of the product relative to CaO.

// cecBufferFactor returns K for one tonne-step of dose.
func cecBufferFactor(cec, fineDrySoil, nv float64) float64 {
	return ((cec * 150 / 3500) * fineDrySoil) / (nv * 10) / 0.5
}

// CECRequirement returns the lime dose in kg/ha of product needed to
// raise the soil from currentPh to targetPh. Zero when the soil is
// already at or above target; never negative.
func CECRequirement(currentPh, targetPh, cec, fineDrySoil, nv, dose float64) float64 {
	if currentPh >= targetPh {
		return 0
	}
	k := cecBufferFactor(cec, fineDrySoil, nv)
	req := k * (targetPh - currentPh) * dose * 1000
	if req < 0 {
		return 0
	}
	return req
}

// SCecToPh maps a base-saturation percentage (S/CEC) onto an equivalent
// pH using a two-segment linear blend: 0-50% spans pH 4.5-6.5 and
// 50-100% spans pH 6.5-8.0.
func SCecToPh(sCecPercent float64) float64 {
	if sCecPercent <= 50 {
		return 4.5 + (sCecPercent/50)*2.0
	}
	return 6.5 + ((sCecPercent-50)/50)*1.5
}

// CECRequirementWithSCec blends the measured pH with the pH implied by
// the modified S/CEC percentage: when the average of the two is already
// above target no lime is prescribed, otherwise the result is the mean
// of the doses computed from each pH independently.
func CECRequirementWithSCec(currentPh, targetPh, cec, fineDrySoil, nv, dose, modifiedSCec float64) float64 {
	derivedPh := SCecToPh(modifiedSCec)
	if (currentPh+derivedPh)/2 > targetPh {
		return 0
	}
	fromMeasured := CECRequirement(currentPh, targetPh, cec, fineDrySoil, nv, dose)
	fromDerived := CECRequirement(derivedPh, targetPh, cec, fineDrySoil, nv, dose)
	return (fromMeasured + fromDerived) / 2
}

// CECAchievedPh inverts the requirement formula: given a (possibly
// capped) dose in kg/ha it returns the pH the soil reaches. Degenerate
// inputs that would zero the denominator return currentPh unchanged.
func CECAchievedPh(limeKgHa, currentPh, cec, fineDrySoil, nv, dose float64) float64 {
	if limeKgHa <= 0 || cec <= 0 || fineDrySoil <= 0 || nv <= 0 || dose <= 0 {
		return currentPh
	}
	k := cecBufferFactor(cec, fineDrySoil, nv) * 1000
	if k <= 0 {
		return currentPh
	}
	return currentPh + limeKgHa/(k*dose)
}
