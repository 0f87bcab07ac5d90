package texture

import "strings"

// VDLUFATexture is the five-class soil texture vocabulary used by the
// empirical (VDLUFA) calculation method. The German class names are kept
// as-is because the published dose tables are keyed by them.
type VDLUFATexture string

const (
	VDLUFASand          VDLUFATexture = "Sand"
	VDLUFAWeakLoamySand VDLUFATexture = "Schwach Lehm Sand"
	VDLUFALoamySand     VDLUFATexture = "Stark Lehmiger Sand"
	VDLUFASandySiltLoam VDLUFATexture = "Sandiger Schl Lehm"
	VDLUFAClayLoam      VDLUFATexture = "Toniger Lehm b.Ton"
)

// VDLUFATextures lists every texture class of the empirical method.
var VDLUFATextures = []VDLUFATexture{
	VDLUFASand,
	VDLUFAWeakLoamySand,
	VDLUFALoamySand,
	VDLUFASandySiltLoam,
	VDLUFAClayLoam,
}

// USDATexture is the USDA-style soil texture vocabulary used by the CEC
// calculation method and by the exchange-capacity reference table.
type USDATexture string

const (
	USDASand          USDATexture = "Sand"
	USDALoamySand     USDATexture = "Loamy Sand"
	USDASandyLoam     USDATexture = "Sandy Loam"
	USDALoam          USDATexture = "Loam"
	USDASiltLoam      USDATexture = "Silt Loam"
	USDASilt          USDATexture = "Silt"
	USDASandyClayLoam USDATexture = "Sandy Clay Loam"
	USDAClayLoam      USDATexture = "Clay Loam"
	USDASandyClay     USDATexture = "Sandy Clay"
	USDASiltyClay     USDATexture = "Silty Clay"
	USDAClay          USDATexture = "Clay"
	USDASandySiltLoam USDATexture = "Sandy Silt Loam"
	USDAOrganic       USDATexture = "Organic"
)

// vdlufaMapping maps raw input texture strings (field-management API
// values, case variants and the VDLUFA names themselves) onto the
// empirical method's vocabulary. Entries mapping to "" are recognized
// inputs that have no usable VDLUFA class (bog soils).
var vdlufaMapping = map[string]VDLUFATexture{
	"Bog":                  "",
	"Clay":                 VDLUFAClayLoam,
	"Clayey loam":          VDLUFAClayLoam,
	"half-bog soil":        "",
	"loamy clay":           VDLUFAClayLoam,
	"sand":                 VDLUFASand,
	"sandy loam":           VDLUFASandySiltLoam,
	"silty clay":           VDLUFAClayLoam,
	"silty loam":           VDLUFALoamySand,
	"slightly clayey loam": VDLUFAClayLoam,
	"slightly loamy sand":  VDLUFAWeakLoamySand,
	"very loamy sand":      VDLUFALoamySand,
	"CLAY":                 VDLUFAClayLoam,
	"SANDY_LOAM":           VDLUFASandySiltLoam,
	"SILTY_LOAM":           VDLUFALoamySand,
	"SAND":                 VDLUFASand,
	"Sand":                 VDLUFASand,
	"Schwach Lehm Sand":    VDLUFAWeakLoamySand,
	"Stark Lehmiger Sand":  VDLUFALoamySand,
	"Sandiger Schl Lehm":   VDLUFASandySiltLoam,
	"Toniger Lehm b.Ton":   VDLUFAClayLoam,
}

// usdaMapping maps raw input texture strings (VDLUFA names, uppercase
// field-management API values, lowercase English names and the USDA names
// themselves) onto the USDA vocabulary.
var usdaMapping = map[string]USDATexture{
	// VDLUFA German classes
	"Sand":                USDASand,
	"Schwach Lehm Sand":   USDASandyLoam,
	"Stark Lehmiger Sand": USDALoamySand,
	"Sandiger Schl Lehm":  USDASandySiltLoam,
	"Toniger Lehm b.Ton":  USDAClayLoam,
	// uppercase API format
	"SAND":                 USDASand,
	"SLIGHTLY_LOAMY_SAND":  USDALoamySand,
	"VERY_LOAMY_SAND":      USDALoamySand,
	"SANDY_LOAM":           USDASandyLoam,
	"SILTY_LOAM":           USDASiltLoam,
	"CLAYEY_LOAM":          USDAClayLoam,
	"SLIGHTLY_CLAYEY_LOAM": USDAClayLoam,
	"LOAMY_CLAY":           USDAClayLoam,
	"SILTY_CLAY":           USDASiltyClay,
	"SANDY_CLAY":           USDASandyClay,
	"CLAY":                 USDAClay,
	"BOG":                  USDAOrganic,
	"HALF_BOG_SOIL":        USDAOrganic,
	// lowercase English
	"sand":                 USDASand,
	"clay":                 USDAClay,
	"clayey loam":          USDAClayLoam,
	"loamy clay":           USDAClayLoam,
	"sandy loam":           USDASandyLoam,
	"silty clay":           USDASiltyClay,
	"silty loam":           USDASiltLoam,
	"slightly loamy sand":  USDALoamySand,
	"very loamy sand":      USDALoamySand,
	"slightly clayey loam": USDAClayLoam,
	"sandy clay":           USDASandyClay,
	"sandy clay loam":      USDASandyClayLoam,
	"silt":                 USDASilt,
	"organic":              USDAOrganic,
	// USDA pass-through
	"Loamy Sand":      USDALoamySand,
	"Sandy Loam":      USDASandyLoam,
	"Sandy Silt Loam": USDASandySiltLoam,
	"Silt Loam":       USDASiltLoam,
	"Clay Loam":       USDAClayLoam,
	"Sandy Clay":      USDASandyClay,
	"Silty Clay":      USDASiltyClay,
	"Sandy Clay Loam": USDASandyClayLoam,
	"Loam":            USDALoam,
	"Silt":            USDASilt,
	"Organic":         USDAOrganic,
}

// ResolveVDLUFA maps a raw texture string onto the empirical method's
// vocabulary. Resolution order: exact match, uppercase match, keyword
// heuristics. The second return value is false only when the input is
// empty or a recognized class with no VDLUFA equivalent; an unknown but
// non-empty string always degrades to a keyword-derived guess so a missing
// mapping never blocks a prescription.
func ResolveVDLUFA(raw string) (VDLUFATexture, bool) {
	if raw == "" {
		return "", false
	}

	if mapped, ok := vdlufaMapping[raw]; ok {
		return mapped, mapped != ""
	}
	if mapped, ok := vdlufaMapping[strings.ToUpper(raw)]; ok {
		return mapped, mapped != ""
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "sand"):
		if strings.Contains(lower, "loam") {
			return VDLUFAWeakLoamySand, true
		}
		return VDLUFASand, true
	case strings.Contains(lower, "clay"):
		return VDLUFAClayLoam, true
	case strings.Contains(lower, "loam"), strings.Contains(lower, "lehm"):
		return VDLUFALoamySand, true
	case strings.Contains(lower, "silt"):
		return VDLUFASandySiltLoam, true
	}

	return "", false
}

// ResolveUSDA maps a raw texture string onto the USDA vocabulary used by
// the CEC method. Unmapped non-empty strings fall back to keyword
// heuristics; as a last resort the raw string is passed through unchanged
// since it may already be a USDA name the reference table knows.
func ResolveUSDA(raw string) (USDATexture, bool) {
	if raw == "" {
		return "", false
	}

	if mapped, ok := usdaMapping[raw]; ok {
		return mapped, true
	}
	if mapped, ok := usdaMapping[strings.ToUpper(raw)]; ok {
		return mapped, true
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "sandy clay loam"):
		return USDASandyClayLoam, true
	case strings.Contains(lower, "clay loam"):
		return USDAClayLoam, true
	case strings.Contains(lower, "silty clay"):
		return USDASiltyClay, true
	case strings.Contains(lower, "sandy clay"):
		return USDASandyClay, true
	case strings.Contains(lower, "clay"):
		return USDAClay, true
	case strings.Contains(lower, "silt loam"):
		return USDASiltLoam, true
	case strings.Contains(lower, "loamy sand"):
		return USDALoamySand, true
	case strings.Contains(lower, "sandy loam"):
		return USDASandyLoam, true
	case strings.Contains(lower, "sand"):
		return USDASand, true
	case strings.Contains(lower, "loam"), strings.Contains(lower, "lehm"):
		return USDALoam, true
	case strings.Contains(lower, "silt"):
		return USDASilt, true
	case strings.Contains(lower, "organic"):
		return USDAOrganic, true
	}

	// Might already be a USDA name the CEC table recognizes.
	return USDATexture(raw), true
}
