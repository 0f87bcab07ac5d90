package models

// LimeProduct describes a liming product: the multiplier converting a
// CaO-equivalent mass into product mass, and the product's neutralizing
// value as a percentage relative to pure CaO.
type LimeProduct struct {
	Name   string  `json:"name"`
	Factor float64 `json:"factor"`
	NV     float64 `json:"nv"`
}

// CaCO3Factor converts between CaCO3 and CaO mass
// (CaCO3/CaO = 100.09/56.08).
const CaCO3Factor = 1.785

// limeProducts is the fixed product catalog. Factors are molar-mass
// ratios for the pure compounds and 100/NV for the proprietary blends.
var limeProducts = map[string]LimeProduct{
	"CaO":             {Name: "Pure Calcium Oxide", Factor: 1.0, NV: 179},
	"CaCO3":           {Name: "Calcium Carbonate", Factor: CaCO3Factor, NV: 100},
	"Ca(OH)2":         {Name: "Calcium Hydroxide", Factor: 1.321, NV: 135},
	"Quicklime":       {Name: "Quicklime", Factor: 1.0, NV: 179},
	"Slaked_lime":     {Name: "Slaked Lime", Factor: 1.321, NV: 135},
	"Agrocarb":        {Name: "Agrocarb", Factor: 2.381, NV: 42},
	"Omya_Calciprill": {Name: "Omya Calciprill", Factor: 1.887, NV: 53},
}

// ProductFor returns the catalog entry for a product identity. Unknown
// identities are treated as pure CaO (factor 1.0) rather than rejected,
// so prescriptions for unlisted blends still come out in a usable unit.
func ProductFor(identity string) LimeProduct {
	if p, ok := limeProducts[identity]; ok {
		return p
	}
	return LimeProduct{Name: identity, Factor: 1.0, NV: 100}
}

// ConvertFromCaO converts a CaO-equivalent dose (kg/ha) into the units of
// the target product.
func ConvertFromCaO(caoKgHa float64, identity string) float64 {
	return caoKgHa * ProductFor(identity).Factor
}

// LimeProducts returns a copy of the product catalog for informational
// endpoints.
func LimeProducts() map[string]LimeProduct {
	out := make(map[string]LimeProduct, len(limeProducts))
	for k, v := range limeProducts {
		out[k] = v
	}
	return out
}
