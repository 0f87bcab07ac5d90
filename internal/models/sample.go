package models

// SoilSample is one soil measurement submitted for prescription
// calculation. Samples are immutable inputs; the engine never mutates
// them. All nullable fields use pointers to distinguish between zero
// values and absent data, except Geometry which is nil when no boundary
// was supplied.
type SoilSample struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name,omitempty"`
	FieldID     string    `json:"field_id,omitempty"`
	FieldName   string    `json:"field_name,omitempty"`
	ZoneName    string    `json:"zone_name,omitempty"`
	Area        *float64  `json:"area,omitempty"` // hectares
	Ph          *float64  `json:"ph_value,omitempty"`
	SoilTexture string    `json:"soil_texture,omitempty"` // raw, vocabulary unspecified
	HumusLevel  *float64  `json:"humus_level,omitempty"`
	Boundary    *Geometry `json:"boundary,omitempty"`
}
