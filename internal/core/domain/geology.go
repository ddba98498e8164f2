package domain

// UnitInput is a geological unit assembled from a described survey point,
// before classification. Coordinates is the point sequence the unit covers;
// in the current design each described point yields a one-point unit.
type UnitInput struct {
	Type        string       `json:"type"`
	Coordinates []Coordinate `json:"coordinates"`
	Description string       `json:"description"`
}

// MappingInput is the survey data handed to the processor.
type MappingInput struct {
	SurveyID    string       `json:"survey_id"`
	Coordinates []Coordinate `json:"coordinates"`
	Units       []UnitInput  `json:"units"`
}

// UnitProperties is the knowledge-base classification attached to a unit.
// Classification is "rock", "mineral", or "unknown"; Data carries the matched
// record, or just the name when nothing matched.
type UnitProperties struct {
	Classification RecordKind `json:"classification"`
	Data           Record     `json:"data"`
}

// GeologicalUnit is a classified zone derived from one annotated survey point.
type GeologicalUnit struct {
	Type        string         `json:"type"`
	Coordinates []Coordinate   `json:"coordinates"`
	Properties  UnitProperties `json:"properties"`
	Description string         `json:"description"`
}

// Boundary is an inferred contact between two adjacent units, traced by a
// linearly interpolated path.
type Boundary struct {
	Type        string       `json:"type"` // always "contact"
	Between     [2]string    `json:"between"`
	Coordinates []Coordinate `json:"coordinates"`
}

// StructuralFeature is a detected geological anomaly. Currently only faults,
// located by elevation discontinuity along the traverse.
type StructuralFeature struct {
	Type         string       `json:"type"` // always "fault"
	Coordinates  []Coordinate `json:"coordinates"`
	Displacement float64      `json:"displacement"` // meters
}

// ProcessedMap is the structured map model derived from a survey. Derived
// entities are recomputed on every request and never persisted on their own.
type ProcessedMap struct {
	SurveyID           string              `json:"survey_id"`
	Units              []GeologicalUnit    `json:"units"`
	Boundaries         []Boundary          `json:"boundaries"`
	StructuralFeatures []StructuralFeature `json:"structural_features"`
	Coordinates        []Coordinate        `json:"coordinates"`
}
