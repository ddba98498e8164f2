package domain

// Description is a free-text field observation attached to a survey point.
// Immutable once created; InferredType is computed once at creation time and
// is not recomputed when classification rules change.
type Description struct {
	LocationIndex int    `json:"location_index"`
	Text          string `json:"text"`
	InferredType  string `json:"inferred_type,omitempty"`
}

// Survey is an ordered traverse of surveyed coordinates with appended
// descriptions. Identity is the ID, unique and stable once assigned.
type Survey struct {
	ID           string        `json:"id"`
	Coordinates  []Coordinate  `json:"coordinates"`
	Descriptions []Description `json:"descriptions"`
	Formation    string        `json:"formation,omitempty"`
	Date         string        `json:"date"`
}

// SurveyStats are derived traverse statistics.
type SurveyStats struct {
	SurveyID       string  `json:"survey_id"`
	Points         int     `json:"points"`
	Descriptions   int     `json:"descriptions"`
	TraverseMeters float64 `json:"traverse_meters"`
	MinElevation   float64 `json:"min_elevation"`
	MaxElevation   float64 `json:"max_elevation"`
}
