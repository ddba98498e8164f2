package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RecordKind distinguishes the two knowledge-base collections.
type RecordKind string

const (
	KindMineral RecordKind = "mineral"
	KindRock    RecordKind = "rock"
	KindUnknown RecordKind = "unknown"
)

// Record is one knowledge-base entry. Only the name is structural; the rest
// is a free-form property set that varies between datasets.
type Record map[string]any

// Name returns the record's name property, or "" when absent.
func (r Record) Name() string {
	s, _ := r["name"].(string)
	return s
}

// NameEquals reports whether the record's name matches, case-insensitively.
func (r Record) NameEquals(name string) bool {
	return strings.EqualFold(r.Name(), name)
}

// MatchesProperty reports whether the record has the property and its value,
// rendered as a string, contains the query case-insensitively.
func (r Record) MatchesProperty(property, value string) bool {
	v, ok := r[property]
	if !ok {
		return false
	}
	return strings.Contains(
		strings.ToLower(fmt.Sprintf("%v", v)),
		strings.ToLower(value),
	)
}

// JSON renders the record as a compact JSON string, or "{}" when marshaling
// fails.
func (r Record) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// TypeDetails pairs a classified kind with its knowledge-base record.
type TypeDetails struct {
	Kind RecordKind `json:"type"`
	Data Record     `json:"data"`
}
