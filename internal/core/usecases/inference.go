package usecases

import "strings"

// keywordRule matches when the lower-cased text contains the single keyword,
// or contains both conjunction terms. Either side may be absent.
type keywordRule struct {
	label   string
	keyword string
	both    [2]string
}

func (r keywordRule) matches(text string) bool {
	if r.keyword != "" && strings.Contains(text, r.keyword) {
		return true
	}
	if r.both[0] != "" &&
		strings.Contains(text, r.both[0]) && strings.Contains(text, r.both[1]) {
		return true
	}
	return false
}

// KeywordClassifier infers a rock/mineral label from free text by applying an
// ordered rule list; the first matching rule wins. It is a deliberate
// placeholder for a trained model: no scoring, no partial matches, no
// confidence value.
type KeywordClassifier struct {
	rules []keywordRule
}

// NewKeywordClassifier builds the classifier with the default rule set.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		rules: []keywordRule{
			{label: "Granite", keyword: "granite", both: [2]string{"coarse", "feldspar"}},
			{label: "Basalt", keyword: "basalt", both: [2]string{"fine", "volcanic"}},
			{label: "Quartz", both: [2]string{"quartz", "clear"}},
			{label: "Limestone", keyword: "limestone", both: [2]string{"reacts", "acid"}},
		},
	}
}

// Classify returns the label of the first rule satisfied by the text, or
// ok=false when no rule applies.
func (c *KeywordClassifier) Classify(text string) (string, bool) {
	text = strings.ToLower(text)
	for _, r := range c.rules {
		if r.matches(text) {
			return r.label, true
		}
	}
	return "", false
}
