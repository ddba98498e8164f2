package usecases

import "testing"

func TestKeywordClassifier(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		name  string
		text  string
		want  string
		match bool
	}{
		{"granite keyword", "large granite outcrop by the ridge", "Granite", true},
		{"granite conjunction", "coarse grained rock with visible feldspar", "Granite", true},
		{"basalt keyword", "columnar basalt flows", "Basalt", true},
		{"basalt conjunction", "fine grained volcanic rock", "Basalt", true},
		{"quartz conjunction", "clear quartz veins in the outcrop", "Quartz", true},
		{"quartz alone does not match", "quartz veins in the outcrop", "", false},
		{"limestone keyword", "massive limestone beds", "Limestone", true},
		{"limestone conjunction", "pale rock that reacts with dilute acid", "Limestone", true},
		{"case insensitive", "GRANITE BOULDER", "Granite", true},
		{"no match", "muddy soil near the river", "", false},
		{"empty text", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Classify(tt.text)
			if ok != tt.match {
				t.Fatalf("Classify(%q) matched=%v, want %v", tt.text, ok, tt.match)
			}
			if got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestKeywordClassifier_RuleOrder(t *testing.T) {
	c := NewKeywordClassifier()

	// Text satisfying both the granite and basalt rules resolves to the
	// earlier rule.
	got, ok := c.Classify("granite next to a basalt dike")
	if !ok || got != "Granite" {
		t.Errorf("expected Granite from first matching rule, got %q (ok=%v)", got, ok)
	}

	// Conjunction terms may straddle the whole description.
	got, ok = c.Classify("the sample is clear in places, mostly quartz")
	if !ok || got != "Quartz" {
		t.Errorf("expected Quartz, got %q (ok=%v)", got, ok)
	}
}
