package placeholder

import (
	"fmt"
	"strings"
)

const validSummary = "All placeholders valid"

// ValidationResult is the outcome of comparing the placeholders of a source
// string with those of its translation.
type ValidationResult struct {
	IsValid             bool          `json:"isValid"`
	Errors              []string      `json:"errors"`
	MissingPlaceholders []Placeholder `json:"missingPlaceholders"`
	ExtraPlaceholders   []Placeholder `json:"extraPlaceholders"`
}

// Summary returns "All placeholders valid" or the errors joined by newlines.
func (r ValidationResult) Summary() string {
	if r.IsValid {
		return validSummary
	}
	return strings.Join(r.Errors, "\n")
}

// GetSummary is Summary as a function.
func GetSummary(r ValidationResult) string {
	return r.Summary()
}

// Pair is a source string and its translation.
type Pair struct {
	Source      string `json:"source"`
	Translation string `json:"translation"`
}

// Validator compares placeholder inventories using a Detector.
type Validator struct {
	det *Detector
}

// NewValidator returns a Validator backed by det, or by a detector for every
// family when det is nil.
func NewValidator(det *Detector) *Validator {
	if det == nil {
		det = defaultDetector
	}
	return &Validator{det: det}
}

var defaultValidator = NewValidator(nil)

// Validate compares source and translation with every family enabled.
func Validate(source, translation string) ValidationResult {
	return defaultValidator.Validate(source, translation)
}

// ValidateBatch validates every pair independently.
func ValidateBatch(pairs map[string]Pair) map[string]ValidationResult {
	return defaultValidator.ValidateBatch(pairs)
}

// Validate reports placeholders of source that the translation lost and
// placeholders the translation introduced. Placeholders are paired by
// normalized identifier, so order and format specifiers do not matter, but
// each occurrence counts.
func (v *Validator) Validate(source, translation string) ValidationResult {
	result := ValidationResult{
		Errors:              []string{},
		MissingPlaceholders: []Placeholder{},
		ExtraPlaceholders:   []Placeholder{},
	}
	if source == "" && translation == "" {
		result.IsValid = true
		return result
	}

	src := v.det.DetectPlaceholders(source)
	dst := v.det.DetectPlaceholders(translation)

	result.MissingPlaceholders = excess(src, countIdentifiers(dst))
	result.ExtraPlaceholders = excess(dst, countIdentifiers(src))

	for _, p := range result.MissingPlaceholders {
		result.Errors = append(result.Errors, "Missing placeholder: "+p.Original)
	}
	for _, p := range result.ExtraPlaceholders {
		result.Errors = append(result.Errors, "Extra placeholder not in source: "+p.Original)
	}
	if len(src) != len(dst) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Placeholder count mismatch: source has %d, translation has %d", len(src), len(dst)))
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// ValidateBatch validates every pair independently; the result has the same keys.
func (v *Validator) ValidateBatch(pairs map[string]Pair) map[string]ValidationResult {
	results := make(map[string]ValidationResult, len(pairs))
	for key, p := range pairs {
		results[key] = v.Validate(p.Source, p.Translation)
	}
	return results
}

func countIdentifiers(ps []Placeholder) map[string]int {
	counts := make(map[string]int, len(ps))
	for _, p := range ps {
		counts[GetNormalizedIdentifier(p)]++
	}
	return counts
}

// excess returns the occurrences in ps, in order, whose identifier appears
// more often in ps than available allows.
func excess(ps []Placeholder, available map[string]int) []Placeholder {
	out := []Placeholder{}
	seen := make(map[string]int, len(ps))
	for _, p := range ps {
		id := GetNormalizedIdentifier(p)
		seen[id]++
		if seen[id] > available[id] {
			out = append(out, p)
		}
	}
	return out
}
