// Package detector guesses the natural language of resource values.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// MinCheckLength is the minimum rune count for which Check gives a verdict.
// Shorter values ("OK", "Cancel") are detected unreliably.
const MinCheckLength = 20

// Detector wraps a lingua language detector. Building one is expensive;
// share the instance.
type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector for the given languages, or for every language
// lingua knows when none are given.
func New(langs ...lingua.Language) *Detector {
	builder := lingua.NewLanguageDetectorBuilder()
	if len(langs) >= 2 {
		return &Detector{detector: builder.FromLanguages(langs...).Build()}
	}
	return &Detector{detector: builder.FromAllLanguages().Build()}
}

// ForCodes builds a detector restricted to ISO 639-1 codes such as "en" or
// "fr-CA". Unknown codes are ignored.
func ForCodes(codes ...string) *Detector {
	var langs []lingua.Language
	for _, c := range codes {
		iso := lingua.GetIsoCode639_1FromValue(strings.ToUpper(baseCode(c)))
		if iso == lingua.UnknownIsoCode639_1 {
			continue
		}
		langs = append(langs, lingua.GetLanguageFromIsoCode639_1(iso))
	}
	return New(langs...)
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the upper-case ISO 639-1 code of text.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}

// Check reports the detected language of text when it confidently differs
// from the culture code; mismatch is false for short or ambiguous texts.
func (d *Detector) Check(text, code string) (detected string, mismatch bool) {
	text = strings.TrimSpace(text)
	if code == "" || len([]rune(text)) < MinCheckLength {
		return "", false
	}
	iso, ok := d.DetectISO(text)
	if !ok {
		return "", false
	}
	if strings.EqualFold(iso, baseCode(code)) {
		return strings.ToLower(iso), false
	}
	return strings.ToLower(iso), true
}

// baseCode strips the region or script: "fr-CA" becomes "fr".
func baseCode(code string) string {
	if i := strings.IndexAny(code, "-_"); i > 0 {
		return code[:i]
	}
	return code
}
