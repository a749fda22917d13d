package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var markerPattern = regexp.MustCompile(`\[PH(\d+)\]`)

// Protect replaces each .NET, printf and template placeholder in text with a
// numbered marker ([PH0], [PH1], ...) so a machine translation provider
// cannot alter it. ICU messages stay in place because their category bodies
// still need translating; placeholders inside them are protected
// individually. It returns the protected text and the originals in marker
// order for Restore.
func (d *Detector) Protect(text string) (string, []string) {
	var markers []string
	runes := []rune(text)

	var b strings.Builder
	last := 0
	for _, p := range d.DetectPlaceholders(text) {
		if p.Type == IcuMessageFormat || p.Position < last {
			continue
		}
		b.WriteString(string(runes[last:p.Position]))
		fmt.Fprintf(&b, "[PH%d]", len(markers))
		markers = append(markers, p.Original)
		last = p.Position + len([]rune(p.Original))
	}
	if len(markers) == 0 {
		return text, nil
	}
	b.WriteString(string(runes[last:]))
	return b.String(), markers
}

// Protect uses a detector for every family.
func Protect(text string) (string, []string) {
	return defaultDetector.Protect(text)
}

// Restore substitutes [PHn] markers in text back with the originals captured
// by Protect. Unknown indices are left as they are.
func Restore(text string, markers []string) string {
	return markerPattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := markerPattern.FindStringSubmatch(match)
		idx, err := strconv.Atoi(sub[1])
		if err != nil || idx >= len(markers) {
			return match
		}
		return markers[idx]
	})
}

// MissingMarkers returns the marker indices from want that are absent from
// text.
func MissingMarkers(text string, want []int) []int {
	var missing []int
	for _, idx := range want {
		if !strings.Contains(text, fmt.Sprintf("[PH%d]", idx)) {
			missing = append(missing, idx)
		}
	}
	return missing
}

// MarkerIndices returns the distinct marker indices in text, in order of
// first appearance.
func MarkerIndices(text string) []int {
	var out []int
	seen := map[int]bool{}
	for _, sub := range markerPattern.FindAllStringSubmatch(text, -1) {
		idx, err := strconv.Atoi(sub[1])
		if err != nil || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	return out
}

// InstructionHint is appended to LLM prompts when text carries markers.
func InstructionHint() string {
	return "Keep every [PHn] marker exactly as written. Do not translate or drop them."
}
