// Package placeholder finds interpolation placeholders in localized strings
// and checks that a translation carries the same placeholders as its source.
//
// Four syntax families are recognised:
//
//	{0} {0:C2} {name:fmt}           DotNetFormat
//	%s %1$s %10.2f                  PrintfStyle
//	{count, plural, one {...} ...}  IcuMessageFormat
//	${user.name}                    TemplateLiteral
//
// Malformed or ambiguous syntax is never an error; it is simply not reported.
package placeholder

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// Type identifies a placeholder syntax family. The declaration order is also
// the tie-break order when two placeholders start at the same position.
type Type int

const (
	DotNetFormat Type = iota
	PrintfStyle
	IcuMessageFormat
	TemplateLiteral
)

var typeNames = [...]string{"DotNetFormat", "PrintfStyle", "IcuMessageFormat", "TemplateLiteral"}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseType accepts either the family name ("DotNetFormat") or its short
// alias ("dotnet", "printf", "icu", "template"), case-insensitively.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dotnetformat", "dotnet", "net":
		return DotNetFormat, nil
	case "printfstyle", "printf":
		return PrintfStyle, nil
	case "icumessageformat", "icu":
		return IcuMessageFormat, nil
	case "templateliteral", "template":
		return TemplateLiteral, nil
	}
	return 0, fmt.Errorf("unknown placeholder type %q", s)
}

// TypeSet is a set of enabled placeholder families.
type TypeSet uint8

// AllTypes enables every family.
const AllTypes = TypeSet(1<<DotNetFormat | 1<<PrintfStyle | 1<<IcuMessageFormat | 1<<TemplateLiteral)

func NewTypeSet(types ...Type) TypeSet {
	var s TypeSet
	for _, t := range types {
		s |= 1 << t
	}
	return s
}

// ParseTypeSet parses a list of family names. An empty list means AllTypes.
func ParseTypeSet(names []string) (TypeSet, error) {
	if len(names) == 0 {
		return AllTypes, nil
	}
	var s TypeSet
	for _, n := range names {
		t, err := ParseType(n)
		if err != nil {
			return 0, err
		}
		s |= 1 << t
	}
	return s, nil
}

func (s TypeSet) Has(t Type) bool {
	return s&(1<<t) != 0
}

func (s TypeSet) Types() []Type {
	var out []Type
	for t := DotNetFormat; t <= TemplateLiteral; t++ {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// Placeholder is one occurrence found in a text. Position is the character
// (rune) offset of the first character of Original.
type Placeholder struct {
	Type     Type   `json:"type"`
	Original string `json:"original"`
	Index    string `json:"index,omitempty"`
	Name     string `json:"name,omitempty"`
	Format   string `json:"format,omitempty"`
	Position int    `json:"position"`
}

// matchTimeout bounds a single match attempt of any pattern below.
const matchTimeout = 250 * time.Millisecond

var (
	dotNetPattern = compile(`\{(?<head>[0-9]+|[\p{L}_][\p{L}\p{Nd}_.]*)(?:\s*,\s*-?[0-9]+)?(?::(?<format>[^{}]*))?\}`)

	printfPattern = compile(`%(?:(?<index>[1-9][0-9]*)\$)?[-+0#']*(?:[0-9]+|\*)?(?:\.(?:[0-9]+|\*))?(?:hh|h|ll|l|L|q|j|z|t)?(?<conv>[diouxXeEfFgGaAcsSp@])`)

	icuHeadPattern = compile(`\{\s*(?<name>[0-9]+|[\p{L}_][\p{L}\p{Nd}_]*)\s*,\s*(?<keyword>plural|selectordinal|select|number|date|time|spellout|ordinal|duration)\s*(?=[,}])`)

	templatePattern = compile(`\$\{\s*(?<path>[\p{L}_$][\p{L}\p{Nd}_$]*(?:\.[\p{L}_$][\p{L}\p{Nd}_$]*)*)\s*\}`)
)

func compile(expr string) *regexp2.Regexp {
	re := regexp2.MustCompile(expr, regexp2.None)
	re.MatchTimeout = matchTimeout
	return re
}

// Detector finds placeholders of the enabled families. A Detector holds no
// mutable state and is safe for concurrent use.
type Detector struct {
	types TypeSet
}

type Option func(*Detector)

// WithTypes restricts detection to the given families.
func WithTypes(types ...Type) Option {
	return func(d *Detector) {
		d.types = NewTypeSet(types...)
	}
}

// WithTypeSet is WithTypes for an already built set.
func WithTypeSet(s TypeSet) Option {
	return func(d *Detector) {
		d.types = s
	}
}

func NewDetector(opts ...Option) *Detector {
	d := &Detector{types: AllTypes}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDetector = NewDetector()

// DetectPlaceholders finds placeholders of every family in text.
func DetectPlaceholders(text string) []Placeholder {
	return defaultDetector.DetectPlaceholders(text)
}

// Types reports the families this detector recognises.
func (d *Detector) Types() TypeSet {
	return d.types
}

// DetectPlaceholders returns the placeholders in text ordered by Position.
func (d *Detector) DetectPlaceholders(text string) []Placeholder {
	found := make([]Placeholder, 0)
	if text == "" {
		return found
	}

	runes := []rune(text)
	templates := scanTemplates(runes)

	found = append(found, d.scanBraces(runes, 0, matchBraces(runes), templateSpans(templates))...)
	if d.types.Has(PrintfStyle) {
		found = append(found, scanPrintf(runes)...)
	}
	if d.types.Has(TemplateLiteral) {
		found = append(found, templates...)
	}

	slices.SortStableFunc(found, func(a, b Placeholder) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.Type, b.Type)
	})
	return found
}

// GetNormalizedIdentifier returns the key used to pair placeholders across
// strings: Index, else Name, else Format, else "".
func GetNormalizedIdentifier(p Placeholder) string {
	switch {
	case p.Index != "":
		return p.Index
	case p.Name != "":
		return p.Name
	default:
		return p.Format
	}
}

type span struct {
	start, end int // [start, end) in runes of the full text
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

func overlapsAny(s span, others []span) bool {
	for _, o := range others {
		if s.overlaps(o) {
			return true
		}
	}
	return false
}

func templateSpans(ps []Placeholder) []span {
	spans := make([]span, 0, len(ps))
	for _, p := range ps {
		spans = append(spans, span{p.Position, p.Position + len([]rune(p.Original))})
	}
	return spans
}

// scanBraces handles the two brace families over runes, which starts at
// offset in the full text. ICU category bodies are scanned recursively so
// that placeholders nested in plural or select branches are found too.
// closeAt is matchBraces of the full text.
func (d *Detector) scanBraces(runes []rune, offset int, closeAt []int, exclude []span) []Placeholder {
	var out []Placeholder

	messages := scanICU(runes, offset, closeAt)
	for _, m := range messages {
		if d.types.Has(IcuMessageFormat) {
			out = append(out, m.placeholder)
		}
		for _, body := range m.bodies {
			out = append(out, d.scanBraces(runes[body.start-offset:body.end-offset], body.start, closeAt, exclude)...)
		}
	}

	if d.types.Has(DotNetFormat) {
		// Only the text between messages; their bodies were scanned above.
		from := 0
		for _, m := range messages {
			out = append(out, scanDotNet(runes[from:m.span.start-offset], offset+from, exclude)...)
			from = m.span.end - offset
		}
		out = append(out, scanDotNet(runes[from:], offset+from, exclude)...)
	}
	return out
}

func scanDotNet(runes []rune, offset int, exclude []span) []Placeholder {
	var out []Placeholder
	m, err := dotNetPattern.FindRunesMatch(runes)
	for ; err == nil && m != nil; m, err = dotNetPattern.FindNextMatch(m) {
		// "{{" is a literal brace, so an odd run of braces before the match escapes it.
		if precedingRun(runes, m.Index, '{')%2 == 1 {
			continue
		}
		s := span{offset + m.Index, offset + m.Index + m.Length}
		if overlapsAny(s, exclude) {
			continue
		}
		p := Placeholder{
			Type:     DotNetFormat,
			Original: m.String(),
			Format:   group(m, "format"),
			Position: s.start,
		}
		setIndexOrName(&p, group(m, "head"))
		out = append(out, p)
	}
	return out
}

func scanPrintf(runes []rune) []Placeholder {
	var out []Placeholder
	m, err := printfPattern.FindRunesMatch(runes)
	for ; err == nil && m != nil; m, err = printfPattern.FindNextMatch(m) {
		if precedingRun(runes, m.Index, '%')%2 == 1 {
			continue
		}
		out = append(out, Placeholder{
			Type:     PrintfStyle,
			Original: m.String(),
			Index:    group(m, "index"),
			Format:   group(m, "conv"),
			Position: m.Index,
		})
	}
	return out
}

func scanTemplates(runes []rune) []Placeholder {
	var out []Placeholder
	m, err := templatePattern.FindRunesMatch(runes)
	for ; err == nil && m != nil; m, err = templatePattern.FindNextMatch(m) {
		out = append(out, Placeholder{
			Type:     TemplateLiteral,
			Original: m.String(),
			Name:     group(m, "path"),
			Position: m.Index,
		})
	}
	return out
}

type icuMessage struct {
	placeholder Placeholder
	span        span
	bodies      []span // category bodies without their delimiting braces
}

func scanICU(runes []rune, offset int, closeAt []int) []icuMessage {
	var out []icuMessage
	start := 0
	for start < len(runes) {
		m, err := icuHeadPattern.FindRunesMatchStartingAt(runes, start)
		if err != nil || m == nil {
			break
		}
		if precedingRun(runes, m.Index, '{')%2 == 1 || closeAt[offset+m.Index] < 0 {
			start = m.Index + 1
			continue
		}
		end := closeAt[offset+m.Index] - offset

		p := Placeholder{
			Type:     IcuMessageFormat,
			Original: string(runes[m.Index : end+1]),
			Format:   group(m, "keyword"),
			Position: offset + m.Index,
		}
		setIndexOrName(&p, group(m, "name"))

		var bodies []span
		for _, b := range categoryBodies(runes, offset, closeAt, m.Index+m.Length, end) {
			bodies = append(bodies, span{offset + b.start, offset + b.end})
		}

		out = append(out, icuMessage{
			placeholder: p,
			span:        span{offset + m.Index, offset + end + 1},
			bodies:      bodies,
		})
		start = end + 1
	}
	return out
}

// matchBraces pairs every '{' in runes with the '}' that balances it in one
// pass. closeAt[i] is that index, or -1 for unbalanced braces and other runes.
func matchBraces(runes []rune) []int {
	closeAt := make([]int, len(runes))
	var open []int
	for i, r := range runes {
		closeAt[i] = -1
		switch r {
		case '{':
			open = append(open, i)
		case '}':
			if n := len(open); n > 0 {
				closeAt[open[n-1]] = i
				open = open[:n-1]
			}
		}
	}
	return closeAt
}

// categoryBodies returns the top-level {...} groups between from and the
// message's closing brace at end, as spans relative to runes.
func categoryBodies(runes []rune, offset int, closeAt []int, from, end int) []span {
	var bodies []span
	for i := from; i < end; i++ {
		if runes[i] != '{' {
			continue
		}
		c := closeAt[offset+i] - offset
		if c < i || c > end {
			continue
		}
		bodies = append(bodies, span{i + 1, c})
		i = c
	}
	return bodies
}

func precedingRun(runes []rune, at int, r rune) int {
	n := 0
	for i := at - 1; i >= 0 && runes[i] == r; i-- {
		n++
	}
	return n
}

func setIndexOrName(p *Placeholder, head string) {
	if isDigits(head) {
		p.Index = head
	} else {
		p.Name = head
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func group(m *regexp2.Match, name string) string {
	g := m.GroupByName(name)
	if g == nil || len(g.Captures) == 0 {
		return ""
	}
	return g.String()
}
