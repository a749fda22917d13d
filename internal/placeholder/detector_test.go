package placeholder

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPlaceholders_Empty(t *testing.T) {
	assert.Empty(t, DetectPlaceholders(""))
	assert.NotNil(t, DetectPlaceholders(""))
	assert.Empty(t, DetectPlaceholders("This is a plain text with no placeholders."))
}

func TestDetectPlaceholders_Families(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Placeholder
	}{
		{
			name: "dotnet indexed",
			text: "Hello {0}!",
			want: []Placeholder{{Type: DotNetFormat, Original: "{0}", Index: "0", Position: 6}},
		},
		{
			name: "dotnet indexed with format",
			text: "Price: {0:C2}",
			want: []Placeholder{{Type: DotNetFormat, Original: "{0:C2}", Index: "0", Format: "C2", Position: 7}},
		},
		{
			name: "dotnet named",
			text: "Hello {name}!",
			want: []Placeholder{{Type: DotNetFormat, Original: "{name}", Name: "name", Position: 6}},
		},
		{
			name: "dotnet named with format",
			text: "Date: {date:yyyy-MM-dd}",
			want: []Placeholder{{Type: DotNetFormat, Original: "{date:yyyy-MM-dd}", Name: "date", Format: "yyyy-MM-dd", Position: 6}},
		},
		{
			name: "dotnet empty format is absent",
			text: "{1:}",
			want: []Placeholder{{Type: DotNetFormat, Original: "{1:}", Index: "1", Position: 0}},
		},
		{
			name: "dotnet alignment",
			text: "[{0,-10}]",
			want: []Placeholder{{Type: DotNetFormat, Original: "{0,-10}", Index: "0", Position: 1}},
		},
		{
			name: "dotnet dotted name",
			text: "{user.name}",
			want: []Placeholder{{Type: DotNetFormat, Original: "{user.name}", Name: "user.name", Position: 0}},
		},
		{
			name: "printf string",
			text: "Hello %s!",
			want: []Placeholder{{Type: PrintfStyle, Original: "%s", Format: "s", Position: 6}},
		},
		{
			name: "printf positional",
			text: "Hello %1$s, you have %2$d items",
			want: []Placeholder{
				{Type: PrintfStyle, Original: "%1$s", Index: "1", Format: "s", Position: 6},
				{Type: PrintfStyle, Original: "%2$d", Index: "2", Format: "d", Position: 21},
			},
		},
		{
			name: "printf width and precision",
			text: "Value: %10.2f",
			want: []Placeholder{{Type: PrintfStyle, Original: "%10.2f", Format: "f", Position: 7}},
		},
		{
			name: "printf length modifier",
			text: "%ld bytes",
			want: []Placeholder{{Type: PrintfStyle, Original: "%ld", Format: "d", Position: 0}},
		},
		{
			name: "printf after literal percent",
			text: "100%%%d",
			want: []Placeholder{{Type: PrintfStyle, Original: "%d", Format: "d", Position: 5}},
		},
		{
			name: "template literal",
			text: "Hello ${name}!",
			want: []Placeholder{{Type: TemplateLiteral, Original: "${name}", Name: "name", Position: 6}},
		},
		{
			name: "template literal dotted",
			text: "User: ${user.firstName} ${user.lastName}",
			want: []Placeholder{
				{Type: TemplateLiteral, Original: "${user.firstName}", Name: "user.firstName", Position: 6},
				{Type: TemplateLiteral, Original: "${user.lastName}", Name: "user.lastName", Position: 24},
			},
		},
		{
			name: "icu number has no bodies",
			text: "Total {amount, number, currency}",
			want: []Placeholder{{Type: IcuMessageFormat, Original: "{amount, number, currency}", Name: "amount", Format: "number", Position: 6}},
		},
		{
			name: "icu numeric argument",
			text: "{0, plural, one {# file} other {# files}}",
			want: []Placeholder{{Type: IcuMessageFormat, Original: "{0, plural, one {# file} other {# files}}", Index: "0", Format: "plural", Position: 0}},
		},
		{
			name: "position counts characters not bytes",
			text: "Привіт {0}",
			want: []Placeholder{{Type: DotNetFormat, Original: "{0}", Index: "0", Position: 7}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectPlaceholders(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DetectPlaceholders(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestDetectPlaceholders_Escapes(t *testing.T) {
	for _, text := range []string{
		"Use %% to escape",
		"{{literal}}",
		"{{0}}",
		"50% of users",
		"unbalanced { brace",
		"${ not an identifier }",
		"{0",
	} {
		assert.Empty(t, DetectPlaceholders(text), "text %q", text)
	}
}

func TestDetectPlaceholders_EscapedBracesAroundPlaceholder(t *testing.T) {
	got := DetectPlaceholders("{{{0}}}")
	require.Len(t, got, 1)
	assert.Equal(t, "{0}", got[0].Original)
	assert.Equal(t, 2, got[0].Position)
}

func TestDetectPlaceholders_SimpleBracesAreDotNet(t *testing.T) {
	got := DetectPlaceholders("Hello {user}!")
	require.Len(t, got, 1)
	assert.Equal(t, DotNetFormat, got[0].Type)
	assert.Equal(t, "user", got[0].Name)
}

func TestDetectPlaceholders_IcuPlural(t *testing.T) {
	got := DetectPlaceholders("{count, plural, one {# item} other {# items}}")
	require.Len(t, got, 1)
	assert.Equal(t, IcuMessageFormat, got[0].Type)
	assert.Equal(t, "count", got[0].Name)
	assert.Equal(t, "plural", got[0].Format)
	assert.Equal(t, "{count, plural, one {# item} other {# items}}", got[0].Original)
}

func TestDetectPlaceholders_IcuSelectBodiesAreNotPlaceholders(t *testing.T) {
	got := DetectPlaceholders("{gender, select, male {He} female {She} other {They}} replied")
	require.Len(t, got, 1)
	assert.Equal(t, IcuMessageFormat, got[0].Type)
	assert.Equal(t, "gender", got[0].Name)
	assert.Equal(t, "select", got[0].Format)
}

func TestDetectPlaceholders_IcuNested(t *testing.T) {
	text := "{gender, select, female {{count, plural, one {{name} has # item} other {{name} has # items}}} other {{0}}}"
	got := DetectPlaceholders(text)

	var summary []string
	for _, p := range got {
		summary = append(summary, p.Type.String()+":"+GetNormalizedIdentifier(p))
	}
	assert.Equal(t, []string{
		"IcuMessageFormat:gender",
		"IcuMessageFormat:count",
		"DotNetFormat:name",
		"DotNetFormat:name",
		"DotNetFormat:0",
	}, summary)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].Position, got[i].Position)
	}
}

func TestDetectPlaceholders_IcuUnbalancedIsIgnored(t *testing.T) {
	got := DetectPlaceholders("{count, plural, one {# item} other {# items}")
	for _, p := range got {
		assert.NotEqual(t, IcuMessageFormat, p.Type)
	}
}

func TestDetectPlaceholders_TemplateDoesNotDoubleAsDotNet(t *testing.T) {
	got := DetectPlaceholders("${total}")
	require.Len(t, got, 1)
	assert.Equal(t, TemplateLiteral, got[0].Type)
}

func TestDetectPlaceholders_Mixed(t *testing.T) {
	got := DetectPlaceholders("Hello {0}, you have %d items in ${cart.name}")
	want := []Placeholder{
		{Type: DotNetFormat, Original: "{0}", Index: "0", Position: 6},
		{Type: PrintfStyle, Original: "%d", Format: "d", Position: 20},
		{Type: TemplateLiteral, Original: "${cart.name}", Name: "cart.name", Position: 32},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectPlaceholders_OrdersByPosition(t *testing.T) {
	got := DetectPlaceholders("End {2}, middle {1}, start {0}")
	require.Len(t, got, 3)
	assert.Equal(t, "{2}", got[0].Original)
	assert.Equal(t, "{1}", got[1].Original)
	assert.Equal(t, "{0}", got[2].Original)
	assert.Less(t, got[0].Position, got[1].Position)
	assert.Less(t, got[1].Position, got[2].Position)
}

func TestDetector_WithTypes(t *testing.T) {
	text := "{0} %s ${x} {n, plural, other {{1}}}"

	det := NewDetector(WithTypes(PrintfStyle, TemplateLiteral))
	got := det.DetectPlaceholders(text)
	require.Len(t, got, 2)
	assert.Equal(t, PrintfStyle, got[0].Type)
	assert.Equal(t, TemplateLiteral, got[1].Type)

	dotnetOnly := NewDetector(WithTypes(DotNetFormat)).DetectPlaceholders(text)
	var originals []string
	for _, p := range dotnetOnly {
		originals = append(originals, p.Original)
	}
	assert.Equal(t, []string{"{0}", "{1}"}, originals)
}

func TestDetectPlaceholders_AdversarialInputTerminates(t *testing.T) {
	text := strings.Repeat("{a, plural, one {", 500) + strings.Repeat("%1$", 2000) + strings.Repeat("${a.", 2000)
	assert.NotPanics(t, func() { DetectPlaceholders(text) })
}

func TestDetectPlaceholders_UnbalancedICUHeadsScaleLinearly(t *testing.T) {
	text := strings.Repeat("{a, plural,", 30000)

	start := time.Now()
	got := DetectPlaceholders(text)
	elapsed := time.Since(start)

	assert.Empty(t, got)
	assert.Less(t, elapsed, 2*time.Second, "detection of %d runes took %s", len(text), elapsed)
}

func TestDetectPlaceholders_EscapedICUIsLiteral(t *testing.T) {
	got := DetectPlaceholders("{{count, plural, one {x} other {y}}}")
	for _, p := range got {
		assert.NotEqual(t, IcuMessageFormat, p.Type, "unexpected ICU message %q", p.Original)
	}

	nested := DetectPlaceholders("{n, select, other {{count, plural, other {#}}}}")
	require.Len(t, nested, 2)
	assert.Equal(t, "count", nested[1].Name)
}

func TestDetectPlaceholders_OnlyASCIIDigitsAreIndices(t *testing.T) {
	assert.Empty(t, DetectPlaceholders("{٣}"))
	assert.Empty(t, DetectPlaceholders("{٣, number}"))
	assert.Empty(t, DetectPlaceholders("%٣$s"))

	got := DetectPlaceholders("{3} %2$s")
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].Index)
	assert.Equal(t, "2", got[1].Index)
}

func TestGetNormalizedIdentifier(t *testing.T) {
	tests := []struct {
		name string
		p    Placeholder
		want string
	}{
		{"index wins", Placeholder{Type: PrintfStyle, Original: "%1$s", Index: "1", Format: "s"}, "1"},
		{"name", Placeholder{Type: DotNetFormat, Original: "{name}", Name: "name"}, "name"},
		{"format fallback", Placeholder{Type: PrintfStyle, Original: "%s", Format: "s"}, "s"},
		{"template", Placeholder{Type: TemplateLiteral, Original: "${user.name}", Name: "user.name"}, "user.name"},
		{"nothing", Placeholder{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetNormalizedIdentifier(tt.p))
		})
	}
}

func TestGetNormalizedIdentifier_MatchesDetectedFields(t *testing.T) {
	for _, p := range DetectPlaceholders("{0} {name} %s %2$d ${a.b} {c, select, other {x}}") {
		switch {
		case p.Index != "":
			assert.Equal(t, p.Index, GetNormalizedIdentifier(p))
		case p.Name != "":
			assert.Equal(t, p.Name, GetNormalizedIdentifier(p))
		default:
			assert.Equal(t, p.Format, GetNormalizedIdentifier(p))
		}
	}
}

func TestParseTypeSet(t *testing.T) {
	s, err := ParseTypeSet([]string{"dotnet", "IcuMessageFormat"})
	require.NoError(t, err)
	assert.True(t, s.Has(DotNetFormat))
	assert.True(t, s.Has(IcuMessageFormat))
	assert.False(t, s.Has(PrintfStyle))
	assert.Equal(t, []Type{DotNetFormat, IcuMessageFormat}, s.Types())

	all, err := ParseTypeSet(nil)
	require.NoError(t, err)
	assert.Equal(t, AllTypes, all)

	_, err = ParseTypeSet([]string{"mustache"})
	assert.Error(t, err)
}

func TestType_TextRoundTrip(t *testing.T) {
	b, err := IcuMessageFormat.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "IcuMessageFormat", string(b))

	var got Type
	require.NoError(t, got.UnmarshalText([]byte("template")))
	assert.Equal(t, TemplateLiteral, got)
}
