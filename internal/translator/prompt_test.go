package translator

import (
	"strings"
	"testing"
)

func TestUserPrompt(t *testing.T) {
	tests := []struct {
		name string
		req  TranslateRequest
		want []string
		not  []string
	}{
		{
			name: "language codes use display names",
			req:  TranslateRequest{Text: "Hello", SourceLang: "en", TargetLang: "fr"},
			want: []string{"from English to French", "Hello"},
			not:  []string{"Context:"},
		},
		{
			name: "missing source is auto-detected",
			req:  TranslateRequest{Text: "Hello", TargetLang: "fr"},
			want: []string{"from auto-detected language to French"},
		},
		{
			name: "caller supplied target name",
			req:  TranslateRequest{Text: "Hello", SourceLang: "en", TargetLang: "el", TargetLangName: "Greek (el)"},
			want: []string{"from English to Greek (el)"},
		},
		{
			name: "context line",
			req:  TranslateRequest{Text: "Hello", SourceLang: "en", TargetLang: "fr", Context: "Greeting message for users"},
			want: []string{"Context: Greeting message for users"},
		},
		{
			name: "glossary terms",
			req:  TranslateRequest{Text: "Open the file", SourceLang: "en", TargetLang: "de", Glossary: map[string]string{"file": "Datei"}},
			want: []string{"TERMINOLOGY", "file → Datei"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UserPrompt(tt.req)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("prompt %q does not contain %q", got, w)
				}
			}
			for _, n := range tt.not {
				if strings.Contains(got, n) {
					t.Errorf("prompt %q unexpectedly contains %q", got, n)
				}
			}
		})
	}
}

func TestLanguageDisplayName(t *testing.T) {
	for code, want := range map[string]string{
		"en": "English", "fr": "French", "de": "German", "es": "Spanish",
		"el": "Greek", "ja": "Japanese", "zh": "Chinese", "xxx": "xxx",
	} {
		if got := LanguageDisplayName(code); got != want {
			t.Errorf("LanguageDisplayName(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestSystemPrompt(t *testing.T) {
	p := SystemPrompt("", false)
	if !strings.Contains(p, "professional translator") || !strings.Contains(p, "ONLY the translated text") {
		t.Errorf("unexpected default prompt %q", p)
	}
	if strings.Contains(p, "[PHn]") {
		t.Error("marker hint without markers")
	}
	if !strings.Contains(SystemPrompt("", true), "[PHn]") {
		t.Error("expected marker hint")
	}
	if got := SystemPrompt("Custom translation instructions", true); got != "Custom translation instructions" {
		t.Errorf("custom prompt replaced: %q", got)
	}
}
