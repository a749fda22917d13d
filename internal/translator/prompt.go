package translator

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/valpere/lrm/internal/placeholder"
)

const DefaultSystemPrompt = `You are a professional translator for software user interfaces. ` +
	`Translate the text you are given and respond with ONLY the translated text. ` +
	`No explanations, no notes, no surrounding quotes. ` +
	`Preserve formatting, punctuation and any placeholders such as {0}, {name}, %s or ${value}.`

// LanguageDisplayName returns the English name of a language code, or the
// code itself when it is unknown.
func LanguageDisplayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}

// SystemPrompt returns custom when set, otherwise the default prompt. The
// marker hint is added when the text carries protected placeholders.
func SystemPrompt(custom string, protected bool) string {
	if custom != "" {
		return custom
	}
	if protected {
		return DefaultSystemPrompt + " " + placeholder.InstructionHint()
	}
	return DefaultSystemPrompt
}

// UserPrompt builds the translation instruction for req.
func UserPrompt(req TranslateRequest) string {
	source := "auto-detected language"
	if req.SourceLang != "" && req.SourceLang != "auto" {
		source = LanguageDisplayName(req.SourceLang)
	}
	target := req.TargetLangName
	if target == "" {
		target = LanguageDisplayName(req.TargetLang)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Translate the following text from %s to %s:\n\n%s", source, target, req.Text)

	if req.Context != "" {
		fmt.Fprintf(&sb, "\n\nContext: %s", req.Context)
	}

	if len(req.Glossary) > 0 {
		terms := make([]string, 0, len(req.Glossary))
		for src := range req.Glossary {
			terms = append(terms, src)
		}
		sort.Strings(terms)
		sb.WriteString("\n\nTERMINOLOGY (use these exact translations):\n")
		for _, src := range terms {
			fmt.Fprintf(&sb, "  %s → %s\n", src, req.Glossary[src])
		}
	}

	return sb.String()
}

func hasMarkers(text string) bool {
	return strings.Contains(text, "[PH")
}
