// Package postprocess strips the chatter LLM providers wrap around a
// translated resource value and repairs mangled placeholder markers.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean returns the bare translation: reasoning blocks, echoed prefixes,
// wrapping quotes and trailing notes are removed, markers like "[ PH 0 ]"
// are rewritten to "[PH0]", and surrounding whitespace is trimmed.
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeInstructionEchoes(text)
	text = removeTrailingNotes(text)
	text = removeQuoteWrapping(text)
	text = NormalizeMarkers(text)
	return strings.TrimSpace(text)
}

// The tag variants are listed explicitly since RE2 has no backreferences.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// An opened tag without its closing tag: the model was cut off.
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Each echo pattern is anchored at the start and requires a colon.
var echoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.!]? here(?:'s| is)(?: the)? (?:translated )?(?:translation|text)\s*:`),
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:translated )?(?:translation|text)\s*:`),
	regexp.MustCompile(`(?i)^(?:the )?translation is\s*:`),
	regexp.MustCompile(`(?i)^(?:the )?(?:translation|translated text)\s*:`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// A note the model appends after a blank line, e.g. "\n\nNote: kept {0}".
var trailingNoteRe = regexp.MustCompile(`(?is)\n\s*\n\s*(?:note|explanation|\(note)\b.*$`)

func removeTrailingNotes(text string) string {
	return strings.TrimSpace(trailingNoteRe.ReplaceAllString(text, ""))
}

// removeQuoteWrapping strips one matching pair of outer quotes:
//
//	"…"  '…'  «…»  “…”  ‘…’
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}

var looseMarkerRe = regexp.MustCompile(`(?i)[\[【]\s*PH\s*_?\s*(\d+)\s*[\]】]`)

// NormalizeMarkers rewrites marker variants such as "[ph 0]" or "【PH0】"
// to the canonical "[PH0]".
func NormalizeMarkers(text string) string {
	return looseMarkerRe.ReplaceAllString(text, "[PH$1]")
}
