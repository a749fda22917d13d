// Package textutil fits resource values into terminal table cells.
package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const Ellipsis = "…"

var lineBreaks = strings.NewReplacer("\r\n", " ↵ ", "\n", " ↵ ", "\r", " ↵ ", "\t", " ")

// Width returns the display width of s in terminal cells.
func Width(s string) int {
	width := 0
	state := -1
	for s != "" {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		width += runewidth.StringWidth(cluster)
	}
	return width
}

// Truncate shortens s to at most w cells without splitting a grapheme
// cluster, ending it with Ellipsis when anything was cut.
func Truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if Width(s) <= w {
		return s
	}

	budget := w - runewidth.StringWidth(Ellipsis)
	if budget < 0 {
		budget = 0
	}
	var b strings.Builder
	used := 0
	state := -1
	for s != "" {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		cw := runewidth.StringWidth(cluster)
		if used+cw > budget {
			break
		}
		b.WriteString(cluster)
		used += cw
	}
	if used+runewidth.StringWidth(Ellipsis) > w {
		return b.String()
	}
	return b.String() + Ellipsis
}

// SingleLine replaces line breaks with a visible marker and tabs with a
// space.
func SingleLine(s string) string {
	return lineBreaks.Replace(s)
}

// Cell prepares a value for a table column of width w. A width of zero or
// less only flattens line breaks.
func Cell(s string, w int) string {
	s = SingleLine(s)
	if w <= 0 {
		return s
	}
	return Truncate(s, w)
}

// PadRight pads s with spaces to w cells.
func PadRight(s string, w int) string {
	if pad := w - Width(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
