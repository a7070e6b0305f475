// Package tally turns raw input lines into frequency counts and ranks them.
package tally

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeConfig selects which lines count as equal.
type NormalizeConfig struct {
	CaseInsensitive bool
	// SkipFields drops the first N blank-separated fields of a line.
	SkipFields int
	// SkipChars drops the first N characters, after SkipFields is applied.
	SkipChars int
}

// Normalize returns the canonical key for line. Fields are skipped first,
// then characters, then case is folded.
//
// Skipping fields keeps the rest of the line verbatim, starting at the first
// surviving field: blanks between and after the surviving fields are kept.
func Normalize(line string, cfg NormalizeConfig) string {
	key := line
	if cfg.SkipFields > 0 {
		key = skipFields(key, cfg.SkipFields)
	}
	if cfg.SkipChars > 0 {
		key = skipChars(key, cfg.SkipChars)
	}
	if cfg.CaseInsensitive {
		// A Caser is stateful, so each call gets its own.
		key = cases.Lower(language.Und).String(key)
	}
	return key
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t'
}

func skipFields(s string, n int) string {
	i := 0
	for ; n > 0; n-- {
		for i < len(s) && isBlank(s[i]) {
			i++
		}
		if i == len(s) {
			return ""
		}
		for i < len(s) && !isBlank(s[i]) {
			i++
		}
	}
	for i < len(s) && isBlank(s[i]) {
		i++
	}
	return s[i:]
}

// skipChars counts characters as runes, not bytes.
func skipChars(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[i:]
		}
		n--
	}
	return ""
}
