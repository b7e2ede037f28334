// Package normalize rewrites short messages with deterministic, rule-based
// substitutions. It is the floor of the enhancement pipeline: pure, no I/O,
// and never returns an empty result for a non-empty input. Re-applying it to
// already-normalized text is safe but not guaranteed to be a no-op.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Apply rewrites message according to style, then overlays tone.
func Apply(message string, style Style, tone Tone) string {
	text := strings.TrimSpace(message)

	switch style {
	case StyleProfessional, StyleFormal:
		for _, r := range informalExpansions {
			text = r.Regex.ReplaceAllString(text, r.Replacement)
		}
		for _, re := range casualAddressRemovals {
			text = re.ReplaceAllString(text, "")
		}
		text = repeatedExclaim.ReplaceAllString(text, "!")
		text = repeatedQuestion.ReplaceAllString(text, "?")
		text = repeatedPeriod.ReplaceAllString(text, ".")
		text = tidy(text)
	case StyleConcise:
		for _, re := range fillerRemovals {
			text = re.ReplaceAllString(text, "")
		}
		text = tidy(text)
	}

	text = capitalizeFirst(text)
	text = ensureTerminal(text, style, tone)

	if tone == ToneConfident {
		for _, re := range hedgeRemovals {
			text = re.ReplaceAllString(text, "")
		}
		text = tidy(text)
		text = capitalizeFirst(text)
	}

	// Floor invariant: the transforms must never erase the message entirely.
	if text == "" {
		return strings.TrimSpace(message)
	}
	return text
}

// tidy collapses whitespace and repairs punctuation stranded by word removal.
func tidy(s string) string {
	s = multiWhitespace.ReplaceAllString(s, " ")
	s = spaceBeforePunct.ReplaceAllString(s, "$1")
	s = duplicateCommas.ReplaceAllString(s, ",")
	s = leadingPunct.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if unicode.IsLower(r) {
		return string(unicode.ToUpper(r)) + s[size:]
	}
	return s
}

// ensureTerminal appends closing punctuation when the message has none.
// Friendly messages and the enthusiastic tone close on an exclamation.
func ensureTerminal(s string, style Style, tone Tone) string {
	if s == "" {
		return s
	}
	if strings.ContainsAny(s[len(s)-1:], ".!?") {
		return s
	}
	if style == StyleFriendly || tone == ToneEnthusiastic {
		return s + "!"
	}
	return s + "."
}

// WordCount reports the number of whitespace-separated tokens in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
