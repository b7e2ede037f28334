package enhance

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/af-corp/prism-enhance/internal/normalize"
)

var informalMarkers = []*regexp.Regexp{
	regexp.MustCompile(`\bu\b`),
	regexp.MustCompile(`\bur\b`),
	regexp.MustCompile(`\bplz\b`),
	regexp.MustCompile(`\bthx\b`),
	regexp.MustCompile(`\bbro\b`),
	regexp.MustCompile(`\bdude\b`),
	regexp.MustCompile(`\bgonna\b`),
	regexp.MustCompile(`\bwanna\b`),
}

// Improvements summarizes, for humans, what changed between the original
// message and its enhancement. When no specific change is detected the
// style/tone pair is reported so the list is never empty.
func Improvements(original, enhanced string, style normalize.Style, tone normalize.Tone) []string {
	var improvements []string
	if original == "" || enhanced == "" {
		return improvements
	}

	origLen := float64(len(original))
	enhLen := float64(len(enhanced))
	if enhLen > origLen*1.2 {
		improvements = append(improvements, "Expanded with more detail")
	} else if enhLen < origLen*0.8 {
		improvements = append(improvements, "Made more concise")
	}

	origRunes := []rune(original)
	enhRunes := []rune(enhanced)
	if unicode.IsUpper(enhRunes[0]) && !unicode.IsUpper(origRunes[0]) {
		improvements = append(improvements, "Capitalized first letter")
	}

	if isTerminal(enhRunes[len(enhRunes)-1]) && !isTerminal(origRunes[len(origRunes)-1]) {
		improvements = append(improvements, "Added proper punctuation")
	}

	if hasInformal(original) && !hasInformal(enhanced) {
		improvements = append(improvements, "Replaced informal language")
	}

	if strings.Contains(original, "  ") && !strings.Contains(enhanced, "  ") {
		improvements = append(improvements, "Fixed spacing")
	}

	if n := newWordCount(original, enhanced); n > 0 {
		improvements = append(improvements, fmt.Sprintf("Enhanced vocabulary with %d new words", n))
	}

	if len(improvements) == 0 {
		improvements = append(improvements,
			fmt.Sprintf("Applied %s style", style),
			fmt.Sprintf("Used %s tone", tone),
		)
	}
	return improvements
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func hasInformal(s string) bool {
	lower := strings.ToLower(s)
	for _, re := range informalMarkers {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// newWordCount reports how many distinct lowercase tokens appear in the
// enhancement but not the original. Tokens are compared with surrounding
// punctuation trimmed so "tomorrow." does not count as new next to
// "tomorrow".
func newWordCount(original, enhanced string) int {
	seen := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(original)) {
		seen[trimToken(w)] = struct{}{}
	}
	count := 0
	counted := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(enhanced)) {
		tok := trimToken(w)
		if tok == "" {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		if _, ok := counted[tok]; ok {
			continue
		}
		counted[tok] = struct{}{}
		count++
	}
	return count
}

func trimToken(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r)
	})
}
