package normalize

import "regexp"

// Rule rewrites every match of Regex to Replacement.
type Rule struct {
	Regex       *regexp.Regexp
	Replacement string
}

// informalExpansions maps chat shorthand to its formal equivalent. Applied in
// order for professional and formal styles; matches are word-boundary-safe
// and case-insensitive.
var informalExpansions = []Rule{
	{regexp.MustCompile(`(?i)\bu\b`), "you"},
	{regexp.MustCompile(`(?i)\bur\b`), "your"},
	{regexp.MustCompile(`(?i)\burs\b`), "yours"},
	{regexp.MustCompile(`(?i)\bplz\b`), "please"},
	{regexp.MustCompile(`(?i)\bpls\b`), "please"},
	{regexp.MustCompile(`(?i)\bthx\b`), "thank you"},
	{regexp.MustCompile(`(?i)\bthanx\b`), "thank you"},
	{regexp.MustCompile(`(?i)\bty\b`), "thank you"},
	{regexp.MustCompile(`(?i)\bnp\b`), "no problem"},
	{regexp.MustCompile(`(?i)\bgonna\b`), "going to"},
	{regexp.MustCompile(`(?i)\bwanna\b`), "want to"},
	{regexp.MustCompile(`(?i)\bgotta\b`), "have to"},
	{regexp.MustCompile(`(?i)\bkinda\b`), "kind of"},
	{regexp.MustCompile(`(?i)\bsorta\b`), "sort of"},
	{regexp.MustCompile(`(?i)\byeah\b`), "yes"},
	{regexp.MustCompile(`(?i)\byep\b`), "yes"},
	{regexp.MustCompile(`(?i)\bnah\b`), "no"},
	{regexp.MustCompile(`(?i)\bnope\b`), "no"},
	{regexp.MustCompile(`(?i)\bok\b`), "okay"},
	{regexp.MustCompile(`(?i)\bcuz\b`), "because"},
	{regexp.MustCompile(`(?i)\bcause\b`), "because"},
	{regexp.MustCompile(`(?i)\btho\b`), "though"},
	{regexp.MustCompile(`(?i)\bthru\b`), "through"},
	{regexp.MustCompile(`(?i)\bbtw\b`), "by the way"},
	{regexp.MustCompile(`(?i)\bidk\b`), "I don't know"},
	{regexp.MustCompile(`(?i)\bimo\b`), "in my opinion"},
	{regexp.MustCompile(`(?i)\bfyi\b`), "for your information"},
	{regexp.MustCompile(`(?i)\basap\b`), "as soon as possible"},
}

// casualAddressRemovals strips address words that have no place in a
// professional or formal message.
var casualAddressRemovals = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bhey\b`),
	regexp.MustCompile(`(?i)\byo\b`),
	regexp.MustCompile(`(?i)\bbro\b`),
	regexp.MustCompile(`(?i)\bdude\b`),
	regexp.MustCompile(`(?i)\bman\b`),
}

// fillerRemovals strips words that pad a message without adding meaning.
// Used by the concise style.
var fillerRemovals = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\blike\b`),
	regexp.MustCompile(`(?i)\bjust\b`),
	regexp.MustCompile(`(?i)\breally\b`),
	regexp.MustCompile(`(?i)\bvery\b`),
	regexp.MustCompile(`(?i)\bactually\b`),
	regexp.MustCompile(`(?i)\bbasically\b`),
	regexp.MustCompile(`(?i)\bliterally\b`),
	regexp.MustCompile(`(?i)\bkind of\b`),
	regexp.MustCompile(`(?i)\bsort of\b`),
}

// hedgeRemovals strips uncertainty markers for the confident tone.
var hedgeRemovals = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bmaybe\b`),
	regexp.MustCompile(`(?i)\bperhaps\b`),
	regexp.MustCompile(`(?i)\bpossibly\b`),
	regexp.MustCompile(`(?i)\bI think\b`),
	regexp.MustCompile(`(?i)\bI guess\b`),
}

var (
	repeatedExclaim  = regexp.MustCompile(`!+`)
	repeatedQuestion = regexp.MustCompile(`\?+`)
	repeatedPeriod   = regexp.MustCompile(`\.+`)
	multiWhitespace  = regexp.MustCompile(`\s+`)

	// Word removal can leave punctuation stranded: ", ," after dropping a
	// word between commas, or a leading comma after dropping an opener.
	spaceBeforePunct = regexp.MustCompile(`\s+([,.!?;:])`)
	duplicateCommas  = regexp.MustCompile(`,(\s*,)+`)
	leadingPunct     = regexp.MustCompile(`^[,;:\s]+`)
)
