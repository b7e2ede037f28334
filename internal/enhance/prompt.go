package enhance

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/af-corp/prism-enhance/internal/normalize"
)

var styleInstructions = map[normalize.Style]string{
	normalize.StyleProfessional: "Rewrite the message in a professional business style. " +
		"Remove slang, abbreviations, and informal language. " +
		"Use proper grammar and punctuation. Maintain formality.",
	normalize.StyleCasual: "Rewrite the message in a casual, conversational style. " +
		"Keep it natural and friendly. It's okay to be relaxed.",
	normalize.StyleConcise: "Rewrite the message to be more concise and to the point. " +
		"Remove unnecessary words while preserving the core meaning. " +
		"Be brief but complete.",
	normalize.StyleFriendly: "Rewrite the message in a warm, friendly tone. " +
		"Make it approachable and personable while staying appropriate.",
	normalize.StyleFormal: "Rewrite the message in a formal, respectful style. " +
		"Use sophisticated vocabulary and complete sentences. " +
		"Avoid contractions and maintain professional distance.",
}

var toneInstructions = map[normalize.Tone]string{
	normalize.ToneConfident: "Express confidence and certainty. " +
		"Avoid hedging words like 'maybe', 'perhaps', 'I think'.",
	normalize.TonePolite:  "Be courteous and respectful. Use please/thank you where appropriate.",
	normalize.ToneNeutral: "Maintain an objective, balanced tone without strong emotion.",
	normalize.ToneEnthusiastic: "Show energy and positivity. " +
		"Use exclamation points where appropriate.",
}

// SystemPrompt builds the editing instruction sent to the generative backend.
func SystemPrompt(style normalize.Style, tone normalize.Tone) string {
	return fmt.Sprintf(`You are a professional text editor. Your job is to enhance messages while preserving their core meaning.
Style: %s

Tone: %s

Rules:
1. ONLY output the enhanced message - no explanations, no meta-commentary
2. Preserve the core meaning and intent
3. Keep the length similar (don't make it 3x longer or shorter)
4. If the message is already well-written, make minimal changes
5. Fix obvious typos and grammar errors
6. Do not add new information or claims
7. Output ONLY the rewritten text`,
		styleInstructions[style], toneInstructions[tone])
}

// UserPrompt wraps the rule-normalized message for the backend.
func UserPrompt(floor string) string {
	return "Enhance this message:\n\n" + floor
}

// Models sometimes prepend meta-commentary despite the instructions.
var metaPrefix = regexp.MustCompile(`(?is)^(here's|here is).*?:`)

// CleanOutput strips meta-text and wrapping quotes the model may add around
// its rewrite.
func CleanOutput(s string) string {
	s = strings.TrimSpace(s)
	s = metaPrefix.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	s = strings.Trim(s, `'`)
	return strings.TrimSpace(s)
}
