package normalize

// Style selects the rewrite register applied to a message.
type Style string

const (
	StyleProfessional Style = "professional"
	StyleFormal       Style = "formal"
	StyleCasual       Style = "casual"
	StyleConcise      Style = "concise"
	StyleFriendly     Style = "friendly"
)

// Tone is overlaid on a style after the style rules run.
type Tone string

const (
	ToneNeutral      Tone = "neutral"
	ToneConfident    Tone = "confident"
	TonePolite       Tone = "polite"
	ToneEnthusiastic Tone = "enthusiastic"
)

const (
	DefaultStyle = StyleProfessional
	DefaultTone  = ToneNeutral
)

func ParseStyle(s string) (Style, bool) {
	switch Style(s) {
	case StyleProfessional, StyleFormal, StyleCasual, StyleConcise, StyleFriendly:
		return Style(s), true
	default:
		return "", false
	}
}

func ParseTone(s string) (Tone, bool) {
	switch Tone(s) {
	case ToneNeutral, ToneConfident, TonePolite, ToneEnthusiastic:
		return Tone(s), true
	default:
		return "", false
	}
}

// Styles lists every style in catalog order.
func Styles() []Style {
	return []Style{StyleProfessional, StyleFormal, StyleCasual, StyleConcise, StyleFriendly}
}

// Tones lists every tone in catalog order.
func Tones() []Tone {
	return []Tone{ToneNeutral, ToneConfident, TonePolite, ToneEnthusiastic}
}

func (s Style) Description() string {
	switch s {
	case StyleProfessional:
		return "Business-appropriate wording with slang and abbreviations removed"
	case StyleFormal:
		return "Formal, respectful register with complete sentences"
	case StyleCasual:
		return "Relaxed, conversational phrasing with minimal rewriting"
	case StyleConcise:
		return "Shorter phrasing with filler words removed"
	case StyleFriendly:
		return "Warm, approachable phrasing"
	default:
		return ""
	}
}

func (t Tone) Description() string {
	switch t {
	case ToneNeutral:
		return "Objective and balanced"
	case ToneConfident:
		return "Assertive, with hedging removed"
	case TonePolite:
		return "Courteous and respectful"
	case ToneEnthusiastic:
		return "Energetic, ends on an exclamation"
	default:
		return ""
	}
}
