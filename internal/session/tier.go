package session

import "github.com/af-corp/prism-enhance/internal/config"

// Tier buckets callers for rate limiting. Members get the full limit,
// guests half, anonymous callers a quarter.
type Tier string

const (
	TierMember    Tier = "member"
	TierGuest     Tier = "guest"
	TierAnonymous Tier = "anonymous"
)

// Limit returns the sliding-window limit for this tier.
func (t Tier) Limit(l config.LimitsConfig) int {
	switch t {
	case TierGuest:
		return l.GuestLimit()
	case TierAnonymous:
		return l.AnonymousLimit()
	default:
		return l.Default
	}
}

func ParseTier(s string) (Tier, bool) {
	switch Tier(s) {
	case TierMember, TierGuest, TierAnonymous:
		return Tier(s), true
	default:
		return "", false
	}
}
