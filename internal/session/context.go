package session

import "context"

type contextKey string

const callerContextKey contextKey = "prism_caller"

// Caller is the resolved identity of a request. SessionID is whatever the
// request presented (empty when nothing was presented); Record is non-nil
// only when a live session exists for it.
type Caller struct {
	SessionID string
	Record    *Record
	IP        string
}

// Tier classifies the caller for rate limiting.
func (c *Caller) Tier() Tier {
	switch {
	case c.Record == nil:
		return TierAnonymous
	case c.Record.Guest:
		return TierGuest
	default:
		return TierMember
	}
}

// RateID is the identifier rate-limit windows are keyed on. Anonymous
// callers are keyed by client IP.
func (c *Caller) RateID() string {
	if c.Record != nil {
		return c.Record.ID
	}
	return c.IP
}

// Authenticated reports whether a live session backs this caller.
func (c *Caller) Authenticated() bool {
	return c.Record != nil
}

func ContextWithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, c)
}

func CallerFromContext(ctx context.Context) (*Caller, bool) {
	c, ok := ctx.Value(callerContextKey).(*Caller)
	return c, ok
}
