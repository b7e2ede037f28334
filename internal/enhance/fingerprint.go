package enhance

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/af-corp/prism-enhance/internal/normalize"
)

// cacheKeyVersion guards against stale entries when the pipeline's output
// format changes. Bump it instead of flushing the shared store.
const cacheKeyVersion = "v1"

// Fingerprint returns the stable, collision-resistant identity of one
// enhancement input. Identical (message, style, tone) tuples always produce
// the same fingerprint, across processes and restarts.
func Fingerprint(message string, style normalize.Style, tone normalize.Tone) string {
	sum := sha256.Sum256([]byte(message + ":" + string(style) + ":" + string(tone)))
	return hex.EncodeToString(sum[:])
}

// CacheKey builds the shared-store key for a caller's cached result.
// Results are partitioned per caller so one user's cache cannot serve
// another's requests.
func CacheKey(callerID, fingerprint string) string {
	return fmt.Sprintf("enhance:%s:%s:%s", cacheKeyVersion, callerID, fingerprint)
}
