package usecase

import "time"

const (
	// IdempotencyKeyTTL is how long replayed responses are cached.
	IdempotencyKeyTTL = 24 * time.Hour

	// BalanceCacheTTL bounds staleness of the read-side balance cache.
	// The cache is invalidated on every posting commit; the TTL only
	// covers missed invalidations.
	BalanceCacheTTL = 5 * time.Minute
)

// balanceCacheKey is the cache key for an account's derived balance.
func balanceCacheKey(accountID string) string {
	return "balance:" + accountID
}
