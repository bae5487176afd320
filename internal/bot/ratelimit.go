package bot

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	maxTrackedUsers = 4096
	limiterIdleTTL  = 10 * time.Minute
)

// userRateLimiter throttles commands per user. Limiters of users that have
// been quiet for a while are dropped.
type userRateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters *expirable.LRU[string, *rate.Limiter]
}

// newUserRateLimiter creates a limiter allowing perSecond commands per user.
// A non-positive rate disables throttling.
func newUserRateLimiter(perSecond float64, burst int) *userRateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	burst = max(burst, 1)

	return &userRateLimiter{
		limit:    limit,
		burst:    burst,
		limiters: expirable.NewLRU[string, *rate.Limiter](maxTrackedUsers, nil, limiterIdleTTL),
	}
}

// Allow reports whether the user may run another command now.
// Interactions without a user are never throttled.
func (l *userRateLimiter) Allow(userID string) bool {
	if userID == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters.Get(userID)
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
	}
	// Re-adding refreshes the idle TTL.
	l.limiters.Add(userID, limiter)

	return limiter.Allow()
}

// interactionUserID returns the invoking user for guild and DM interactions.
func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
