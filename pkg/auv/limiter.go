package auv

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiterStore manages per-vehicle rate limiters: mid -> rate limiter
type RateLimiterStore struct {
	limiters     map[string]*rate.Limiter
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int
}

func NewRateLimiterStore(defaultRate rate.Limit, defaultBurst int) *RateLimiterStore {
	return &RateLimiterStore{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  defaultRate,
		defaultBurst: defaultBurst,
	}
}

func (s *RateLimiterStore) GetLimiter(mid string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[mid]
	if !exists {
		limiter = rate.NewLimiter(s.defaultRate, s.defaultBurst)
		s.limiters[mid] = limiter
	}
	return limiter
}

func (s *RateLimiterStore) SetLimiter(mid string, midRate rate.Limit, midBurst int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limiters[mid] = rate.NewLimiter(midRate, midBurst)
}
