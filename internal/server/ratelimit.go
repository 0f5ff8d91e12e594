package server

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterStore keeps one token bucket per client key
type limiterStore struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	return &limiterStore{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

// allow reports whether key may proceed. A non-positive rate disables
// limiting.
func (s *limiterStore) allow(key string) bool {
	if s.rps <= 0 {
		return true
	}
	return s.get(key).Allow()
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.RLock()
	limiter, ok := s.limiters[key]
	s.mu.RUnlock()
	if ok {
		return limiter
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if limiter, ok = s.limiters[key]; ok {
		return limiter
	}
	burst := s.burst
	if burst < 1 {
		burst = 1
	}
	limiter = rate.NewLimiter(rate.Limit(s.rps), burst)
	s.limiters[key] = limiter
	return limiter
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
