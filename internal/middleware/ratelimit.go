package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipLimiter holds a rate limiter per client IP.
type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	r        rate.Limit
	b        int
}

func newLimiterStore(r rate.Limit, b int) *limiterStore {
	s := &limiterStore{
		limiters: make(map[string]*ipLimiter),
		r:        r,
		b:        b,
	}
	go s.cleanup()
	return s
}

func (s *limiterStore) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.limiters[ip]; ok {
		v.lastSeen = time.Now()
		return v.limiter
	}

	l := &ipLimiter{limiter: rate.NewLimiter(s.r, s.b), lastSeen: time.Now()}
	s.limiters[ip] = l
	return l.limiter
}

// cleanup removes stale entries every 10 minutes.
func (s *limiterStore) cleanup() {
	for {
		time.Sleep(10 * time.Minute)
		s.mu.Lock()
		for ip, v := range s.limiters {
			if time.Since(v.lastSeen) > 15*time.Minute {
				delete(s.limiters, ip)
			}
		}
		s.mu.Unlock()
	}
}

func rateLimitMiddleware(r rate.Limit, b int) gin.HandlerFunc {
	s := newLimiterStore(r, b)
	return func(c *gin.Context) {
		if !s.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests from this IP, please try again later.",
			})
			return
		}
		c.Next()
	}
}

// GlobalRateLimit caps each IP at 300 requests per 15 minutes.
func GlobalRateLimit() gin.HandlerFunc {
	return rateLimitMiddleware(rate.Every(15*time.Minute/300), 300)
}

// AuthRateLimit is stricter for login and registration: 10 per 15 minutes.
func AuthRateLimit() gin.HandlerFunc {
	return rateLimitMiddleware(rate.Every(15*time.Minute/10), 10)
}

// MarketplaceRateLimit guards the OpenSea proxy so one client cannot burn
// the shared upstream API quota: 60 per minute.
func MarketplaceRateLimit() gin.HandlerFunc {
	return rateLimitMiddleware(rate.Every(time.Minute/60), 60)
}
