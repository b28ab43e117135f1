package httpapi

import (
	"sync"

	"golang.org/x/time/rate"
)

// keyLimiters holds one token bucket per webhook key. The hourly cap
// is spread evenly across the hour with a small burst so legitimate
// spiky consumers are not rejected on the first request.
type keyLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newKeyLimiters() *keyLimiters {
	return &keyLimiters{limiters: make(map[string]*rate.Limiter)}
}

// allow reports whether a request under the key fits its hourly cap.
// A zero cap means uncapped.
func (k *keyLimiters) allow(key string, perHour int) bool {
	if perHour <= 0 {
		return true
	}

	k.mu.Lock()
	limiter, ok := k.limiters[key]
	if !ok {
		burst := perHour / 10
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(perHour)/3600.0), burst)
		k.limiters[key] = limiter
	}
	k.mu.Unlock()

	return limiter.Allow()
}
