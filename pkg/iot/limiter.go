package iot

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiterStore holds one token bucket per camera id. Cameras without an
// override share the store's default rate and burst. The store is shared by
// every transport and by IOT.deleteCamera, which drops the bucket of a camera
// that no longer exists.
type RateLimiterStore struct {
	mu      sync.Mutex
	cameras map[string]*rate.Limiter
	rate    rate.Limit
	burst   int
}

func NewRateLimiterStore(defaultRate rate.Limit, defaultBurst int) *RateLimiterStore {
	return &RateLimiterStore{
		cameras: make(map[string]*rate.Limiter),
		rate:    defaultRate,
		burst:   defaultBurst,
	}
}

// GetLimiter returns the camera's bucket, creating one at the default rate on
// first use.
func (s *RateLimiterStore) GetLimiter(cameraID string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, ok := s.cameras[cameraID]
	if !ok {
		limiter = rate.NewLimiter(s.rate, s.burst)
		s.cameras[cameraID] = limiter
	}
	return limiter
}

// SetLimiter replaces the camera's bucket, so tokens already spent are reset.
func (s *RateLimiterStore) SetLimiter(cameraID string, cameraRate rate.Limit, cameraBurst int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cameras[cameraID] = rate.NewLimiter(cameraRate, cameraBurst)
}

// Allow takes one token from the camera's bucket.
func (s *RateLimiterStore) Allow(cameraID string) bool {
	return s.GetLimiter(cameraID).Allow()
}

// Forget drops the camera's bucket, override included. Safe on a nil store.
func (s *RateLimiterStore) Forget(cameraID string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cameras, cameraID)
}

func (s *RateLimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cameras)
}
