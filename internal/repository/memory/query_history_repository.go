package memory

import (
	"sync"
	"time"

	"onboarding-ai-be/pkg/history"

	"github.com/patrickmn/go-cache"
)

// QueryHistoryRepository keeps one sliding-window query tracker per user.
// Trackers for users idle longer than an hour are evicted, which bounds
// memory without touching active repeat counts.
type QueryHistoryRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
	cfg   history.Config
}

func NewQueryHistoryRepository(cfg history.Config) *QueryHistoryRepository {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &QueryHistoryRepository{
		cache: c,
		cfg:   cfg,
	}
}

// ForUser returns the tracker for a user, creating it on first use. The
// mutex only guards creation; the tracker serializes its own operations.
func (r *QueryHistoryRepository) ForUser(userId string) *history.Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if x, found := r.cache.Get(userId); found {
		// Refresh the idle timer on every touch.
		tracker := x.(*history.Tracker)
		r.cache.Set(userId, tracker, cache.DefaultExpiration)
		return tracker
	}

	tracker := history.NewTracker(r.cfg)
	r.cache.Set(userId, tracker, cache.DefaultExpiration)
	return tracker
}
