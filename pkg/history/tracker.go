package history

import (
	"strings"
	"sync"
	"time"

	"onboarding-ai-be/pkg/similarity"
)

type entry struct {
	at       time.Time
	original string
}

// Defaults for the repeated-query detector. A query only counts as a repeat
// signal when it is long enough to be meaningful and scores above the
// similarity threshold against a recent query.
const (
	DefaultWindow              = 10 * time.Minute
	DefaultMinQueryLen         = 12
	DefaultSimilarityThreshold = 0.72
)

// Config tunes one tracker. Zero values fall back to the defaults above.
type Config struct {
	Window              time.Duration
	MinQueryLen         int
	SimilarityThreshold float64
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.MinQueryLen <= 0 {
		c.MinQueryLen = DefaultMinQueryLen
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = DefaultSimilarityThreshold
	}
	return c
}

// Tracker records the recent queries of a single user inside a sliding time
// window. All methods are safe for concurrent use; the internal mutex
// serializes the add/prune/count sequence per user.
type Tracker struct {
	mu    sync.Mutex
	cfg   Config
	now   func() time.Time
	items []entry
}

func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		cfg: cfg.withDefaults(),
		now: time.Now,
	}
}

// Add records the query and drops entries that fell out of the window.
func (t *Tracker) Add(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.items = append(t.items, entry{
		at:       now,
		original: text,
	})
	t.prune(now)
}

// CountSimilar returns how many recent queries look like text. Very short
// queries never count; the caller decides whether to Add before or after.
func (t *Tracker) CountSimilar(text string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.prune(t.now())
	if len(strings.TrimSpace(text)) < t.cfg.MinQueryLen {
		return 0
	}

	count := 0
	for _, e := range t.items {
		if similarity.Score(text, e.original) >= t.cfg.SimilarityThreshold {
			count++
		}
	}
	return count
}

// Len reports how many entries currently sit inside the window.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prune(t.now())
	return len(t.items)
}

// prune removes expired entries from the oldest end. Entries are appended in
// insertion order, so a front-only sweep is enough; an out-of-order timestamp
// further back simply waits until the entries ahead of it expire.
func (t *Tracker) prune(now time.Time) {
	cutoff := now.Add(-t.cfg.Window)
	i := 0
	for i < len(t.items) && t.items[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		t.items = append(t.items[:0], t.items[i:]...)
	}
}
