package memory

import (
	"time"

	"onboarding-ai-be/pkg/agi"

	"github.com/patrickmn/go-cache"
)

// AgentSessionRepository is the in-memory registry of live agent sessions,
// keyed by the remote session id. Sessions that see no traffic for a day are
// evicted; the remote side reaps its own idle sessions independently.
type AgentSessionRepository struct {
	cache *cache.Cache
}

func NewAgentSessionRepository() *AgentSessionRepository {
	c := cache.New(24*time.Hour, 1*time.Hour)
	return &AgentSessionRepository{
		cache: c,
	}
}

func (r *AgentSessionRepository) Save(session *agi.Session) {
	r.cache.Set(session.SessionId, session, cache.DefaultExpiration)
}

func (r *AgentSessionRepository) Get(sessionId string) (*agi.Session, bool) {
	if x, found := r.cache.Get(sessionId); found {
		return x.(*agi.Session), true
	}
	return nil, false
}

func (r *AgentSessionRepository) Delete(sessionId string) {
	r.cache.Delete(sessionId)
}
