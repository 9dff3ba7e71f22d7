package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/Simplici0/roofquote/internal/geo"
)

const defaultSuggesterIdle = 30 * time.Minute

type pooledSuggester struct {
	suggester *geo.Suggester
	lastUsed  time.Time
}

// suggesterPool hands every visitor their own debounced address lookup.
// Suggesters unused for idle are dropped; a returning visitor gets a new one.
type suggesterPool struct {
	newSuggester func() *geo.Suggester
	idle         time.Duration
	now          func() time.Time

	mu         sync.Mutex
	suggesters map[string]*pooledSuggester
	lastSweep  time.Time
}

func newSuggesterPool(idle time.Duration, newSuggester func() *geo.Suggester) *suggesterPool {
	if idle <= 0 {
		idle = defaultSuggesterIdle
	}
	return &suggesterPool{
		newSuggester: newSuggester,
		idle:         idle,
		now:          time.Now,
		suggesters:   map[string]*pooledSuggester{},
	}
}

func (p *suggesterPool) get(visitor string) *geo.Suggester {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if now.Sub(p.lastSweep) >= p.idle/4 {
		p.sweepLocked(now)
	}

	e, ok := p.suggesters[visitor]
	if !ok {
		e = &pooledSuggester{suggester: p.newSuggester()}
		p.suggesters[visitor] = e
	}
	e.lastUsed = now
	return e.suggester
}

func (p *suggesterPool) sweepLocked(now time.Time) {
	p.lastSweep = now
	for visitor, e := range p.suggesters {
		if now.Sub(e.lastUsed) >= p.idle {
			delete(p.suggesters, visitor)
		}
	}
}

func (p *suggesterPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.suggesters)
}

type suggestionsResponse struct {
	Suggestions []geo.Suggestion `json:"suggestions"`
}

// handleAddressQuery records what the visitor typed. Results show up on
// the suggestions endpoint once the debounced lookup has finished.
func (s *server) handleAddressQuery(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid form")
		return
	}
	s.suggesters.get(visitorID(r)).Query(r.FormValue("q"))
	w.WriteHeader(http.StatusAccepted)
}

func (s *server) handleAddressSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions := s.suggesters.get(visitorID(r)).Suggestions()
	if suggestions == nil {
		suggestions = []geo.Suggestion{}
	}
	writeJSON(w, http.StatusOK, suggestionsResponse{Suggestions: suggestions})
}
