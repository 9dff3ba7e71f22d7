package geo

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
)

const DefaultDebounce = 300 * time.Millisecond

// Suggester debounces address lookups for one visitor. Every Query
// supersedes the previous one; a lookup that finishes after being
// superseded is discarded.
type Suggester struct {
	lookup  AddressLookup
	delay   time.Duration
	timeout time.Duration

	mu      sync.Mutex
	token   uint64
	timer   *time.Timer
	results []Suggestion
	wg      sync.WaitGroup
}

// NewSuggester returns a Suggester that waits delay after the last Query
// before calling lookup, and bounds each lookup by timeout.
func NewSuggester(lookup AddressLookup, delay, timeout time.Duration) *Suggester {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &Suggester{lookup: lookup, delay: delay, timeout: timeout}
}

// Query records the latest text typed into the address field.
func (s *Suggester) Query(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token++
	if s.timer != nil && s.timer.Stop() {
		s.wg.Done()
	}
	s.timer = nil

	if strings.TrimSpace(text) == "" {
		s.results = nil
		return
	}

	token := s.token
	s.wg.Add(1)
	s.timer = time.AfterFunc(s.delay, func() {
		defer s.wg.Done()
		s.fetch(token, text)
	})
}

func (s *Suggester) fetch(token uint64, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	results, err := s.lookup.Search(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.token {
		return
	}
	if err != nil {
		log.Printf("address_lookup_error query=%q error=%q", text, err)
		s.results = nil
		return
	}
	s.results = results
}

// Suggestions returns the results for the latest query that has resolved.
func (s *Suggester) Suggestions() []Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Suggestion, len(s.results))
	copy(out, s.results)
	return out
}

// Wait blocks until pending and in-flight lookups have finished.
func (s *Suggester) Wait() {
	s.wg.Wait()
}
