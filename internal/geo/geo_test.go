package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOSRMClient_ConvertsMetersToMiles(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"distance":160934}]}`))
	}))
	defer srv.Close()

	client := NewOSRMClient(srv.URL+"/", srv.Client())
	miles, err := client.RoadDistanceMiles(context.Background(), Coordinate{Latitude: 55.86, Longitude: -4.25}, Origin)

	require.NoError(t, err)
	assert.InDelta(t, 100, miles, 1e-9)
	assert.Equal(t, "/route/v1/driving/-4.25,55.86;-4.3857,55.5141", gotPath)
	assert.Equal(t, "overview=false", gotQuery)
}

func TestOSRMClient_NoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"NoRoute","routes":[]}`))
	}))
	defer srv.Close()

	_, err := NewOSRMClient(srv.URL, nil).RoadDistanceMiles(context.Background(), Origin, Origin)
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestOSRMClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewOSRMClient(srv.URL, nil).RoadDistanceMiles(context.Background(), Origin, Origin)
	assert.Error(t, err)
}

func TestNominatimClient_Search(t *testing.T) {
	var gotQ, gotLimit, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		gotQ = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`[
			{"display_name":"1 High Street, Kilmarnock","lat":"55.6111","lon":"-4.4957"},
			{"display_name":"broken","lat":"north","lon":"-4.1"}
		]`))
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, "roofquote-test", nil)
	got, err := client.Search(context.Background(), "1 High Street")

	require.NoError(t, err)
	assert.Equal(t, "1 High Street,UK", gotQ)
	assert.Equal(t, "5", gotLimit)
	assert.Equal(t, "roofquote-test", gotAgent)
	require.Len(t, got, 1)
	assert.Equal(t, Suggestion{DisplayName: "1 High Street, Kilmarnock", Latitude: 55.6111, Longitude: -4.4957}, got[0])
}

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) Search(ctx context.Context, query string) ([]Suggestion, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Suggestion), args.Error(1)
}

func TestSuggester_DebouncesToLatestQuery(t *testing.T) {
	lookup := &mockLookup{}
	want := []Suggestion{{DisplayName: "Kilmarnock", Latitude: 55.6, Longitude: -4.5}}
	lookup.On("Search", mock.Anything, "Kilmarnock").Return(want, nil).Once()

	s := NewSuggester(lookup, 20*time.Millisecond, time.Second)
	s.Query("Kil")
	s.Query("Kilm")
	s.Query("Kilmarnock")
	s.Wait()

	assert.Equal(t, want, s.Suggestions())
	lookup.AssertExpectations(t)
	lookup.AssertNumberOfCalls(t, "Search", 1)
}

func TestSuggester_EmptyQueryClears(t *testing.T) {
	lookup := &mockLookup{}
	lookup.On("Search", mock.Anything, "Ayr").Return([]Suggestion{{DisplayName: "Ayr"}}, nil).Once()

	s := NewSuggester(lookup, time.Millisecond, time.Second)
	s.Query("Ayr")
	s.Wait()
	require.Len(t, s.Suggestions(), 1)

	s.Query("   ")
	s.Wait()
	assert.Empty(t, s.Suggestions())
	lookup.AssertExpectations(t)
}

func TestSuggester_ErrorClearsSuggestions(t *testing.T) {
	lookup := &mockLookup{}
	lookup.On("Search", mock.Anything, "Troon").Return([]Suggestion{{DisplayName: "Troon"}}, nil).Once()
	lookup.On("Search", mock.Anything, "Troonx").Return(nil, errors.New("network down")).Once()

	s := NewSuggester(lookup, time.Millisecond, time.Second)
	s.Query("Troon")
	s.Wait()
	require.Len(t, s.Suggestions(), 1)

	s.Query("Troonx")
	s.Wait()
	assert.Empty(t, s.Suggestions())
}

// gatedLookup blocks each search until its query is released.
type gatedLookup struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	started chan string
}

func newGatedLookup() *gatedLookup {
	return &gatedLookup{gates: map[string]chan struct{}{}, started: make(chan string, 4)}
}

func (g *gatedLookup) gate(q string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.gates[q]; !ok {
		g.gates[q] = make(chan struct{})
	}
	return g.gates[q]
}

func (g *gatedLookup) Search(ctx context.Context, query string) ([]Suggestion, error) {
	g.started <- query
	<-g.gate(query)
	return []Suggestion{{DisplayName: query}}, nil
}

func TestSuggester_DiscardsSupersededLookup(t *testing.T) {
	lookup := newGatedLookup()
	s := NewSuggester(lookup, time.Millisecond, time.Second)

	s.Query("Irvine")
	require.Equal(t, "Irvine", <-lookup.started)

	s.Query("Irvine Road")
	require.Equal(t, "Irvine Road", <-lookup.started)

	close(lookup.gate("Irvine Road"))
	require.Eventually(t, func() bool { return len(s.Suggestions()) == 1 }, time.Second, 5*time.Millisecond)

	close(lookup.gate("Irvine"))
	s.Wait()

	got := s.Suggestions()
	require.Len(t, got, 1)
	assert.Equal(t, "Irvine Road", got[0].DisplayName, "stale lookup must not overwrite newer results")
}
