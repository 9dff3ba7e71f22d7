package main

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Simplici0/roofquote/internal/db"
	"github.com/Simplici0/roofquote/internal/geo"
	"github.com/Simplici0/roofquote/internal/migrations"
	"github.com/Simplici0/roofquote/internal/session"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type staticLookup struct {
	results []geo.Suggestion
}

func (l staticLookup) Search(context.Context, string) ([]geo.Suggestion, error) {
	return l.results, nil
}

type fixedDistance float64

func (d fixedDistance) RoadDistanceMiles(context.Context, geo.Coordinate, geo.Coordinate) (float64, error) {
	return float64(d), nil
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, migrations.Up(database))
	return database
}

func newTestServer(t *testing.T, opts session.Options) *server {
	t.Helper()

	database := newTestDB(t)
	srv := &server{
		auth: newAuthService(database, "test-secret"),
		db:   database,
		sessions: session.NewManager(
			func(id string) session.Storage { return session.NewSQLStorage(database, id) },
			opts,
		),
		suggesters: newSuggesterPool(opts.IdleTimeout, func() *geo.Suggester {
			return geo.NewSuggester(staticLookup{results: []geo.Suggestion{
				{DisplayName: "1 High Street, Kilmarnock", Latitude: 55.61, Longitude: -4.49},
			}}, time.Millisecond, time.Second)
		}),
		templateDir: "../../web/templates",
		now:         func() time.Time { return testNow },
	}
	t.Cleanup(srv.sessions.Wait)
	return srv
}

// testClient keeps the cookies a browser would send back.
type testClient struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newTestClient(t *testing.T, srv *server) *testClient {
	return &testClient{t: t, handler: srv.routes(), cookies: map[string]*http.Cookie{}}
}

func (c *testClient) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)

	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
	return rr
}

func (c *testClient) post(path string, kv ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	form := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		form.Set(kv[i], kv[i+1])
	}
	return c.do(http.MethodPost, path, form)
}

func (c *testClient) get(path string) *httptest.ResponseRecorder {
	c.t.Helper()
	return c.do(http.MethodGet, path, nil)
}

// completeWizard walks a visitor to the quote step with a 10x5 m rectangle.
func completeWizard(t *testing.T, c *testClient) {
	t.Helper()

	steps := []struct {
		path string
		kv   []string
	}{
		{"/api/wizard/shape", []string{"shape", "rectangle"}},
		{"/api/wizard/dimensions", []string{"length", "10", "width", "5"}},
		{"/api/wizard/next", nil},
		{"/api/wizard/next", nil},
		{"/api/wizard/next", nil},
		{"/api/wizard/contact", []string{"name", "Ada Lovelace", "email", "ada@example.com", "phone", "07700 900000"}},
		{"/api/wizard/address", []string{"address", "1 High Street, Kilmarnock"}},
		{"/api/wizard/next", nil},
	}
	for _, s := range steps {
		rr := c.post(s.path, s.kv...)
		require.Equal(t, http.StatusOK, rr.Code, "%s: %s", s.path, rr.Body.String())
	}
}
