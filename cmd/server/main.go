package main

import (
	"database/sql"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/roofquote/internal/config"
	"github.com/Simplici0/roofquote/internal/db"
	"github.com/Simplici0/roofquote/internal/geo"
	"github.com/Simplici0/roofquote/internal/migrations"
	"github.com/Simplici0/roofquote/internal/seed"
	"github.com/Simplici0/roofquote/internal/session"
)

const defaultTemplateDir = "web/templates"

type server struct {
	auth        *authService
	db          *sql.DB
	sessions    *session.Manager
	suggesters  *suggesterPool
	templateDir string
	now         func() time.Time
}

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
}

type loginViewData struct {
	baseViewData
	Email string
}

type homeViewData struct {
	baseViewData
	Wizard wizardView
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		log.Fatalf("failed to run database migrations: %v", err)
	}

	stats, err := seed.Run(database, seed.Config{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword})
	if err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}
	log.Printf("seed_complete inserts=%d updates=%d", stats.Inserts, stats.Updates)

	routing := geo.NewOSRMClient(cfg.OSRMBaseURL, nil)
	geocoder := geo.NewNominatimClient(cfg.NominatimBaseURL, cfg.GeocoderUserAgent, nil)

	srv := &server{
		auth: newAuthService(database, cfg.SessionSecret),
		db:   database,
		sessions: session.NewManager(
			func(id string) session.Storage { return session.NewSQLStorage(database, id) },
			session.Options{Distance: routing, LookupTimeout: cfg.LookupTimeout, IdleTimeout: cfg.IdleTimeout},
		),
		suggesters: newSuggesterPool(cfg.IdleTimeout, func() *geo.Suggester {
			return geo.NewSuggester(geocoder, cfg.SuggestDebounce, cfg.LookupTimeout)
		}),
		templateDir: defaultTemplateDir,
		now:         time.Now,
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s env=%s", addr, cfg.AppEnv)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.auth.visitorMiddleware)

	r.Get("/", s.handleHome)
	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLoginSubmit)
	r.Post("/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Get("/wizard", s.handleWizardState)
		r.Post("/wizard/shape", s.handleSelectShape)
		r.Post("/wizard/unit", s.handleSetUnit)
		r.Post("/wizard/dimensions", s.handleSetDimensions)
		r.Post("/wizard/material", s.handleSetMaterial)
		r.Post("/wizard/contact", s.handleSetContact)
		r.Post("/wizard/address", s.handleSetAddress)
		r.Post("/wizard/next", s.handleAdvance)
		r.Post("/wizard/back", s.handleRetreat)
		r.Post("/wizard/goto/{step}", s.handleGoTo)
		r.Post("/wizard/reset", s.handleReset)
		r.Post("/wizard/submit", s.handleSubmit)

		r.Post("/address/query", s.handleAddressQuery)
		r.Get("/address/suggestions", s.handleAddressSuggestions)
	})

	r.Get("/quote/print", s.handleQuotePrint)
	r.Get("/quote/pdf", s.handleQuotePDF)
	r.Get("/quote/xlsx", s.handleQuoteExcel)
	r.Get("/quote/text", s.handleQuoteSummaryText)

	r.Group(func(r chi.Router) {
		r.Use(s.auth.requireAdmin)
		r.Get("/quotes", s.handleQuotesList)
		r.Get("/quotes/{id}/text", s.handleQuoteText)
	})

	return r
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	st, ok := s.openStore(w, r)
	if !ok {
		return
	}
	s.renderTemplate(w, "home.html", homeViewData{Wizard: newWizardView(st.Snapshot())})
}

func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if isAdmin(r, s.auth) {
		http.Redirect(w, r, "/quotes", http.StatusSeeOther)
		return
	}
	s.renderTemplate(w, "login.html", loginViewData{})
}

func (s *server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	valid, err := s.auth.validateCredentials(r.Context(), email, password)
	if err != nil {
		log.Printf("login_failed email=%s err=%v", email, err)
		http.Error(w, "authentication error", http.StatusInternalServerError)
		return
	}
	if !valid {
		w.WriteHeader(http.StatusUnauthorized)
		s.renderTemplate(w, "login.html", loginViewData{
			baseViewData: baseViewData{ErrorMessage: "Invalid credentials. Please try again."},
			Email:        email,
		})
		return
	}

	s.auth.setAdminCookie(w, email)
	http.Redirect(w, r, "/quotes", http.StatusSeeOther)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearAdminCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

var templateFuncs = template.FuncMap{
	"gbp": formatGBP,
}

func (s *server) renderTemplate(w http.ResponseWriter, page string, data any) {
	dir := s.templateDir
	if dir == "" {
		dir = defaultTemplateDir
	}

	templates, err := template.New("layout.html").Funcs(templateFuncs).ParseFiles(
		filepath.Join(dir, "layout.html"),
		filepath.Join(dir, page),
	)
	if err != nil {
		log.Printf("template_parse_failed page=%s err=%v", page, err)
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Printf("template_render_failed page=%s err=%v", page, err)
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}
}

func (s *server) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
