package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/roofquote/internal/pricing"
	"github.com/Simplici0/roofquote/internal/quote"
	"github.com/Simplici0/roofquote/internal/session"
	"github.com/Simplici0/roofquote/internal/units"
	"github.com/Simplici0/roofquote/internal/wizard"
)

type estimateView struct {
	Area                  string  `json:"area"`
	PricePerSqm           float64 `json:"pricePerSqm"`
	Multiplier            float64 `json:"multiplier"`
	WorkCost              string  `json:"workCost"`
	TravelExpenses        string  `json:"travelExpenses"`
	AccommodationExpenses string  `json:"accommodationExpenses"`
	Subtotal              string  `json:"subtotal"`
	VAT                   string  `json:"vat"`
	Total                 string  `json:"total"`
	DaysNeeded            int     `json:"daysNeeded"`
}

type wizardView struct {
	Record     quote.Record       `json:"record"`
	Position   wizard.Position    `json:"position"`
	Steps      []wizard.Indicator `json:"steps"`
	CanAdvance bool               `json:"canAdvance"`
	Estimate   estimateView       `json:"estimate"`
	Materials  []pricing.Material `json:"materials"`
}

func newWizardView(state session.State) wizardView {
	res := pricing.Calculate(state.Record)
	return wizardView{
		Record:     state.Record,
		Position:   state.Position,
		Steps:      wizard.Indicators(state.Position, state.Record),
		CanAdvance: state.Position.CanAdvance(state.Record),
		Estimate: estimateView{
			Area:                  pricing.Money(res.Breakdown.Area),
			PricePerSqm:           res.Breakdown.PricePerSqm,
			Multiplier:            res.Breakdown.Multiplier,
			WorkCost:              pricing.Money(res.Breakdown.WorkCost),
			TravelExpenses:        pricing.Money(res.Breakdown.TravelExpenses),
			AccommodationExpenses: pricing.Money(res.Breakdown.AccommodationExpenses),
			Subtotal:              pricing.Money(res.Totals.Subtotal),
			VAT:                   pricing.Money(res.Totals.VAT),
			Total:                 pricing.Money(res.Totals.Total),
			DaysNeeded:            res.DaysNeeded,
		},
		Materials: pricing.Catalog,
	}
}

type errorResponse struct {
	Error string      `json:"error"`
	Step  wizard.Step `json:"step,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("json_encode_failed err=%v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeStoreError maps a Store error to a response.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *wizard.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: ve.Message, Step: ve.Step})
	case errors.Is(err, session.ErrUnknownMaterial), errors.Is(err, wizard.ErrUnknownStep):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("session_update_failed id=%s path=%s err=%v", visitorID(r), r.URL.Path, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to save quote")
	}
}

func (s *server) openStore(w http.ResponseWriter, r *http.Request) (*session.Store, bool) {
	st, err := s.sessions.Get(r.Context(), visitorID(r))
	if err != nil {
		log.Printf("session_open_failed id=%s err=%v", visitorID(r), err)
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return nil, false
	}
	return st, true
}

// update runs fn against the visitor's store and answers with the new
// wizard state.
func (s *server) update(w http.ResponseWriter, r *http.Request, fn func(st *session.Store) error) {
	st, ok := s.openStore(w, r)
	if !ok {
		return
	}
	if err := fn(st); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWizardView(st.Snapshot()))
}

func (s *server) handleWizardState(w http.ResponseWriter, r *http.Request) {
	st, ok := s.openStore(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newWizardView(st.Snapshot()))
}

func (s *server) handleSelectShape(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid form")
		return
	}
	shape, err := quote.ParseShape(r.FormValue("shape"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.update(w, r, func(st *session.Store) error {
		return st.SelectShape(r.Context(), shape)
	})
}

func (s *server) handleSetUnit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid form")
		return
	}
	u, err := units.Parse(r.FormValue("unit"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.update(w, r, func(st *session.Store) error {
		return st.SetUnit(r.Context(), u)
	})
}

func (s *server) handleSetDimensions(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid form")
		return
	}
	values, err := parseDimensionForm(r.PostForm)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.update(w, r, func(st *session.Store) error {
		return st.SetDimensions(r.Context(), values)
	})
}

func (s *server) handleSetMaterial(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid form")
		return
	}
	id := strings.TrimSpace(r.FormValue("material"))
	s.update(w, r, func(st *session.Store) error {
		return st.SetMaterial(r.Context(), id)
	})
}

func (s *server) handleSetContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid form")
		return
	}
	s.update(w, r, func(st *session.Store) error {
		for _, field := range []session.ContactField{session.ContactName, session.ContactEmail, session.ContactPhone} {
			if _, ok := r.PostForm[string(field)]; !ok {
				continue
			}
			if err := st.SetContact(r.Context(), field, r.PostForm.Get(string(field))); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *server) handleSetAddress(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid form")
		return
	}
	lat, lon, err := parseCoordinates(r.PostForm.Get("latitude"), r.PostForm.Get("longitude"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	address := r.PostForm.Get("address")
	s.update(w, r, func(st *session.Store) error {
		return st.SetAddress(r.Context(), address, lat, lon)
	})
}

func (s *server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(st *session.Store) error {
		return st.Advance(r.Context())
	})
}

func (s *server) handleRetreat(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(st *session.Store) error {
		return st.Retreat(r.Context())
	})
}

// handleGoTo ignores jumps to steps that are not reachable yet.
func (s *server) handleGoTo(w http.ResponseWriter, r *http.Request) {
	step, err := wizard.ParseStep(chi.URLParam(r, "step"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.update(w, r, func(st *session.Store) error {
		_, err := st.GoTo(r.Context(), step)
		return err
	})
}

func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(st *session.Store) error {
		return st.Reset(r.Context())
	})
}

func formatGBP(v float64) string {
	return pricing.FormatGBP(v)
}
