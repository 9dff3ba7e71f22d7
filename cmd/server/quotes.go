package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/roofquote/internal/export"
	"github.com/Simplici0/roofquote/internal/pricing"
	"github.com/Simplici0/roofquote/internal/quote"
)

var errQuoteNotFound = errors.New("quote not found")

type quoteListItem struct {
	ID        int64
	CreatedAt string
	Name      string
	Email     string
	Address   string
	Total     float64
}

type quotesViewData struct {
	baseViewData
	Query  string
	Quotes []quoteListItem
}

type quoteDetail struct {
	ID        int64
	CreatedAt time.Time
	Record    quote.Record
	Breakdown pricing.Breakdown
	Totals    pricing.Totals
	Days      int
}

type submitResponse struct {
	ID    int64  `json:"id"`
	Total string `json:"total"`
}

// handleSubmit stores the visitor's finished quote for the admin list.
func (s *server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	st, ok := s.openStore(w, r)
	if !ok {
		return
	}
	state := st.Snapshot()
	if !quoteReady(state) {
		writeJSONError(w, http.StatusConflict, quoteNotReadyMessage)
		return
	}

	result := pricing.Calculate(state.Record)
	id, err := s.insertQuote(r.Context(), visitorID(r), state.Record, result)
	if err != nil {
		log.Printf("quote_submit_failed id=%s err=%v", visitorID(r), err)
		writeJSONError(w, http.StatusInternalServerError, "failed to submit quote")
		return
	}

	log.Printf("quote_submitted quote_id=%d visitor=%s total=%s", id, visitorID(r), pricing.Money(result.Totals.Total))
	writeJSON(w, http.StatusCreated, submitResponse{ID: id, Total: pricing.Money(result.Totals.Total)})
}

func (s *server) insertQuote(ctx context.Context, sessionID string, rec quote.Record, result pricing.Result) (int64, error) {
	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("encode record: %w", err)
	}
	breakdownJSON, err := json.Marshal(result.Breakdown)
	if err != nil {
		return 0, fmt.Errorf("encode breakdown: %w", err)
	}
	totalsJSON, err := json.Marshal(result.Totals)
	if err != nil {
		return 0, fmt.Errorf("encode totals: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (
			created_at, session_id, name, email, phone, address,
			record_json, breakdown_json, totals_json, days_needed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.clock().UTC().Format(sqliteTimeLayout),
		sessionID,
		rec.Name,
		rec.Email,
		rec.Phone,
		rec.Address,
		string(recordJSON),
		string(breakdownJSON),
		string(totalsJSON),
		result.DaysNeeded,
	)
	if err != nil {
		return 0, fmt.Errorf("insert quote: %w", err)
	}
	return res.LastInsertId()
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	quotes, err := s.listQuotes(r.Context(), query)
	if err != nil {
		log.Printf("quote_list_failed err=%v", err)
		http.Error(w, "failed to load quotes", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "quotes.html", quotesViewData{
		Query:  query,
		Quotes: quotes,
	})
}

func (s *server) listQuotes(ctx context.Context, query string) ([]quoteListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, name, email, address, totals_json
		FROM quotes
		WHERE (? = '' OR name LIKE ? OR email LIKE ? OR address LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]quoteListItem, 0)
	for rows.Next() {
		var item quoteListItem
		var totalsJSON string
		if err := rows.Scan(&item.ID, &item.CreatedAt, &item.Name, &item.Email, &item.Address, &totalsJSON); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		item.Total = extractTotalFromJSON(totalsJSON)
		quotes = append(quotes, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}

	return quotes, nil
}

func extractTotalFromJSON(totalsJSON string) float64 {
	var totals pricing.Totals
	if err := json.Unmarshal([]byte(totalsJSON), &totals); err != nil {
		return 0
	}
	return totals.Total
}

// getQuoteDetail reads the values stored at submission time; prices are
// not recalculated.
func (s *server) getQuoteDetail(ctx context.Context, id int64) (quoteDetail, error) {
	var (
		detail        quoteDetail
		createdAt     string
		recordJSON    string
		breakdownJSON string
		totalsJSON    string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, record_json, breakdown_json, totals_json, days_needed
		FROM quotes
		WHERE id = ?
	`, id).Scan(&detail.ID, &createdAt, &recordJSON, &breakdownJSON, &totalsJSON, &detail.Days)
	if errors.Is(err, sql.ErrNoRows) {
		return quoteDetail{}, errQuoteNotFound
	}
	if err != nil {
		return quoteDetail{}, fmt.Errorf("query quote %d: %w", id, err)
	}

	if err := json.Unmarshal([]byte(recordJSON), &detail.Record); err != nil {
		return quoteDetail{}, fmt.Errorf("decode quote %d record: %w", id, err)
	}
	if err := json.Unmarshal([]byte(breakdownJSON), &detail.Breakdown); err != nil {
		return quoteDetail{}, fmt.Errorf("decode quote %d breakdown: %w", id, err)
	}
	if err := json.Unmarshal([]byte(totalsJSON), &detail.Totals); err != nil {
		return quoteDetail{}, fmt.Errorf("decode quote %d totals: %w", id, err)
	}
	detail.Record.Normalize()
	detail.CreatedAt = parseSQLiteTime(createdAt)

	return detail, nil
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid quote id", http.StatusBadRequest)
		return
	}

	detail, err := s.getQuoteDetail(r.Context(), id)
	if errors.Is(err, errQuoteNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("quote_detail_failed quote_id=%d err=%v", id, err)
		http.Error(w, "failed to load quote", http.StatusInternalServerError)
		return
	}

	summary := export.Summary{
		Title:       fmt.Sprintf("Roof Quote #%d", detail.ID),
		GeneratedAt: detail.CreatedAt,
		Record:      detail.Record,
		Result: pricing.Result{
			Breakdown:  detail.Breakdown,
			Totals:     detail.Totals,
			DaysNeeded: detail.Days,
		},
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(export.Text(summary)))
}

const sqliteTimeLayout = "2006-01-02 15:04:05"

// parseSQLiteTime accepts both the driver's RFC 3339 rendering and the
// plain CURRENT_TIMESTAMP format.
func parseSQLiteTime(raw string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, sqliteTimeLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
