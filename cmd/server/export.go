package main

import (
	"log"
	"net/http"

	"github.com/Simplici0/roofquote/internal/export"
	"github.com/Simplici0/roofquote/internal/session"
	"github.com/Simplici0/roofquote/internal/wizard"
)

const quoteNotReadyMessage = "Complete every step before requesting the quote."

type printViewData struct {
	baseViewData
	Summary    export.Summary
	Sections   []export.Section
	Disclaimer []string
}

// quoteReady reports whether the visitor has unlocked the quote step.
func quoteReady(state session.State) bool {
	return wizard.IsStepAccessible(state.Position, state.Record, wizard.StepQuote)
}

// currentSummary loads the visitor's summary; it writes the error response
// and returns false when the quote is not available.
func (s *server) currentSummary(w http.ResponseWriter, r *http.Request) (export.Summary, bool) {
	st, ok := s.openStore(w, r)
	if !ok {
		return export.Summary{}, false
	}
	state := st.Snapshot()
	if !quoteReady(state) {
		http.Error(w, quoteNotReadyMessage, http.StatusConflict)
		return export.Summary{}, false
	}
	return export.NewSummary(state.Record, s.clock()), true
}

func (s *server) handleQuotePrint(w http.ResponseWriter, r *http.Request) {
	summary, ok := s.currentSummary(w, r)
	if !ok {
		return
	}
	s.renderTemplate(w, "print.html", printViewData{
		Summary:    summary,
		Sections:   summary.Sections(),
		Disclaimer: export.Disclaimer,
	})
}

func (s *server) handleQuotePDF(w http.ResponseWriter, r *http.Request) {
	summary, ok := s.currentSummary(w, r)
	if !ok {
		return
	}
	out, err := export.GeneratePDF(summary)
	if err != nil {
		log.Printf("export_failed format=pdf id=%s err=%v", visitorID(r), err)
		http.Error(w, "failed to generate PDF", http.StatusInternalServerError)
		return
	}
	writeDownload(w, "application/pdf", "roof-quote.pdf", out)
}

func (s *server) handleQuoteExcel(w http.ResponseWriter, r *http.Request) {
	summary, ok := s.currentSummary(w, r)
	if !ok {
		return
	}
	out, err := export.GenerateExcel(summary)
	if err != nil {
		log.Printf("export_failed format=xlsx id=%s err=%v", visitorID(r), err)
		http.Error(w, "failed to generate spreadsheet", http.StatusInternalServerError)
		return
	}
	writeDownload(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "roof-quote.xlsx", out)
}

func (s *server) handleQuoteSummaryText(w http.ResponseWriter, r *http.Request) {
	summary, ok := s.currentSummary(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(export.Text(summary)))
}

func writeDownload(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(body)
}
