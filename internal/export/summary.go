package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Simplici0/roofquote/internal/pricing"
	"github.com/Simplici0/roofquote/internal/quote"
)

// Disclaimer is printed under every estimate.
var Disclaimer = []string{
	"*This is an estimate based on the information provided",
	"Final price may vary based on site inspection and additional requirements.",
}

// Field is one label/value pair of a summary section.
type Field struct {
	Label string
	Value string
}

// Section is a titled group of fields.
type Section struct {
	Title  string
	Fields []Field
}

// Summary is a read-only view of a finished quote for printing and
// downloads.
type Summary struct {
	Title       string
	GeneratedAt time.Time
	Record      quote.Record
	Result      pricing.Result
}

// NewSummary computes the estimate for rec.
func NewSummary(rec quote.Record, generatedAt time.Time) Summary {
	return Summary{
		Title:       "Your Roof Quote",
		GeneratedAt: generatedAt,
		Record:      rec.Clone(),
		Result:      pricing.Calculate(rec),
	}
}

// MaterialName returns the display name of the selected material.
func (s Summary) MaterialName() string {
	if m, ok := pricing.LookupMaterial(s.Record.Material); ok {
		return m.Name
	}
	return s.Record.Material
}

// Sections returns the contact, project, measurement and cost sections.
func (s Summary) Sections() []Section {
	return []Section{s.contact(), s.project(), s.measurements(), s.costs()}
}

func (s Summary) contact() Section {
	r := s.Record
	return Section{Title: "Contact Details", Fields: []Field{
		{"Name", r.Name},
		{"Email", r.Email},
		{"Phone", r.Phone},
		{"Address", r.Address},
	}}
}

func (s Summary) project() Section {
	return Section{Title: "Project Summary", Fields: []Field{
		{"Roof Shape", capitalize(s.Record.Shape.Label())},
		{"Estimated Total Area", pricing.Money(s.Result.Breakdown.Area) + " m²"},
		{"Complexity", capitalize(string(s.Record.Complexity))},
		{"Material", s.MaterialName()},
		{"Estimated Duration", fmt.Sprintf("%d days", s.Result.DaysNeeded)},
	}}
}

func (s Summary) measurements() Section {
	r := s.Record
	fields := []Field{
		{"Main Length", s.measure(r.Length)},
		{"Main Width", s.measure(r.Width)},
	}
	if r.Shape.HasSectionB() && r.LengthB != 0 && r.WidthB != 0 {
		fields = append(fields,
			Field{"Section B Length", s.measure(r.LengthB)},
			Field{"Section B Width", s.measure(r.WidthB)},
		)
	}
	if r.Shape.HasSectionC() && r.LengthC != 0 && r.WidthC != 0 {
		fields = append(fields,
			Field{"Section C Length", s.measure(r.LengthC)},
			Field{"Section C Width", s.measure(r.WidthC)},
		)
	}
	return Section{Title: "Measurements", Fields: fields}
}

func (s Summary) costs() Section {
	t := s.Result.Totals
	return Section{Title: "Cost Breakdown", Fields: []Field{
		{"Materials and Labour", pricing.FormatGBP(t.Subtotal)},
		{"VAT", pricing.FormatGBP(t.VAT)},
		{"Total", pricing.FormatGBP(t.Total)},
	}}
}

func (s Summary) measure(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + string(s.Record.Unit)
}

func capitalize(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Text renders the summary as plain text.
func Text(s Summary) string {
	var b strings.Builder
	b.WriteString(s.Title)
	b.WriteString("\n")
	b.WriteString("Generated: " + s.GeneratedAt.Format("2006-01-02 15:04"))
	b.WriteString("\n")

	for _, sec := range s.Sections() {
		b.WriteString("\n" + sec.Title + "\n")
		for _, f := range sec.Fields {
			fmt.Fprintf(&b, "%s: %s\n", f.Label, f.Value)
		}
	}

	b.WriteString("\n")
	for _, line := range Disclaimer {
		b.WriteString(line + "\n")
	}
	return b.String()
}
