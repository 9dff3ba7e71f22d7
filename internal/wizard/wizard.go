package wizard

import (
	"errors"
	"fmt"

	"github.com/Simplici0/roofquote/internal/quote"
)

// Step is one screen of the estimator.
type Step string

const (
	StepShape      Step = "shape"
	StepDimensions Step = "dimensions"
	StepComplexity Step = "complexity"
	StepMaterial   Step = "material"
	StepContact    Step = "contact"
	StepQuote      Step = "quote"
)

// Steps lists every step in wizard order.
var Steps = []Step{StepShape, StepDimensions, StepComplexity, StepMaterial, StepContact, StepQuote}

type transition struct {
	rank int
	next Step
	prev Step
	// auto steps are left only by their own event, never by Advance.
	auto bool
}

// transitions is the linear step graph. An empty next or prev marks an end.
var transitions = map[Step]transition{
	StepShape:      {rank: 0, next: StepDimensions, auto: true},
	StepDimensions: {rank: 1, next: StepComplexity, prev: StepShape},
	StepComplexity: {rank: 2, next: StepMaterial, prev: StepDimensions},
	StepMaterial:   {rank: 3, next: StepContact, prev: StepComplexity},
	StepContact:    {rank: 4, next: StepQuote, prev: StepMaterial},
	StepQuote:      {rank: 5, prev: StepContact},
}

var ErrUnknownStep = errors.New("unknown step")

// ValidationError blocks leaving a step whose inputs are incomplete.
// Message is meant for the visitor.
type ValidationError struct {
	Step    Step
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s step incomplete", e.Step)
}

var (
	ErrMeasurementsIncomplete = &ValidationError{
		Step:    StepDimensions,
		Message: "Please fill in all required measurements before proceeding.",
	}
	ErrContactIncomplete = &ValidationError{
		Step:    StepContact,
		Message: "Please fill in all contact details before proceeding.",
	}
)

// ParseStep returns the Step for a step identifier.
func ParseStep(raw string) (Step, error) {
	s := Step(raw)
	if _, ok := transitions[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStep, raw)
	}
	return s, nil
}

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Number is the 1-based position of the step, as shown in the progress bar.
func (s Step) Number() int {
	return transitions[s].rank + 1
}

// After reports whether s comes later in the wizard than o.
func (s Step) After(o Step) bool {
	return transitions[s].rank > transitions[o].rank
}

// gate returns the validation error for leaving s, if s is gated and the
// record does not satisfy it.
func gate(s Step, rec quote.Record) *ValidationError {
	switch s {
	case StepDimensions:
		if !rec.MeasurementsComplete() {
			return ErrMeasurementsIncomplete
		}
	case StepContact:
		if !rec.ContactComplete() {
			return ErrContactIncomplete
		}
	}
	return nil
}

// Position tracks where a visitor is and how far they have been.
// Furthest never falls behind Current.
type Position struct {
	Current  Step `json:"currentStep"`
	Furthest Step `json:"furthestStep"`
}

// Start is the position of a fresh session.
func Start() Position {
	return Position{Current: StepShape, Furthest: StepShape}
}

// Normalize repairs a decoded position.
func (p *Position) Normalize() {
	if !p.Current.Valid() {
		p.Current = StepShape
	}
	if !p.Furthest.Valid() {
		p.Furthest = StepShape
	}
	if p.Current.After(p.Furthest) {
		p.Furthest = p.Current
	}
}

func (p Position) reach(s Step) Position {
	p.Current = s
	if s.After(p.Furthest) {
		p.Furthest = s
	}
	return p
}

// IsStepAccessible reports whether the visitor may jump to step. Steps past
// the furthest reached, and steps behind an unmet gate, are closed.
func IsStepAccessible(p Position, rec quote.Record, step Step) bool {
	if !step.Valid() || step.After(p.Furthest) {
		return false
	}
	if step.After(StepDimensions) && gate(StepDimensions, rec) != nil {
		return false
	}
	if step.After(StepContact) && gate(StepContact, rec) != nil {
		return false
	}
	return true
}

// GoTo moves to step when it is accessible and reports whether it moved.
func (p Position) GoTo(rec quote.Record, step Step) (Position, bool) {
	if !IsStepAccessible(p, rec, step) {
		return p, false
	}
	p.Current = step
	return p, true
}

// CanAdvance reports whether Advance would succeed.
func (p Position) CanAdvance(rec quote.Record) bool {
	t := transitions[p.Current]
	return !t.auto && t.next != "" && gate(p.Current, rec) == nil
}

// Advance moves one step forward. Leaving dimensions or contact requires
// the corresponding validation to pass. Advancing from the shape step,
// which is left by picking a shape, or from the last step is a no-op.
func (p Position) Advance(rec quote.Record) (Position, error) {
	if transitions[p.Current].auto {
		return p, nil
	}
	if verr := gate(p.Current, rec); verr != nil {
		return p, verr
	}
	next := transitions[p.Current].next
	if next == "" {
		return p, nil
	}
	return p.reach(next), nil
}

// Retreat moves one step back without validation.
func (p Position) Retreat() Position {
	if prev := transitions[p.Current].prev; prev != "" {
		p.Current = prev
	}
	return p
}

// ShapeSelected is the automatic move to dimensions after a shape is
// picked.
func (p Position) ShapeSelected() Position {
	return p.reach(StepDimensions)
}

// Indicator is the progress bar state of one step.
type Indicator struct {
	Step       Step `json:"step"`
	Number     int  `json:"number"`
	Current    bool `json:"current"`
	Accessible bool `json:"accessible"`
}

// Indicators returns the progress bar for a position.
func Indicators(p Position, rec quote.Record) []Indicator {
	out := make([]Indicator, 0, len(Steps))
	for _, s := range Steps {
		out = append(out, Indicator{
			Step:       s,
			Number:     s.Number(),
			Current:    s == p.Current,
			Accessible: IsStepAccessible(p, rec, s),
		})
	}
	return out
}
