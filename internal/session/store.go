package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Simplici0/roofquote/internal/geo"
	"github.com/Simplici0/roofquote/internal/pricing"
	"github.com/Simplici0/roofquote/internal/quote"
	"github.com/Simplici0/roofquote/internal/units"
	"github.com/Simplici0/roofquote/internal/wizard"
)

const (
	defaultLookupTimeout = 10 * time.Second
	saveTimeout          = 5 * time.Second
)

var ErrUnknownMaterial = errors.New("unknown material")

// ContactField names one of the free-text contact fields.
type ContactField string

const (
	ContactName  ContactField = "name"
	ContactEmail ContactField = "email"
	ContactPhone ContactField = "phone"
)

// Options configures background work of a Store.
type Options struct {
	// Distance resolves road miles to the yard. Nil disables the lookup.
	Distance      geo.DistanceService
	LookupTimeout time.Duration
	// IdleTimeout is how long a Manager keeps an unused Store open.
	IdleTimeout time.Duration
}

// State is a read-only copy of a session.
type State struct {
	Record   quote.Record    `json:"record"`
	Position wizard.Position `json:"position"`
}

// Store owns the quote record and wizard position of one visitor session.
// Every mutation is written through to Storage before it returns.
type Store struct {
	storage  Storage
	distance geo.DistanceService
	timeout  time.Duration

	mu            sync.Mutex
	record        quote.Record
	position      wizard.Position
	distanceToken uint64
	wg            sync.WaitGroup
	pending       atomic.Int32
}

// Open loads a session from storage. Missing or unreadable values fall back
// to a fresh record and position.
func Open(ctx context.Context, storage Storage, opts Options) (*Store, error) {
	s := &Store{
		storage:  storage,
		distance: opts.Distance,
		timeout:  opts.LookupTimeout,
		record:   quote.New(),
		position: wizard.Start(),
	}
	if s.timeout <= 0 {
		s.timeout = defaultLookupTimeout
	}

	if err := s.loadRecord(ctx); err != nil {
		return nil, err
	}
	if err := s.loadPosition(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.startDistanceLookup()

	return s, nil
}

func (s *Store) loadRecord(ctx context.Context) error {
	raw, err := s.storage.Load(ctx, keyQuoteData)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", keyQuoteData, err)
	}

	rec := quote.New()
	if err := json.Unmarshal(raw, &rec); err != nil {
		log.Printf("session_state_corrupt key=%s error=%q", keyQuoteData, err)
		return nil
	}
	rec.Normalize()
	s.record = rec
	return nil
}

func (s *Store) loadPosition(ctx context.Context) error {
	raw, err := s.storage.Load(ctx, keyWizardPosition)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", keyWizardPosition, err)
	}

	var pos wizard.Position
	if err := json.Unmarshal(raw, &pos); err != nil {
		log.Printf("session_state_corrupt key=%s error=%q", keyWizardPosition, err)
		return nil
	}
	pos.Normalize()
	s.position = pos
	return nil
}

func (s *Store) saveRecord(ctx context.Context) error {
	raw, err := json.Marshal(s.record)
	if err != nil {
		return fmt.Errorf("encode %s: %w", keyQuoteData, err)
	}
	if err := s.storage.Save(ctx, keyQuoteData, raw); err != nil {
		return fmt.Errorf("save %s: %w", keyQuoteData, err)
	}
	return nil
}

func (s *Store) savePosition(ctx context.Context) error {
	raw, err := json.Marshal(s.position)
	if err != nil {
		return fmt.Errorf("encode %s: %w", keyWizardPosition, err)
	}
	if err := s.storage.Save(ctx, keyWizardPosition, raw); err != nil {
		return fmt.Errorf("save %s: %w", keyWizardPosition, err)
	}
	return nil
}

// Snapshot returns a copy of the current record and position.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Record: s.record.Clone(), Position: s.position}
}

// SelectShape picks a roof shape and moves the wizard to dimensions.
func (s *Store) SelectShape(ctx context.Context, shape quote.Shape) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record.SelectShape(shape)
	s.position = s.position.ShapeSelected()

	if err := s.saveRecord(ctx); err != nil {
		return err
	}
	return s.savePosition(ctx)
}

// SetUnit changes the measurement unit, converting existing measurements.
func (s *Store) SetUnit(ctx context.Context, u units.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record.ChangeUnit(u)
	return s.saveRecord(ctx)
}

// SetDimension stores one measurement in the current unit.
func (s *Store) SetDimension(ctx context.Context, d quote.Dimension, v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record.SetDimension(d, v)
	return s.saveRecord(ctx)
}

// SetDimensions stores several measurements with a single save. If the save
// fails none of them are kept.
func (s *Store) SetDimensions(ctx context.Context, values map[quote.Dimension]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.record.Clone()
	for _, d := range quote.Dimensions {
		if v, ok := values[d]; ok {
			s.record.SetDimension(d, v)
		}
	}
	if err := s.saveRecord(ctx); err != nil {
		s.record = prev
		return err
	}
	return nil
}

// SetMaterial selects a catalog material.
func (s *Store) SetMaterial(ctx context.Context, id string) error {
	if _, ok := pricing.LookupMaterial(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMaterial, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.record.Material = id
	return s.saveRecord(ctx)
}

// SetContact stores one contact field.
func (s *Store) SetContact(ctx context.Context, field ContactField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case ContactName:
		s.record.Name = value
	case ContactEmail:
		s.record.Email = value
	case ContactPhone:
		s.record.Phone = value
	default:
		return fmt.Errorf("unknown contact field %q", field)
	}
	return s.saveRecord(ctx)
}

// SetAddress stores the address text and, when an address suggestion was
// picked, its coordinates. Known coordinates trigger a background distance
// lookup.
func (s *Store) SetAddress(ctx context.Context, address string, lat, lon *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record.SetAddress(address, lat, lon)
	s.distanceToken++
	if err := s.saveRecord(ctx); err != nil {
		return err
	}
	s.startDistanceLookup()
	return nil
}

// GoTo jumps to step if it is accessible and reports whether it moved.
func (s *Store) GoTo(ctx context.Context, step wizard.Step) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.position.GoTo(s.record, step)
	if !ok {
		return false, nil
	}
	s.position = pos
	return true, s.savePosition(ctx)
}

// Advance moves to the next step. A *wizard.ValidationError means the
// current step is incomplete and nothing changed.
func (s *Store) Advance(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, err := s.position.Advance(s.record)
	if err != nil {
		return err
	}
	s.position = pos
	return s.savePosition(ctx)
}

// Retreat moves to the previous step.
func (s *Store) Retreat(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.position = s.position.Retreat()
	return s.savePosition(ctx)
}

// Reset discards the quote and starts over.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = quote.New()
	s.position = wizard.Start()
	s.distanceToken++

	if err := s.saveRecord(ctx); err != nil {
		return err
	}
	return s.savePosition(ctx)
}

// Wait blocks until background distance lookups have finished.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Busy reports whether a distance lookup is still running.
func (s *Store) Busy() bool {
	return s.pending.Load() > 0
}

// startDistanceLookup must be called with s.mu held.
func (s *Store) startDistanceLookup() {
	if s.distance == nil || !s.record.HasCoordinates() {
		return
	}

	token := s.distanceToken
	from := geo.Coordinate{Latitude: *s.record.Latitude, Longitude: *s.record.Longitude}

	s.wg.Add(1)
	s.pending.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.pending.Add(-1)
		s.resolveDistance(token, from)
	}()
}

func (s *Store) resolveDistance(token uint64, from geo.Coordinate) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	miles, err := s.distance.RoadDistanceMiles(ctx, from, geo.Origin)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.distanceToken {
		return
	}
	if err != nil {
		log.Printf("distance_lookup_error lat=%f lon=%f error=%q", from.Latitude, from.Longitude, err)
		return
	}

	// The lookup may have used up most of ctx; the save gets its own budget.
	saveCtx, cancelSave := context.WithTimeout(context.Background(), saveTimeout)
	defer cancelSave()

	s.record.DistanceToKA56PT = &miles
	if err := s.saveRecord(saveCtx); err != nil {
		log.Printf("distance_save_error error=%q", err)
	}
}
