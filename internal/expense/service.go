package expense

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service owns the persisted expense list. Each call loads the whole list, changes it in
// memory and saves it back while holding mu, so calls on one Service never interleave.
type Service struct {
	storage     Storage
	now         func() time.Time
	newID       func() string
	requireNote bool
	logger      *slog.Logger

	mu sync.Mutex
}

type Option func(*Service)

// WithClock replaces time.Now as the source of CreatedAt for new expenses.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the UUID generator used for new expenses.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithRequiredNote makes a non-blank note mandatory on add, update and import.
func WithRequiredNote(required bool) Option {
	return func(s *Service) { s.requireNote = required }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(storage Storage, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RequireNote reports whether the note policy is enabled.
func (s *Service) RequireNote() bool {
	return s.requireNote
}

// List returns every stored expense, most recent first. Missing, unreadable or corrupt
// state yields an empty list.
func (s *Service) List(ctx context.Context) []Expense {
	s.mu.Lock()
	defer s.mu.Unlock()

	expenses, err := s.load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load expenses, starting empty", "error", err)
		return []Expense{}
	}

	return expenses
}

// ReplaceAll overwrites the stored list. The records are not validated.
func (s *Service) ReplaceAll(ctx context.Context, expenses []Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(ctx, expenses)
}

func (s *Service) Add(ctx context.Context, fields Fields) (*Expense, error) {
	if err := fields.validate(s.requireNote); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := Expense{
		ID:        s.newID(),
		Amount:    fields.Amount,
		Category:  fields.Category,
		Note:      fields.Note,
		CreatedAt: normalizeTime(s.now()),
	}

	expenses, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	expenses = append([]Expense{e}, expenses...)

	if err := s.save(ctx, expenses); err != nil {
		return nil, err
	}

	return &e, nil
}

// Update merges the non-nil fields of patch into the expense with the given id.
// It returns ErrNotFound when no such expense exists.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expenses, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(expenses, func(e Expense) bool { return e.ID == id })
	if idx < 0 {
		return nil, ErrNotFound
	}

	updated := expenses[idx]

	if patch.Amount != nil {
		updated.Amount = *patch.Amount
	}

	if patch.Category != nil {
		updated.Category = *patch.Category
	}

	if patch.Note != nil {
		updated.Note = *patch.Note
	}

	if err := updated.fields().validate(s.requireNote); err != nil {
		return nil, err
	}

	expenses[idx] = updated

	if err := s.save(ctx, expenses); err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete removes the expense with the given id and reports whether one was removed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expenses, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	before := len(expenses)

	kept := slices.DeleteFunc(expenses, func(e Expense) bool { return e.ID == id })
	if len(kept) == before {
		return false, nil
	}

	if err := s.save(ctx, kept); err != nil {
		return false, err
	}

	return true, nil
}

// ImportBulk stores one new expense per row and re-sorts the whole list by CreatedAt,
// newest first. It returns the number of imported rows.
func (s *Service) ImportBulk(ctx context.Context, rows []ImportRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	imported := make([]Expense, 0, len(rows))

	for i, row := range rows {
		fields := Fields{Amount: row.Amount, Category: row.Category, Note: row.Note}
		if err := fields.validate(s.requireNote); err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}

		imported = append(imported, Expense{
			ID:        s.newID(),
			Amount:    row.Amount,
			Category:  row.Category,
			Note:      row.Note,
			CreatedAt: normalizeTime(row.CreatedAt),
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	merged := append(existing, imported...)
	slices.SortStableFunc(merged, func(a, b Expense) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if err := s.save(ctx, merged); err != nil {
		return 0, err
	}

	return len(imported), nil
}

// normalizeTime matches the precision and zone of the persisted form so that a returned
// expense equals the one read back by List.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// load reads the stored list. Only a failed storage read is an error; a corrupt
// payload is logged and read as an empty list.
func (s *Service) load(ctx context.Context) ([]Expense, error) {
	data, err := s.storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading expenses: %w", err)
	}

	if len(data) == 0 {
		return []Expense{}, nil
	}

	expenses, err := decodeList(data)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding unreadable expense data", "error", err)
		return []Expense{}, nil
	}

	return expenses, nil
}

func (s *Service) save(ctx context.Context, expenses []Expense) error {
	data, err := encodeList(expenses)
	if err != nil {
		return err
	}

	if err := s.storage.Save(ctx, data); err != nil {
		return fmt.Errorf("saving expenses: %w", err)
	}

	return nil
}
