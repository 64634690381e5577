package moola

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is the key-value persistence the ledger reads from and writes to.
//
// Get returns ok=false for a missing key. Remove ignores missing keys.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// Ledger owns the list of expenses and mirrors it into a Store.
//
// New expenses are kept first, the list is most-recent-first in insertion
// order. A Ledger has a single writer, it is not safe for concurrent use.
type Ledger struct {
	store    Store
	log      zerolog.Logger
	newID    func() string
	expenses []Expense
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger used to report persistence failures.
func WithLogger(log zerolog.Logger) Option { return func(l *Ledger) { l.log = log } }

// WithIDs replaces the generator of expense ids.
func WithIDs(newID func() string) Option { return func(l *Ledger) { l.newID = newID } }

// NewLedger creates an empty ledger backed by store. Call Load to read the persisted expenses.
func NewLedger(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		log:      zerolog.Nop(),
		newID:    newID,
		expenses: make([]Expense, 0),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// newID returns a time ordered unique id.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Load replaces the in-memory expenses with the persisted ones.
//
// A missing key is an empty ledger. On error the ledger is left unchanged.
func (l *Ledger) Load(ctx context.Context) error {
	data, ok, err := l.store.Get(ctx, KeyExpenses)
	if err != nil {
		err = &PersistenceError{Op: "get", Key: KeyExpenses, Err: err}
		l.log.Warn().Err(err).Msg("cannot load expenses")
		return err
	}
	if !ok {
		l.expenses = make([]Expense, 0)
		return nil
	}
	expenses, err := DecodeExpenses(data)
	if err != nil {
		err = &PersistenceError{Op: "get", Key: KeyExpenses, Err: err}
		l.log.Warn().Err(err).Msg("cannot decode expenses")
		return err
	}
	l.expenses = expenses
	l.log.Debug().Int("count", len(expenses)).Msg("expenses loaded")
	return nil
}

// Expenses returns a copy of all expenses, most recent first.
func (l *Ledger) Expenses() []Expense { return slices.Clone(l.expenses) }

// Len returns the number of expenses.
func (l *Ledger) Len() int { return len(l.expenses) }

// Get returns the expense with this id.
func (l *Ledger) Get(id string) (Expense, bool) {
	if i := l.index(id); i >= 0 {
		return l.expenses[i], true
	}
	return Expense{}, false
}

func (l *Ledger) index(id string) int {
	return slices.IndexFunc(l.expenses, func(e Expense) bool { return e.ID == id })
}

// Add validates the input and prepends a new expense.
func (l *Ledger) Add(ctx context.Context, in ExpenseInput) (Expense, error) {
	e, err := in.validate()
	if err != nil {
		return Expense{}, err
	}
	e.ID = l.newID()
	next := make([]Expense, 0, len(l.expenses)+1)
	next = append(append(next, e), l.expenses...)
	if err := l.commit(ctx, next); err != nil {
		return Expense{}, err
	}
	l.log.Debug().Str("id", e.ID).Stringer("amount", e.Amount).Msg("expense added")
	return e, nil
}

// Edit replaces the fields of an existing expense, keeping its id and position.
//
// NextDue is recomputed from the edited date and frequency, even when it
// falls in the past. It returns ErrNotFound if there is no such expense.
func (l *Ledger) Edit(ctx context.Context, id string, in ExpenseInput) (Expense, error) {
	i := l.index(id)
	if i < 0 {
		return Expense{}, ErrNotFound
	}
	e, err := in.validate()
	if err != nil {
		return Expense{}, err
	}
	e.ID = id
	next := slices.Clone(l.expenses)
	next[i] = e
	if err := l.commit(ctx, next); err != nil {
		return Expense{}, err
	}
	return e, nil
}

// Remove deletes the expense with this id. It returns false if there was none.
func (l *Ledger) Remove(ctx context.Context, id string) (bool, error) {
	i := l.index(id)
	if i < 0 {
		return false, nil
	}
	next := slices.Delete(slices.Clone(l.expenses), i, i+1)
	if err := l.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// ClearAll removes every expense.
//
// Asking for a confirmation is the caller's job.
func (l *Ledger) ClearAll(ctx context.Context) error {
	if err := l.store.Remove(ctx, KeyExpenses); err != nil {
		err = &PersistenceError{Op: "remove", Key: KeyExpenses, Err: err}
		l.log.Warn().Err(err).Msg("cannot clear expenses")
		return err
	}
	l.expenses = make([]Expense, 0)
	return nil
}

// commit persists next and only then makes it the current list.
func (l *Ledger) commit(ctx context.Context, next []Expense) error {
	data, err := EncodeExpenses(next)
	if err != nil {
		return err
	}
	if err := l.store.Set(ctx, KeyExpenses, data); err != nil {
		err = &PersistenceError{Op: "set", Key: KeyExpenses, Err: err}
		l.log.Warn().Err(err).Msg("expense change not saved")
		return err
	}
	l.expenses = next
	return nil
}

// IsPersistence reports whether err comes from the store.
func IsPersistence(err error) bool {
	var p *PersistenceError
	return errors.As(err, &p)
}
