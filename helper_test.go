package moola

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"testing"

	"github.com/etnz/moola/date"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var errDisk = errors.New("disk full")

// memStore is a Store for tests that can be told to fail.
type memStore struct {
	data    map[string]string
	failGet bool
	failSet bool
	sets    int
}

func newMemStore() *memStore { return &memStore{data: make(map[string]string)} }

func (s *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.failGet {
		return "", false, errDisk
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memStore) Set(ctx context.Context, key, value string) error {
	if s.failSet {
		return errDisk
	}
	s.sets++
	s.data[key] = value
	return nil
}

func (s *memStore) Remove(ctx context.Context, keys ...string) error {
	if s.failSet {
		return errDisk
	}
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *memStore) snapshot() map[string]string { return maps.Clone(s.data) }

// seqIDs returns an id generator producing "e1", "e2", ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("e%d", n)
	}
}

// newTestLedger returns an empty loaded ledger with predictable ids.
func newTestLedger(t *testing.T) (*Ledger, *memStore) {
	t.Helper()
	s := newMemStore()
	l := NewLedger(s, WithIDs(seqIDs()))
	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	return l, s
}

// mustAdd adds an expense or fails the test.
func mustAdd(t *testing.T, l *Ledger, amount, note, on string) Expense {
	t.Helper()
	e, err := l.Add(context.Background(), ExpenseInput{Amount: amount, Note: note, Date: date.MustParse(on)})
	if err != nil {
		t.Fatalf("Add(%q, %q, %s) unexpected error: %v", amount, note, on, err)
	}
	return e
}

// mustAddRecurring adds a recurring expense or fails the test.
func mustAddRecurring(t *testing.T, l *Ledger, amount, note, on string, f Frequency) Expense {
	t.Helper()
	e, err := l.Add(context.Background(), ExpenseInput{Amount: amount, Note: note, Date: date.MustParse(on), Recurring: true, Freq: f})
	if err != nil {
		t.Fatalf("Add(%q, %q, %s, %s) unexpected error: %v", amount, note, on, f, err)
	}
	return e
}

// expenseOpts compares expenses with go-cmp.
var expenseOpts = cmp.Options{cmp.Comparer(Amount.Equal), cmp.AllowUnexported(date.Date{})}

// cmpIgnoreDoc ignores the raw preferences document.
var cmpIgnoreDoc = cmpopts.IgnoreUnexported(Preferences{})
