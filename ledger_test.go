package moola

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/etnz/moola/date"
	"github.com/google/go-cmp/cmp"
)

func ids(expenses []Expense) []string {
	var out []string
	for _, e := range expenses {
		out = append(out, e.ID)
	}
	return out
}

func TestLedger_AddPrepends(t *testing.T) {
	l, s := newTestLedger(t)
	mustAdd(t, l, "10", "coffee", "2025-03-01")
	mustAdd(t, l, "20", "lunch", "2025-02-01")
	mustAdd(t, l, "5.5", "bus", "2025-03-02")

	if got, want := ids(l.Expenses()), []string{"e3", "e2", "e1"}; !cmp.Equal(got, want) {
		t.Errorf("Expenses() ids = %v, want %v", got, want)
	}

	// A fresh ledger on the same store sees the same list.
	reloaded := NewLedger(s)
	if err := reloaded.Load(context.Background()); err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if diff := cmp.Diff(l.Expenses(), reloaded.Expenses(), expenseOpts); diff != "" {
		t.Errorf("reloaded ledger mismatch (-want +got):\n%s", diff)
	}
}

func TestLedger_AddValidation(t *testing.T) {
	testCases := []struct {
		name  string
		input ExpenseInput
		want  Reason
	}{
		{"empty amount", ExpenseInput{Amount: "", Date: date.New(2025, 1, 1)}, InvalidAmount},
		{"zero amount", ExpenseInput{Amount: "0", Date: date.New(2025, 1, 1)}, InvalidAmount},
		{"negative amount", ExpenseInput{Amount: "-3", Date: date.New(2025, 1, 1)}, InvalidAmount},
		{"not a number", ExpenseInput{Amount: "abc", Date: date.New(2025, 1, 1)}, InvalidAmount},
		{"too large amount", ExpenseInput{Amount: "1e30", Date: date.New(2025, 1, 1)}, InvalidAmount},
		{"missing date", ExpenseInput{Amount: "3"}, InvalidDate},
		{"recurring without frequency", ExpenseInput{Amount: "3", Date: date.New(2025, 1, 1), Recurring: true}, InvalidFrequency},
		{"unknown frequency", ExpenseInput{Amount: "3", Date: date.New(2025, 1, 1), Recurring: true, Freq: "daily"}, InvalidFrequency},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l, s := newTestLedger(t)
			_, err := l.Add(context.Background(), tc.input)
			if !IsInvalid(err, tc.want) {
				t.Fatalf("Add() error = %v, want reason %q", err, tc.want)
			}
			if l.Len() != 0 {
				t.Errorf("Len() = %d after a rejected Add, want 0", l.Len())
			}
			if s.sets != 0 {
				t.Errorf("store written %d times after a rejected Add, want 0", s.sets)
			}
		})
	}
}

func TestLedger_AddNormalizesRecurring(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	// A frequency without the recurring flag is dropped.
	e, err := l.Add(ctx, ExpenseInput{Amount: "12,5", Note: "  gym ", Date: date.New(2025, 1, 31), Freq: Monthly})
	if err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}
	if e.Freq != "" || !e.NextDue.IsZero() {
		t.Errorf("non recurring expense got Freq=%q NextDue=%v, want none", e.Freq, e.NextDue)
	}
	if e.Note != "gym" {
		t.Errorf("Note = %q, want %q", e.Note, "gym")
	}
	if want := A(12.5); !e.Amount.Equal(want) {
		t.Errorf("Amount = %v, want %v", e.Amount, want)
	}

	r := mustAddRecurring(t, l, "9.99", "music", "2025-01-31", Monthly)
	if want := date.New(2025, 2, 28); r.NextDue != want {
		t.Errorf("NextDue = %v, want %v", r.NextDue, want)
	}
}

func TestLedger_Edit(t *testing.T) {
	l, s := newTestLedger(t)
	ctx := context.Background()
	mustAdd(t, l, "10", "coffee", "2025-03-01")
	mustAdd(t, l, "20", "lunch", "2025-03-02")

	got, err := l.Edit(ctx, "e1", ExpenseInput{Amount: "11", Note: "rent", Date: date.New(2025, 1, 1), Recurring: true, Freq: Yearly})
	if err != nil {
		t.Fatalf("Edit() unexpected error: %v", err)
	}
	if got.ID != "e1" || !got.Recurring || got.NextDue != date.New(2026, 1, 1) {
		t.Errorf("Edit() = %+v, want id e1, recurring, next due 2026-01-01", got)
	}
	// position is kept
	if want := []string{"e2", "e1"}; !cmp.Equal(ids(l.Expenses()), want) {
		t.Errorf("Expenses() ids = %v, want %v", ids(l.Expenses()), want)
	}
	if !strings.Contains(s.data[KeyExpenses], `"yearly"`) {
		t.Errorf("edit not persisted: %s", s.data[KeyExpenses])
	}

	// and back to a one-off expense
	got, err = l.Edit(ctx, "e1", ExpenseInput{Amount: "11", Note: "rent", Date: date.New(2025, 1, 1)})
	if err != nil {
		t.Fatalf("Edit() unexpected error: %v", err)
	}
	if got.Recurring || got.Freq != "" || !got.NextDue.IsZero() {
		t.Errorf("Edit() = %+v, want a non recurring expense", got)
	}
}

func TestLedger_EditErrors(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	mustAdd(t, l, "10", "coffee", "2025-03-01")
	before := l.Expenses()

	if _, err := l.Edit(ctx, "nope", ExpenseInput{Amount: "1", Date: date.New(2025, 1, 1)}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Edit(unknown id) error = %v, want ErrNotFound", err)
	}
	// not found wins over an invalid input
	if _, err := l.Edit(ctx, "nope", ExpenseInput{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Edit(unknown id, invalid input) error = %v, want ErrNotFound", err)
	}
	if _, err := l.Edit(ctx, "e1", ExpenseInput{Amount: "x", Date: date.New(2025, 1, 1)}); !IsInvalid(err, InvalidAmount) {
		t.Errorf("Edit(invalid amount) error = %v, want InvalidAmount", err)
	}
	if diff := cmp.Diff(before, l.Expenses(), expenseOpts); diff != "" {
		t.Errorf("ledger changed by failed edits (-want +got):\n%s", diff)
	}
}

func TestLedger_Remove(t *testing.T) {
	l, s := newTestLedger(t)
	ctx := context.Background()
	mustAdd(t, l, "10", "coffee", "2025-03-01")
	mustAdd(t, l, "20", "lunch", "2025-03-02")
	mustAdd(t, l, "30", "dinner", "2025-03-03")

	removed, err := l.Remove(ctx, "e2")
	if err != nil || !removed {
		t.Fatalf("Remove(e2) = %v, %v, want true, nil", removed, err)
	}
	if want := []string{"e3", "e1"}; !cmp.Equal(ids(l.Expenses()), want) {
		t.Errorf("Expenses() ids = %v, want %v", ids(l.Expenses()), want)
	}

	sets := s.sets
	removed, err = l.Remove(ctx, "e2")
	if err != nil || removed {
		t.Errorf("Remove(e2) twice = %v, %v, want false, nil", removed, err)
	}
	if s.sets != sets {
		t.Errorf("removing a missing id wrote the store")
	}
}

func TestLedger_ClearAll(t *testing.T) {
	l, s := newTestLedger(t)
	ctx := context.Background()
	mustAdd(t, l, "10", "coffee", "2025-03-01")
	s.data[KeyPreferences] = `{"currency":"EUR"}`

	if err := l.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll() unexpected error: %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0", l.Len())
	}
	if _, ok := s.data[KeyExpenses]; ok {
		t.Errorf("expenses key still present after ClearAll")
	}
	if _, ok := s.data[KeyPreferences]; !ok {
		t.Errorf("ClearAll removed the preferences")
	}
	// clearing an empty ledger is fine
	if err := l.ClearAll(ctx); err != nil {
		t.Errorf("ClearAll() on empty ledger error: %v", err)
	}
}

func TestLedger_ReloadAfterMixedChanges(t *testing.T) {
	l, s := newTestLedger(t)
	ctx := context.Background()
	rent := ExpenseInput{Amount: "800", Note: "rent", Date: date.New(2025, 1, 5), Recurring: true, Freq: Monthly}
	steps := []struct {
		name string
		run  func() error
	}{
		{"add", func() error { _, err := l.Add(ctx, rent); return err }},
		{"add", func() error { mustAdd(t, l, "10", "coffee", "2025-03-01"); return nil }},
		{"add", func() error { mustAdd(t, l, "20", "lunch", "2025-03-02"); return nil }},
		{"edit", func() error {
			_, err := l.Edit(ctx, "e2", ExpenseInput{Amount: "12.5", Note: "coffee beans", Date: date.New(2025, 3, 1), Recurring: true, Freq: Weekly})
			return err
		}},
		{"remove", func() error { _, err := l.Remove(ctx, "e3"); return err }},
		{"edit", func() error {
			_, err := l.Edit(ctx, "e1", ExpenseInput{Amount: "850", Note: "rent", Date: date.New(2025, 1, 5)})
			return err
		}},
		{"clear", func() error { return l.ClearAll(ctx) }},
		{"add", func() error { mustAdd(t, l, "3", "bus", "2025-03-04"); return nil }},
		{"add", func() error { _, err := l.Add(ctx, rent); return err }},
		{"remove", func() error { _, err := l.Remove(ctx, "e4"); return err }},
	}
	for i, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("step %d (%s) unexpected error: %v", i, step.name, err)
		}
		reloaded := NewLedger(s)
		if err := reloaded.Load(ctx); err != nil {
			t.Fatalf("step %d (%s): Load() unexpected error: %v", i, step.name, err)
		}
		if diff := cmp.Diff(l.Expenses(), reloaded.Expenses(), expenseOpts); diff != "" {
			t.Errorf("step %d (%s): reloaded ledger mismatch (-want +got):\n%s", i, step.name, diff)
		}
	}
	if got, want := ids(l.Expenses()), []string{"e5"}; !cmp.Equal(got, want) {
		t.Errorf("Expenses() ids = %v, want %v", got, want)
	}
}

func TestLedger_PersistenceFailureKeepsState(t *testing.T) {
	l, s := newTestLedger(t)
	ctx := context.Background()
	mustAdd(t, l, "10", "coffee", "2025-03-01")
	before := l.Expenses()
	stored := s.snapshot()

	s.failSet = true
	if _, err := l.Add(ctx, ExpenseInput{Amount: "1", Date: date.New(2025, 1, 1)}); !IsPersistence(err) {
		t.Errorf("Add() error = %v, want a persistence error", err)
	}
	if _, err := l.Edit(ctx, "e1", ExpenseInput{Amount: "1", Date: date.New(2025, 1, 1)}); !IsPersistence(err) {
		t.Errorf("Edit() error = %v, want a persistence error", err)
	}
	if _, err := l.Remove(ctx, "e1"); !IsPersistence(err) {
		t.Errorf("Remove() error = %v, want a persistence error", err)
	}
	if err := l.ClearAll(ctx); !errors.Is(err, errDisk) {
		t.Errorf("ClearAll() error = %v, want %v", err, errDisk)
	}

	if diff := cmp.Diff(before, l.Expenses(), expenseOpts); diff != "" {
		t.Errorf("ledger changed by failed writes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(stored, s.data); diff != "" {
		t.Errorf("store changed by failed writes (-want +got):\n%s", diff)
	}
}

func TestLedger_Load(t *testing.T) {
	testCases := []struct {
		name    string
		stored  string
		wantErr bool
		wantIDs []string
	}{
		{name: "empty array", stored: `[]`},
		{name: "null", stored: `null`},
		{
			name:    "legacy numeric ids and float amounts",
			stored:  `[{"id":1712345678901,"amount":12.499,"note":"a","date":"2025-01-02","recurring":false},{"id":"x","amount":"3","note":"b","date":"2025-01-01","recurring":true,"freq":"weekly","nextDue":"2025-01-08"}]`,
			wantIDs: []string{"1712345678901", "x"},
		},
		{name: "garbage", stored: `{not json`, wantErr: true},
		{name: "unknown frequency", stored: `[{"id":"x","amount":3,"date":"2025-01-01","recurring":true,"freq":"daily"}]`, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newMemStore()
			s.data[KeyExpenses] = tc.stored
			l := NewLedger(s)
			err := l.Load(context.Background())
			if tc.wantErr {
				if !IsPersistence(err) {
					t.Errorf("Load() error = %v, want a persistence error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if got := ids(l.Expenses()); !cmp.Equal(got, tc.wantIDs) {
				t.Errorf("Load() ids = %v, want %v", got, tc.wantIDs)
			}
		})
	}
}

func TestLedger_LoadFailure(t *testing.T) {
	l, s := newTestLedger(t)
	mustAdd(t, l, "10", "coffee", "2025-03-01")
	s.failGet = true
	if err := l.Load(context.Background()); !errors.Is(err, errDisk) {
		t.Errorf("Load() error = %v, want %v", err, errDisk)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d after failed Load, want 1", l.Len())
	}
}
