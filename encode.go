package moola

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/etnz/moola/date"
)

// Keys of the general store.
const (
	KeyExpenses    = "@moola/expenses"
	KeyPreferences = "@moola/preferences"
	KeyLastExport  = "@moola/last_export"
)

// jsonExpense is the persisted form of an Expense.
//
// freq and nextDue are null for non recurring expenses.
type jsonExpense struct {
	ID        json.RawMessage `json:"id"`
	Amount    Amount          `json:"amount"`
	Note      string          `json:"note"`
	Date      date.Date       `json:"date"`
	Recurring bool            `json:"recurring"`
	Freq      *Frequency      `json:"freq"`
	NextDue   *date.Date      `json:"nextDue"`
}

func (e Expense) MarshalJSON() ([]byte, error) {
	id, err := json.Marshal(e.ID)
	if err != nil {
		return nil, err
	}
	j := jsonExpense{
		ID:        id,
		Amount:    e.Amount,
		Note:      e.Note,
		Date:      e.Date,
		Recurring: e.Recurring,
	}
	if e.Recurring {
		j.Freq = &e.Freq
		j.NextDue = &e.NextDue
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes an expense. Legacy numeric ids are turned into
// strings, and the recurring invariants are enforced on the way in.
func (e *Expense) UnmarshalJSON(data []byte) error {
	var j jsonExpense
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	id, err := decodeID(j.ID)
	if err != nil {
		return err
	}
	if j.Date.IsZero() {
		return fmt.Errorf("expense %q has no date", id)
	}
	*e = Expense{
		ID:        id,
		Amount:    j.Amount,
		Note:      j.Note,
		Date:      j.Date,
		Recurring: j.Recurring,
	}
	if e.Recurring {
		if j.Freq == nil {
			return fmt.Errorf("recurring expense %q has no frequency", id)
		}
		freq, err := ParseFrequency(string(*j.Freq))
		if err != nil {
			return fmt.Errorf("expense %q: %w", id, err)
		}
		e.Freq = freq
	}
	e.normalize()
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", fmt.Errorf("expense without id")
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("invalid expense id %s: %w", raw, err)
	}
	return n.String(), nil
}

// EncodeExpenses returns the json array persisted in the general store.
func EncodeExpenses(expenses []Expense) (string, error) {
	if expenses == nil {
		expenses = []Expense{}
	}
	data, err := json.Marshal(expenses)
	if err != nil {
		return "", fmt.Errorf("cannot encode expenses: %w", err)
	}
	return string(data), nil
}

// DecodeExpenses parses the json array persisted in the general store.
func DecodeExpenses(data string) ([]Expense, error) {
	var expenses []Expense
	if err := json.Unmarshal([]byte(data), &expenses); err != nil {
		return nil, fmt.Errorf("cannot decode expenses: %w", err)
	}
	if expenses == nil {
		expenses = []Expense{}
	}
	return expenses, nil
}
