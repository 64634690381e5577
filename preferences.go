package moola

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/moola/date"
)

// isoFormat is how the daily reminder time is persisted.
const isoFormat = "2006-01-02T15:04:05.000Z07:00"

// Preferences are the user settings the ledger uses: display format,
// daily and backup reminders.
//
// They are persisted as a json object shared with other settings (theme,
// name, onboarding...). Keys not listed here are kept untouched on Save.
type Preferences struct {
	Currency       string
	EUFormat       bool
	HideDecimals   bool
	DailyReminder  bool
	ReminderHour   int
	ReminderMinute int
	BackupReminder bool
	BackupFreq     Frequency // Weekly or Monthly
	LastExport     date.Date // zero if never exported

	doc map[string]any
}

// DefaultPreferences returns the preferences of a fresh install.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Currency:     "USD",
		ReminderHour: 20,
		BackupFreq:   Weekly,
		doc:          make(map[string]any),
	}
}

// LoadPreferences reads the preferences from the general store.
//
// Missing keys keep their default value.
func LoadPreferences(ctx context.Context, store Store) (*Preferences, error) {
	p := DefaultPreferences()
	data, ok, err := store.Get(ctx, KeyPreferences)
	if err != nil {
		return p, &PersistenceError{Op: "get", Key: KeyPreferences, Err: err}
	}
	if ok {
		if err := json.Unmarshal([]byte(data), &p.doc); err != nil {
			return p, &PersistenceError{Op: "get", Key: KeyPreferences, Err: err}
		}
		if p.doc == nil {
			p.doc = make(map[string]any)
		}
		p.decode()
	}

	last, ok, err := store.Get(ctx, KeyLastExport)
	if err != nil {
		return p, &PersistenceError{Op: "get", Key: KeyLastExport, Err: err}
	}
	if ok {
		// older versions wrote a full timestamp, only the day matters.
		if len(last) > len(date.Format) {
			last = last[:len(date.Format)]
		}
		if p.LastExport, err = date.Parse(last); err != nil {
			return p, &PersistenceError{Op: "get", Key: KeyLastExport, Err: err}
		}
	}
	return p, nil
}

// lookup evaluates a json path in the document.
func (p *Preferences) lookup(path string) (any, bool) {
	v, err := jsonpath.Get(path, p.doc)
	if err != nil || v == nil {
		return nil, false
	}
	return v, true
}

func (p *Preferences) decode() {
	if v, ok := p.lookup("$.currency"); ok {
		if s, ok := v.(string); ok && s != "" {
			p.Currency = s
		}
	}
	for path, dst := range map[string]*bool{
		"$.useEUFormat":           &p.EUFormat,
		"$.hideDecimals":          &p.HideDecimals,
		"$.dailyReminderEnabled":  &p.DailyReminder,
		"$.backupReminderEnabled": &p.BackupReminder,
	} {
		if v, ok := p.lookup(path); ok {
			if b, ok := v.(bool); ok {
				*dst = b
			}
		}
	}
	if v, ok := p.lookup("$.dailyReminderTime"); ok {
		if s, ok := v.(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				t = t.Local()
				p.ReminderHour, p.ReminderMinute = t.Hour(), t.Minute()
			}
		}
	}
	if v, ok := p.lookup("$.backupReminderFreq"); ok {
		if s, ok := v.(string); ok && (Frequency(s) == Weekly || Frequency(s) == Monthly) {
			p.BackupFreq = Frequency(s)
		}
	}
}

// Save writes the preferences back into the general store.
func (p *Preferences) Save(ctx context.Context, store Store) error {
	doc := maps.Clone(p.doc)
	if doc == nil {
		doc = make(map[string]any)
	}
	reminder := time.Date(2000, time.January, 1, p.ReminderHour, p.ReminderMinute, 0, 0, time.Local)
	doc["currency"] = p.Currency
	doc["useEUFormat"] = p.EUFormat
	doc["hideDecimals"] = p.HideDecimals
	doc["dailyReminderEnabled"] = p.DailyReminder
	doc["dailyReminderTime"] = reminder.UTC().Format(isoFormat)
	doc["backupReminderEnabled"] = p.BackupReminder
	doc["backupReminderFreq"] = string(p.BackupFreq)

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("cannot encode preferences: %w", err)
	}
	if err := store.Set(ctx, KeyPreferences, string(data)); err != nil {
		return &PersistenceError{Op: "set", Key: KeyPreferences, Err: err}
	}
	p.doc = doc
	return nil
}

// SetReminderTime validates and sets the daily reminder time.
func (p *Preferences) SetReminderTime(hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid reminder time %02d:%02d", hour, minute)
	}
	p.ReminderHour, p.ReminderMinute = hour, minute
	return nil
}

// FormatOptions returns the amount display options.
func (p *Preferences) FormatOptions() FormatOptions {
	return FormatOptions{Currency: p.Currency, EU: p.EUFormat, HideDecimals: p.HideDecimals}
}

// ReminderRequest tells the notification layer what to schedule.
//
// When ShouldSchedule is false every scheduled reminder must be cancelled.
type ReminderRequest struct {
	ShouldSchedule bool
	Hour, Minute   int
}

// Reminder returns the daily reminder request matching the preferences.
func (p *Preferences) Reminder() ReminderRequest {
	if !p.DailyReminder {
		return ReminderRequest{}
	}
	return ReminderRequest{ShouldSchedule: true, Hour: p.ReminderHour, Minute: p.ReminderMinute}
}

// MarkExported records that the data was exported today.
func (p *Preferences) MarkExported(ctx context.Context, store Store, today date.Date) error {
	if err := store.Set(ctx, KeyLastExport, today.String()); err != nil {
		return &PersistenceError{Op: "set", Key: KeyLastExport, Err: err}
	}
	p.LastExport = today
	return nil
}

// BackupStatus tells whether a backup reminder is due.
type BackupStatus struct {
	Overdue bool
	Message string
}

// Backup returns the backup reminder status on 'today'.
//
// A backup is overdue when the reminder is on, an export happened, and it is
// at least 7 days old (weekly) or 30 days old (monthly).
func (p *Preferences) Backup(today date.Date) BackupStatus {
	if p.LastExport.IsZero() {
		return BackupStatus{Message: "You haven't backed up your data yet"}
	}
	days := today.Sub(p.LastExport)
	s := BackupStatus{Message: fmt.Sprintf("Last backup was %d days ago", days)}
	if days == 1 {
		s.Message = "Last backup was yesterday"
	}
	if p.BackupReminder {
		limit := 30
		if p.BackupFreq == Weekly {
			limit = 7
		}
		s.Overdue = days >= limit
	}
	return s
}
