package moola

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/etnz/moola/date"
	"github.com/google/go-cmp/cmp"
)

func TestLoadPreferences_Defaults(t *testing.T) {
	p, err := LoadPreferences(context.Background(), newMemStore())
	if err != nil {
		t.Fatalf("LoadPreferences() unexpected error: %v", err)
	}
	if p.Currency != "USD" || p.DailyReminder || p.BackupFreq != Weekly || !p.LastExport.IsZero() {
		t.Errorf("LoadPreferences() = %+v, want defaults", p)
	}
	if got := p.Reminder(); got.ShouldSchedule {
		t.Errorf("Reminder() = %+v, want no schedule", got)
	}
}

func TestPreferences_SaveKeepsUnknownKeys(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	s.data[KeyPreferences] = `{"theme":"dark","userName":"Sam","currency":"EUR","useEUFormat":true,"backupReminderFreq":"monthly"}`

	p, err := LoadPreferences(ctx, s)
	if err != nil {
		t.Fatalf("LoadPreferences() unexpected error: %v", err)
	}
	if p.Currency != "EUR" || !p.EUFormat || p.BackupFreq != Monthly {
		t.Errorf("LoadPreferences() = %+v, want EUR, EU format, monthly backups", p)
	}

	p.HideDecimals = true
	p.DailyReminder = true
	if err := p.SetReminderTime(7, 30); err != nil {
		t.Fatalf("SetReminderTime() unexpected error: %v", err)
	}
	if err := p.Save(ctx, s); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(s.data[KeyPreferences]), &doc); err != nil {
		t.Fatalf("saved preferences are not json: %v", err)
	}
	if doc["theme"] != "dark" || doc["userName"] != "Sam" {
		t.Errorf("Save() lost unknown keys: %v", doc)
	}

	back, err := LoadPreferences(ctx, s)
	if err != nil {
		t.Fatalf("LoadPreferences() unexpected error: %v", err)
	}
	if diff := cmp.Diff(p, back, cmp.AllowUnexported(Preferences{}, date.Date{})); diff != "" {
		t.Errorf("LoadPreferences(Save()) mismatch (-want +got):\n%s", diff)
	}
	if got, want := back.Reminder(), (ReminderRequest{ShouldSchedule: true, Hour: 7, Minute: 30}); got != want {
		t.Errorf("Reminder() = %+v, want %+v", got, want)
	}
}

func TestPreferences_IgnoresBadValues(t *testing.T) {
	s := newMemStore()
	s.data[KeyPreferences] = `{"currency":42,"useEUFormat":"yes","backupReminderFreq":"daily","dailyReminderTime":"noon"}`
	p, err := LoadPreferences(context.Background(), s)
	if err != nil {
		t.Fatalf("LoadPreferences() unexpected error: %v", err)
	}
	if diff := cmp.Diff(DefaultPreferences(), p, cmp.AllowUnexported(date.Date{}), cmpIgnoreDoc); diff != "" {
		t.Errorf("LoadPreferences() mismatch (-want +got):\n%s", diff)
	}
}

func TestPreferences_SetReminderTime(t *testing.T) {
	p := DefaultPreferences()
	for _, hm := range [][2]int{{24, 0}, {-1, 0}, {12, 60}} {
		if err := p.SetReminderTime(hm[0], hm[1]); err == nil {
			t.Errorf("SetReminderTime(%d, %d) want an error", hm[0], hm[1])
		}
	}
	if p.ReminderHour != 20 || p.ReminderMinute != 0 {
		t.Errorf("failed SetReminderTime changed the time to %d:%d", p.ReminderHour, p.ReminderMinute)
	}
}

func TestPreferences_Backup(t *testing.T) {
	today := date.New(2025, 3, 10)
	testCases := []struct {
		name    string
		enabled bool
		freq    Frequency
		last    date.Date
		want    BackupStatus
	}{
		{"never", true, Weekly, date.Date{}, BackupStatus{Message: "You haven't backed up your data yet"}},
		{"yesterday", true, Weekly, today.Add(-1), BackupStatus{Message: "Last backup was yesterday"}},
		{"weekly due", true, Weekly, today.Add(-7), BackupStatus{Overdue: true, Message: "Last backup was 7 days ago"}},
		{"weekly not due", true, Weekly, today.Add(-6), BackupStatus{Message: "Last backup was 6 days ago"}},
		{"monthly not due", true, Monthly, today.Add(-29), BackupStatus{Message: "Last backup was 29 days ago"}},
		{"monthly due", true, Monthly, today.Add(-30), BackupStatus{Overdue: true, Message: "Last backup was 30 days ago"}},
		{"disabled", false, Weekly, today.Add(-100), BackupStatus{Message: "Last backup was 100 days ago"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultPreferences()
			p.BackupReminder, p.BackupFreq, p.LastExport = tc.enabled, tc.freq, tc.last
			if got := p.Backup(today); got != tc.want {
				t.Errorf("Backup() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestPreferences_MarkExported(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	p := DefaultPreferences()
	today := date.New(2025, 3, 10)
	if err := p.MarkExported(ctx, s, today); err != nil {
		t.Fatalf("MarkExported() unexpected error: %v", err)
	}
	back, err := LoadPreferences(ctx, s)
	if err != nil {
		t.Fatalf("LoadPreferences() unexpected error: %v", err)
	}
	if back.LastExport != today {
		t.Errorf("LastExport = %v, want %v", back.LastExport, today)
	}

	// timestamps written by older versions are accepted
	s.data[KeyLastExport] = "2025-03-01T10:20:30.000Z"
	back, err = LoadPreferences(ctx, s)
	if err != nil {
		t.Fatalf("LoadPreferences() unexpected error: %v", err)
	}
	if want := date.New(2025, 3, 1); back.LastExport != want {
		t.Errorf("LastExport = %v, want %v", back.LastExport, want)
	}

	s.failSet = true
	if err := p.MarkExported(ctx, s, today.Add(1)); !IsPersistence(err) {
		t.Errorf("MarkExported() error = %v, want a persistence error", err)
	}
	if p.LastExport != today {
		t.Errorf("failed MarkExported changed LastExport to %v", p.LastExport)
	}
}
