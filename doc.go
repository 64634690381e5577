// Package moola is a local-first personal expense ledger.
//
// The core functionalities include:
//   - Ledger Management: recording, editing and removing one-off and
//     recurring expenses, mirrored into a key-value Store after every change.
//   - Period Views: totals over the current day, the last seven days, the
//     month-to-date and the year-to-date, plus grouping by date.
//   - Recurring Expenses: the next due date of a weekly, monthly or yearly
//     expense, with month-end dates clamped to shorter months.
//   - Preferences: display currency and format, daily and backup reminders.
//   - Export: a CSV copy of the ledger for backups.
//
// Amounts are exact decimals with two fractional digits. Dates are calendar
// days without time of day, see package date.
//
// This package serves as the foundational logic for the `moola`
// command-line tool. The app lock lives in package lock.
package moola
