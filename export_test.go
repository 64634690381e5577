package moola

import (
	"strings"
	"testing"
)

func TestExportCSV(t *testing.T) {
	l, _ := newTestLedger(t)
	mustAdd(t, l, "3.5", "old", "2025-01-01")
	mustAddRecurring(t, l, "1200", "rent, flat", "2025-03-01", Monthly)
	mustAdd(t, l, "2", `say "hi"`, "2025-02-01")

	testCases := []struct {
		name string
		eu   bool
		want string
	}{
		{
			name: "default",
			want: `Date,Amount,Currency,Note,Recurring,Frequency
2025-03-01,1200.00,USD,"rent, flat",Yes,monthly
2025-02-01,2.00,USD,"say ""hi""",No,
2025-01-01,3.50,USD,old,No,
`,
		},
		{
			name: "eu",
			eu:   true,
			want: `Date,Amount,Currency,Note,Recurring,Frequency
2025-03-01,"1200,00",USD,"rent, flat",Yes,monthly
2025-02-01,"2,00",USD,"say ""hi""",No,
2025-01-01,"3,50",USD,old,No,
`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var b strings.Builder
			if err := ExportCSV(&b, l.Expenses(), "USD", tc.eu); err != nil {
				t.Fatalf("ExportCSV() unexpected error: %v", err)
			}
			if got := b.String(); got != tc.want {
				t.Errorf("ExportCSV() =\n%s\nwant:\n%s", got, tc.want)
			}
		})
	}
}

func TestExportCSV_Empty(t *testing.T) {
	var b strings.Builder
	if err := ExportCSV(&b, nil, "EUR", false); err != nil {
		t.Fatalf("ExportCSV() unexpected error: %v", err)
	}
	if got, want := b.String(), "Date,Amount,Currency,Note,Recurring,Frequency\n"; got != want {
		t.Errorf("ExportCSV() = %q, want %q", got, want)
	}
}
