package core

import (
	"errors"
	"math"
	"testing"
)

func draft(amount float64, due Date, installments int, rec Recurrence) Draft {
	return Draft{
		Type:         Payable,
		Description:  "conta de luz",
		Amount:       amount,
		DueDate:      due,
		CategoryID:   "cat-1",
		Status:       StatusPending,
		Installments: installments,
		Recurrence:   rec,
	}
}

func TestExpandInstallments(t *testing.T) {
	records, err := Expand(draft(1200, NewDate(2024, 1, 15), 3, RecurrenceNone))
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	wantDates := []Date{NewDate(2024, 1, 15), NewDate(2024, 2, 15), NewDate(2024, 3, 15)}
	groupID := records[0].RecurrenceID
	if groupID == "" {
		t.Fatal("expected a recurrence group id")
	}

	var sum float64
	for i, r := range records {
		if r.Amount != 400 {
			t.Errorf("record %d amount = %v, want 400", i, r.Amount)
		}
		if !r.DueDate.Equal(wantDates[i].Time) {
			t.Errorf("record %d due date = %s, want %s", i, r.DueDate, wantDates[i])
		}
		if r.RecurrenceID != groupID {
			t.Errorf("record %d has group %q, want %q", i, r.RecurrenceID, groupID)
		}
		if r.Installment != i+1 || r.TotalInstallments != 3 {
			t.Errorf("record %d markers = %d/%d, want %d/3", i, r.Installment, r.TotalInstallments, i+1)
		}
		if r.ID != "" {
			t.Errorf("record %d carries an id before storage", i)
		}
		sum += r.Amount
	}
	if math.Abs(sum-1200) > 1e-9 {
		t.Errorf("amounts sum to %v, want 1200", sum)
	}
}

func TestExpandInstallmentsUnevenSum(t *testing.T) {
	records, err := Expand(draft(100, NewDate(2024, 1, 1), 7, RecurrenceNone))
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	var sum float64
	for _, r := range records {
		sum += r.Amount
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("amounts sum to %v, want 100 within tolerance", sum)
	}
}

func TestExpandRecurrence(t *testing.T) {
	tests := []struct {
		name       string
		recurrence Recurrence
		count      int
		monthsStep int
	}{
		{"monthly", RecurrenceMonthly, 12, 1},
		{"quarterly", RecurrenceQuarterly, 4, 3},
		{"semiannual", RecurrenceSemiannual, 2, 6},
		// ANNUAL produces a single occurrence with no date shift; kept
		// as-is for compatibility even though nothing actually repeats.
		{"annual", RecurrenceAnnual, 1, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := NewDate(2024, 1, 10)
			records, err := Expand(draft(500, start, 1, tt.recurrence))
			if err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if len(records) != tt.count {
				t.Fatalf("expected %d records, got %d", tt.count, len(records))
			}
			groupID := records[0].RecurrenceID
			if groupID == "" {
				t.Fatal("expected a recurrence group id")
			}
			for i, r := range records {
				if r.Amount != 500 {
					t.Errorf("record %d amount = %v, want full 500", i, r.Amount)
				}
				want := start.AddMonths(i * tt.monthsStep)
				if !r.DueDate.Equal(want.Time) {
					t.Errorf("record %d due date = %s, want %s", i, r.DueDate, want)
				}
				if r.RecurrenceID != groupID {
					t.Errorf("record %d group = %q, want %q", i, r.RecurrenceID, groupID)
				}
				if r.Installment != i+1 || r.TotalInstallments != tt.count {
					t.Errorf("record %d markers = %d/%d, want %d/%d",
						i, r.Installment, r.TotalInstallments, i+1, tt.count)
				}
			}
		})
	}
}

func TestExpandQuarterlyClampsEndOfMonth(t *testing.T) {
	records, err := Expand(draft(500, NewDate(2024, 1, 31), 1, RecurrenceQuarterly))
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	wantDates := []Date{
		NewDate(2024, 1, 31),
		NewDate(2024, 4, 30), // April has 30 days: clamp, don't roll over
		NewDate(2024, 7, 31),
		NewDate(2024, 10, 31),
	}
	if len(records) != len(wantDates) {
		t.Fatalf("expected %d records, got %d", len(wantDates), len(records))
	}
	for i, r := range records {
		if !r.DueDate.Equal(wantDates[i].Time) {
			t.Errorf("record %d due date = %s, want %s", i, r.DueDate, wantDates[i])
		}
	}
}

func TestExpandSingle(t *testing.T) {
	records, err := Expand(draft(80, NewDate(2024, 5, 2), 1, RecurrenceNone))
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.RecurrenceID != "" || r.Installment != 0 || r.TotalInstallments != 0 {
		t.Errorf("single record must carry no group id or markers, got %+v", r)
	}
	if r.Amount != 80 || !r.DueDate.Equal(NewDate(2024, 5, 2).Time) {
		t.Errorf("single record fields changed: %+v", r)
	}
}

func TestExpandInstallmentsWinOverRecurrence(t *testing.T) {
	records, err := Expand(draft(600, NewDate(2024, 3, 1), 2, RecurrenceMonthly))
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 installment records, got %d", len(records))
	}
	for i, r := range records {
		if r.Amount != 300 {
			t.Errorf("record %d amount = %v, want divided 300", i, r.Amount)
		}
	}
}

func TestExpandDistinctGroupIDs(t *testing.T) {
	a, err := Expand(draft(100, NewDate(2024, 1, 1), 2, RecurrenceNone))
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	b, err := Expand(draft(100, NewDate(2024, 1, 1), 2, RecurrenceNone))
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if a[0].RecurrenceID == b[0].RecurrenceID {
		t.Error("two expansions must not share a group id")
	}
}

func TestExpandErrors(t *testing.T) {
	tests := []struct {
		name string
		d    Draft
		want error
	}{
		{"zero amount", draft(0, NewDate(2024, 1, 1), 1, RecurrenceNone), ErrInvalidAmount},
		{"negative amount", draft(-5, NewDate(2024, 1, 1), 1, RecurrenceNone), ErrInvalidAmount},
		{"zero installments", draft(10, NewDate(2024, 1, 1), 0, RecurrenceNone), ErrInvalidInstallmentCount},
		{"negative installments", draft(10, NewDate(2024, 1, 1), -1, RecurrenceNone), ErrInvalidInstallmentCount},
		{"unknown recurrence", draft(10, NewDate(2024, 1, 1), 1, Recurrence("WEEKLY")), ErrInvalidRecurrence},
		{"empty recurrence", draft(10, NewDate(2024, 1, 1), 1, Recurrence("")), ErrInvalidRecurrence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Expand(tt.d)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expand() error = %v, want %v", err, tt.want)
			}
			if records != nil {
				t.Errorf("failed expansion must emit nothing, got %d records", len(records))
			}
		})
	}
}
