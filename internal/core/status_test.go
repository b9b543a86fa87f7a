package core

import "testing"

func TestEffectiveStatus(t *testing.T) {
	today := NewDate(2024, 6, 15)

	tests := []struct {
		name   string
		status Status
		due    Date
		want   Status
	}{
		{"pending past due becomes overdue", StatusPending, NewDate(2024, 6, 14), StatusOverdue},
		{"pending due today stays pending", StatusPending, NewDate(2024, 6, 15), StatusPending},
		{"pending due tomorrow stays pending", StatusPending, NewDate(2024, 6, 16), StatusPending},
		{"paid past due stays paid", StatusPaid, NewDate(2024, 1, 1), StatusPaid},
		{"received past due stays received", StatusReceived, NewDate(2024, 1, 1), StatusReceived},
		{"stored overdue passes through", StatusOverdue, NewDate(2024, 12, 31), StatusOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := Transaction{Status: tt.status, DueDate: tt.due}
			got := EffectiveStatus(tx, today)
			if got != tt.want {
				t.Errorf("EffectiveStatus() = %s, want %s", got, tt.want)
			}
			// Pure: repeated calls agree and the record is untouched.
			if again := EffectiveStatus(tx, today); again != got {
				t.Errorf("second call = %s, first = %s", again, got)
			}
			if tx.Status != tt.status {
				t.Errorf("stored status mutated to %s", tx.Status)
			}
		})
	}
}
