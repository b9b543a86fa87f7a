package core

import "github.com/google/uuid"

// recurrenceSteps maps each calendar recurrence to its month interval and
// how many occurrences it produces. ANNUAL yields a single occurrence with
// no date shift; that matches the behavior users already rely on even
// though it never actually repeats.
var recurrenceSteps = map[Recurrence]struct {
	monthsStep  int
	occurrences int
}{
	RecurrenceMonthly:    {1, 12},
	RecurrenceQuarterly:  {3, 4},
	RecurrenceSemiannual: {6, 2},
	RecurrenceAnnual:     {12, 1},
}

// Expand turns one draft into the ordered sequence of concrete transaction
// records it represents.
//
// Installment splitting (Installments > 1) wins over any recurrence setting:
// the amount is divided evenly across N records dated one month apart. A
// calendar recurrence repeats the full amount at the recurrence's month
// interval. Either way all emitted records share one freshly generated
// recurrence-group ID and carry 1-based installment markers. A draft with
// Installments == 1 and Recurrence NONE yields exactly one record with no
// group ID and no markers.
//
// Expand is pure: it performs no I/O and either returns the complete
// sequence or an error with nothing emitted. Records come back ordered by
// ascending due date. IDs are left empty for the store to assign.
func Expand(d Draft) ([]Transaction, error) {
	if d.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if d.Installments < 1 {
		return nil, ErrInvalidInstallmentCount
	}

	if d.Installments > 1 {
		// The recurrence field is ignored in this branch, matching the
		// precedence the UI has always had.
		perInstallment := d.Amount / float64(d.Installments)
		groupID := uuid.NewString()
		records := make([]Transaction, 0, d.Installments)
		for i := 0; i < d.Installments; i++ {
			records = append(records, Transaction{
				Type:              d.Type,
				Description:       d.Description,
				Amount:            perInstallment,
				DueDate:           d.DueDate.AddMonths(i),
				CategoryID:        d.CategoryID,
				Status:            d.Status,
				RecurrenceID:      groupID,
				Installment:       i + 1,
				TotalInstallments: d.Installments,
			})
		}
		return records, nil
	}

	if d.Recurrence != RecurrenceNone {
		step, ok := recurrenceSteps[d.Recurrence]
		if !ok {
			return nil, ErrInvalidRecurrence
		}
		groupID := uuid.NewString()
		records := make([]Transaction, 0, step.occurrences)
		for i := 0; i < step.occurrences; i++ {
			records = append(records, Transaction{
				Type:              d.Type,
				Description:       d.Description,
				Amount:            d.Amount,
				DueDate:           d.DueDate.AddMonths(i * step.monthsStep),
				CategoryID:        d.CategoryID,
				Status:            d.Status,
				RecurrenceID:      groupID,
				Installment:       i + 1,
				TotalInstallments: step.occurrences,
			})
		}
		return records, nil
	}

	return []Transaction{{
		Type:        d.Type,
		Description: d.Description,
		Amount:      d.Amount,
		DueDate:     d.DueDate,
		CategoryID:  d.CategoryID,
		Status:      d.Status,
	}}, nil
}
