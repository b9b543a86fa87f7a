package core

// EffectiveStatus computes the status a transaction should display given
// the current calendar date: a PENDING transaction whose due date has
// passed shows as OVERDUE. Every other stored status passes through
// unchanged. The stored status is never mutated; OVERDUE is derived on
// each read because "today" moves independently of any write.
func EffectiveStatus(t Transaction, today Date) Status {
	if t.Status == StatusPending && t.DueDate.Before(today) {
		return StatusOverdue
	}
	return t.Status
}
