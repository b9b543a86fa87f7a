package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Payable    TransactionType = "PAYABLE"
	Receivable TransactionType = "RECEIVABLE"
)

const (
	StatusPending  Status = "PENDING"
	StatusPaid     Status = "PAID"
	StatusReceived Status = "RECEIVED"
	StatusOverdue  Status = "OVERDUE"
)

const (
	RecurrenceNone       Recurrence = "NONE"
	RecurrenceMonthly    Recurrence = "MONTHLY"
	RecurrenceQuarterly  Recurrence = "QUARTERLY"
	RecurrenceSemiannual Recurrence = "SEMIANNUAL"
	RecurrenceAnnual     Recurrence = "ANNUAL"
)

type (
	TransactionType string

	Status string

	Recurrence string

	// Draft is a user-submitted transaction before expansion. Installments
	// and Recurrence describe the repetition mode; when both are set,
	// installment splitting wins and the recurrence is ignored.
	Draft struct {
		Type         TransactionType
		Description  string
		Amount       float64
		DueDate      Date
		CategoryID   string
		Status       Status
		Installments int
		Recurrence   Recurrence
	}

	// Transaction is a single dated ledger record. ID is empty until the
	// store assigns one. RecurrenceID links every record expanded from the
	// same draft; it carries no meaning beyond equality.
	Transaction struct {
		ID                string          `json:"id"`
		Type              TransactionType `json:"type"`
		Description       string          `json:"description"`
		Amount            float64         `json:"amount"`
		DueDate           Date            `json:"dueDate"`
		CategoryID        string          `json:"categoryId"`
		Status            Status          `json:"status"`
		RecurrenceID      string          `json:"recurrenceId,omitempty"`
		Installment       int             `json:"installment,omitempty"`
		TotalInstallments int             `json:"totalInstallments,omitempty"`
	}

	// TransactionPatch updates a subset of a stored transaction's fields.
	// Nil pointers leave the stored value untouched.
	TransactionPatch struct {
		Description *string
		Amount      *float64
		DueDate     *Date
		CategoryID  *string
		Status      *Status
	}

	Category struct {
		ID   string          `json:"id"`
		Name string          `json:"name"`
		Type TransactionType `json:"type"`
		Icon string          `json:"icon"`
	}

	// AccessRequest is a pending or resolved request to use the system,
	// keyed by the requester's email.
	AccessRequest struct {
		Email     string    `json:"email"`
		Name      string    `json:"name"`
		Approved  bool      `json:"approved"`
		CreatedAt time.Time `json:"createdAt"`
	}
)

var (
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInvalidInstallmentCount = errors.New("invalid installment count")
	ErrInvalidRecurrence       = errors.New("invalid recurrence")
	ErrInvalidType             = errors.New("invalid transaction type")
	ErrInvalidStatus           = errors.New("invalid status")
	ErrEmptyDescription        = errors.New("empty description")
	ErrEmptyCategory           = errors.New("empty category reference")
	ErrEmptyName               = errors.New("empty name")
)

func (t TransactionType) Valid() bool {
	return t == Payable || t == Receivable
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusReceived, StatusOverdue:
		return true
	}
	return false
}

func (d Draft) Validate() error {
	if !d.Type.Valid() {
		return ErrInvalidType
	}
	if len(strings.TrimSpace(d.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(d.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if d.Amount <= 0 {
		return ErrInvalidAmount
	}
	if err := d.DueDate.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(d.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if !d.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func (p TransactionPatch) Validate() error {
	if p.Description != nil {
		if len(strings.TrimSpace(*p.Description)) == 0 {
			return ErrEmptyDescription
		}
		if len(*p.Description) > 200 {
			return errors.New("description too long (max 200 characters)")
		}
	}
	if p.Amount != nil && *p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.DueDate != nil {
		if err := p.DueDate.Validate(); err != nil {
			return err
		}
	}
	if p.CategoryID != nil && strings.TrimSpace(*p.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}
