package models

import (
	"gorm.io/datatypes"
)

// PaymentState is the lifecycle of a pending payment. All transition rules
// live here; nothing else in the codebase decides whether a state change is
// legal.
type PaymentState string

const (
	PaymentStatePending   PaymentState = "pending"
	PaymentStateCompleted PaymentState = "completed"
	PaymentStateFailed    PaymentState = "failed"
)

// IsTerminal reports whether the state accepts no further transitions.
func (s PaymentState) IsTerminal() bool {
	return s == PaymentStateCompleted || s == PaymentStateFailed
}

// CanTransition reports whether moving from s to next is a legal transition.
// Only PENDING -> {COMPLETED, FAILED} is allowed; a terminal state never
// changes again (status monotonicity).
func (s PaymentState) CanTransition(next PaymentState) bool {
	return s == PaymentStatePending && next.IsTerminal()
}

// PendingPayment records a checkout that has not yet produced a user account.
// At most one row exists per merchant order id; the row is deleted once it is
// reconciled into a User/Payment/Enrollment triple.
type PendingPayment struct {
	BaseModel
	MerchantOrderID string       `gorm:"uniqueIndex;not null" json:"merchant_order_id"`
	Reference       string       `gorm:"index" json:"reference"` // Gateway-assigned transaction id
	CourseID        string       `gorm:"not null;index" json:"course_id"`
	CustomerEmail   string       `gorm:"not null;index" json:"customer_email"`
	CustomerName    string       `gorm:"not null" json:"customer_name"`
	Amount          int64        `gorm:"not null" json:"amount"`
	Currency        string       `gorm:"type:varchar(8);default:'IDR'" json:"currency"`
	PaymentMethod   string       `json:"payment_method"`
	Status          PaymentState `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	// Metadata keeps the gateway artifacts handed back at transaction
	// creation (payment_url, va_number, qr_string).
	Metadata datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
}
