package models

import "time"

// Payment is the durable record created once a pending payment is reconciled.
// Never mutated afterward except by the separate refund flow.
type Payment struct {
	BaseModel
	UserID           string        `gorm:"not null;index" json:"user_id"`
	CourseID         string        `gorm:"not null;index" json:"course_id"`
	GatewayReference string        `gorm:"index" json:"gateway_reference"`
	Amount           int64         `gorm:"not null" json:"amount"`
	Currency         string        `gorm:"type:varchar(8);default:'IDR'" json:"currency"`
	Status           PaymentStatus `gorm:"type:varchar(20);not null" json:"status"`
	InvoiceNumber    string        `json:"invoice_number"`
	PaidAt           *time.Time    `json:"paid_at"`

	// Relations
	Course Course `gorm:"foreignKey:CourseID" json:"-"`
}

// Enrollment grants a user access to a course. The composite unique index is
// the idempotency guard for the whole reconciliation subsystem: no matter how
// many callbacks or registration attempts race, at most one row per
// (user, course) pair can exist.
type Enrollment struct {
	BaseModel
	UserID     string    `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"user_id"`
	CourseID   string    `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"course_id"`
	EnrolledAt time.Time `gorm:"not null" json:"enrolled_at"`

	// Relations
	Course Course `gorm:"foreignKey:CourseID" json:"course"`
}
