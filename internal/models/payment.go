package models

import "time"

// PaymentStatus is the lifecycle state of a payment record.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentCompleted || s == PaymentFailed
}

// CanTransition reports whether moving from s to next is legal:
// only pending may move, and only to a terminal state.
func (s PaymentStatus) CanTransition(next PaymentStatus) bool {
	return s == PaymentPending && next.Terminal()
}

// Payment is one payment attempt tied to a user.
type Payment struct {
	ID          int64         `json:"id"`
	OrderID     string        `json:"order_id"`
	Amount      float64       `json:"amount"`
	Currency    string        `json:"currency"`
	Status      PaymentStatus `json:"status"`
	UserID      int64         `json:"user_id"`
	Description string        `json:"description,omitempty"`
	PaymentRef  string        `json:"razorpay_payment_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
