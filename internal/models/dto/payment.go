package dto

type CreatePaymentRequest struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	Currency    string  `json:"currency" validate:"omitempty,len=3,alpha"`
	Description string  `json:"description" validate:"max=255"`
}

type CreatePaymentResponse struct {
	PaymentID       int64   `json:"payment_id"`
	OrderID         string  `json:"order_id"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	RazorpayOrderID string  `json:"razorpay_order_id"`
	KeyID           string  `json:"key_id,omitempty"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}
