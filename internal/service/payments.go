package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/hongminglow/payment-gateway/internal/logging"
	"github.com/hongminglow/payment-gateway/internal/models"
	"github.com/hongminglow/payment-gateway/internal/payments/razorpay"
	"github.com/hongminglow/payment-gateway/internal/storage"
)

const (
	// DefaultCurrency applies when a payment request names none.
	DefaultCurrency = "INR"

	// minorUnitsPerMajor converts amounts into the processor's smallest
	// currency denomination (paise for INR).
	minorUnitsPerMajor = 100

	defaultDescription = "Payment for services"
)

// Processor is the external payment processor.
type Processor interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (razorpay.Order, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	KeyID() string
}

// CreatePaymentInput is a validated request to open a payment.
type CreatePaymentInput struct {
	Amount      float64
	Currency    string
	Description string
}

// PaymentOrder is the outcome of Create: the pending record plus the public
// key id checkout needs.
type PaymentOrder struct {
	Payment models.Payment
	KeyID   string
}

// PaymentService implements payment creation, verification and listing.
type PaymentService struct {
	users      storage.UserStore
	payments   storage.PaymentStore
	processor  Processor
	log        logging.Logger
	newReceipt func() string
}

// NewPaymentService wires the payment workflows.
func NewPaymentService(users storage.UserStore, payments storage.PaymentStore, processor Processor, log logging.Logger) *PaymentService {
	return &PaymentService{
		users:      users,
		payments:   payments,
		processor:  processor,
		log:        log,
		newReceipt: newReceipt,
	}
}

// ToMinorUnits converts a major-unit amount to the processor's integer units.
func ToMinorUnits(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, validationErr("amount must be a positive number")
	}
	minor := math.Round(amount * minorUnitsPerMajor)
	if minor < 1 {
		return 0, validationErr("amount is below the smallest currency unit")
	}
	if minor > math.MaxInt64/2 {
		return 0, validationErr("amount is too large")
	}
	return int64(minor), nil
}

// Create opens an order at the processor and records it as pending. The
// record is written only after the processor accepted the order, so a
// processor failure leaves nothing behind.
func (s *PaymentService) Create(ctx context.Context, email string, in CreatePaymentInput) (PaymentOrder, error) {
	minor, err := ToMinorUnits(in.Amount)
	if err != nil {
		return PaymentOrder{}, err
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	if len(currency) != 3 {
		return PaymentOrder{}, validationErr("currency must be a 3-letter code")
	}

	user, err := s.owner(ctx, email)
	if err != nil {
		return PaymentOrder{}, err
	}

	description := strings.TrimSpace(in.Description)
	notes := map[string]string{"description": description}
	if description == "" {
		notes["description"] = defaultDescription
	}
	order, err := s.processor.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   minor,
		Currency: currency,
		Receipt:  s.newReceipt(),
		Notes:    notes,
	})
	if err != nil {
		return PaymentOrder{}, &ProviderError{Op: "create order", Err: err}
	}

	payment, err := s.payments.CreatePayment(ctx, models.Payment{
		OrderID:     order.ID,
		Amount:      in.Amount,
		Currency:    currency,
		Status:      models.PaymentPending,
		UserID:      user.ID,
		Description: description,
	})
	if err != nil {
		s.log.Error(ctx, "order created without ledger record", "order_id", order.ID, "user_id", user.ID, "error", err)
		return PaymentOrder{}, fmt.Errorf("record payment: %w", err)
	}
	s.log.Info(ctx, "payment created", "payment_id", payment.ID, "order_id", payment.OrderID)
	return PaymentOrder{Payment: payment, KeyID: s.processor.KeyID()}, nil
}

// Verify checks the processor signature for an order owned by the caller and
// marks the payment completed. Verifying an already completed payment returns
// it unchanged; a signature mismatch leaves the payment pending.
func (s *PaymentService) Verify(ctx context.Context, email, orderID, paymentID, signature string) (models.Payment, error) {
	user, err := s.owner(ctx, email)
	if err != nil {
		return models.Payment{}, err
	}

	payment, err := s.payments.FindByOrderAndOwner(ctx, orderID, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Payment{}, ErrPaymentNotFound
		}
		return models.Payment{}, fmt.Errorf("lookup payment: %w", err)
	}

	switch payment.Status {
	case models.PaymentCompleted:
		s.log.Info(ctx, "payment already verified", "payment_id", payment.ID)
		return payment, nil
	case models.PaymentFailed:
		return models.Payment{}, ErrPaymentClosed
	}

	if !s.processor.VerifyPaymentSignature(orderID, paymentID, signature) {
		s.log.Warn(ctx, "payment signature mismatch", "payment_id", payment.ID)
		return models.Payment{}, ErrInvalidSignature
	}

	updated, err := s.payments.UpdateStatus(ctx, payment.ID, storage.StatusUpdate{
		From:       models.PaymentPending,
		To:         models.PaymentCompleted,
		PaymentRef: paymentID,
	})
	if err == nil {
		s.log.Info(ctx, "payment completed", "payment_id", updated.ID)
		return updated, nil
	}
	if !errors.Is(err, storage.ErrStatusConflict) {
		return models.Payment{}, fmt.Errorf("update payment status: %w", err)
	}

	// Another request moved the record first; report what it settled on.
	current, err := s.payments.FindByOrderAndOwner(ctx, orderID, user.ID)
	if err != nil {
		return models.Payment{}, fmt.Errorf("reload payment: %w", err)
	}
	if current.Status == models.PaymentCompleted {
		return current, nil
	}
	return models.Payment{}, ErrPaymentClosed
}

// List returns the caller's payments, newest first.
func (s *PaymentService) List(ctx context.Context, email string) ([]models.Payment, error) {
	user, err := s.owner(ctx, email)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func (s *PaymentService) owner(ctx context.Context, email string) (models.User, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// newReceipt returns a receipt reference within Razorpay's 40 character limit.
func newReceipt() string {
	return "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
