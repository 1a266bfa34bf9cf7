package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/hongminglow/payment-gateway/internal/http/respond"
	"github.com/hongminglow/payment-gateway/internal/logging"
	"github.com/hongminglow/payment-gateway/internal/models"
	"github.com/hongminglow/payment-gateway/internal/models/dto"
	"github.com/hongminglow/payment-gateway/internal/service"
)

// Payments is the payment workflow the payment endpoints call.
type Payments interface {
	Create(ctx context.Context, email string, in service.CreatePaymentInput) (service.PaymentOrder, error)
	Verify(ctx context.Context, email, orderID, paymentID, signature string) (models.Payment, error)
	List(ctx context.Context, email string) ([]models.Payment, error)
}

// PaymentHandler owns the payment endpoints. Every route requires a caller.
type PaymentHandler struct {
	payments Payments
	validate *validator.Validate
	log      logging.Logger
}

// NewPaymentHandler constructs the handler.
func NewPaymentHandler(payments Payments, log logging.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, validate: newValidator(), log: log}
}

// Register attaches payment routes to the mux, each wrapped with protect.
func (h *PaymentHandler) Register(mux *http.ServeMux, protect Middleware) {
	mux.Handle("POST /payments/create-payment", protect(http.HandlerFunc(h.handleCreate)))
	mux.Handle("POST /payments/verify-payment", protect(http.HandlerFunc(h.handleVerify)))
	mux.Handle("GET /payments/my-payments", protect(http.HandlerFunc(h.handleList)))
}

func (h *PaymentHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req dto.CreatePaymentRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	out, err := h.payments.Create(r.Context(), id.Email, service.CreatePaymentInput{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}
	p := out.Payment
	respond.JSON(w, http.StatusCreated, "Payment order created", dto.CreatePaymentResponse{
		PaymentID:       p.ID,
		OrderID:         p.OrderID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		RazorpayOrderID: p.OrderID,
		KeyID:           out.KeyID,
	})
}

func (h *PaymentHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req dto.VerifyPaymentRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	payment, err := h.payments.Verify(r.Context(), id.Email, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Payment verified successfully", payment)
}

func (h *PaymentHandler) handleList(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	payments, err := h.payments.List(r.Context(), id.Email)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Payments retrieved", payments)
}
