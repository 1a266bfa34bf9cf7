package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/payment-gateway/internal/auth"
	"github.com/hongminglow/payment-gateway/internal/logging"
	"github.com/hongminglow/payment-gateway/internal/models"
	"github.com/hongminglow/payment-gateway/internal/payments/razorpay"
	"github.com/hongminglow/payment-gateway/internal/storage/memory"
)

const processorSecret = "rzp_test_secret"

type fakeProcessor struct {
	mu          sync.Mutex
	createErr   error
	requests    []razorpay.OrderRequest
	verifyCalls int
}

func (f *fakeProcessor) CreateOrder(_ context.Context, req razorpay.OrderRequest) (razorpay.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return razorpay.Order{}, f.createErr
	}
	f.requests = append(f.requests, req)
	return razorpay.Order{
		ID:       fmt.Sprintf("order_%d", len(f.requests)),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

func (f *fakeProcessor) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	f.mu.Lock()
	f.verifyCalls++
	f.mu.Unlock()
	return razorpay.Sign(processorSecret, orderID, paymentID) == signature
}

func (f *fakeProcessor) KeyID() string { return "rzp_test_key" }

func (f *fakeProcessor) verifications() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifyCalls
}

type fixture struct {
	store     *memory.Store
	tokens    *auth.TokenManager
	gate      *auth.Gate
	accounts  *AccountService
	payments  *PaymentService
	processor *fakeProcessor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	tokens, err := auth.NewTokenManager("test-secret", "payment-gateway", 30*time.Minute)
	require.NoError(t, err)
	processor := &fakeProcessor{}
	log := logging.Nop()
	return &fixture{
		store:     store,
		tokens:    tokens,
		gate:      auth.NewGate(tokens, log),
		accounts:  NewAccountService(store, auth.NewPasswordHasher(bcrypt.MinCost), tokens, log),
		payments:  NewPaymentService(store, store, processor, log),
		processor: processor,
	}
}

func (f *fixture) signup(t *testing.T, email string) models.User {
	t.Helper()
	u, err := f.accounts.Signup(context.Background(), email, "User "+email, "secret123")
	require.NoError(t, err)
	return u
}

// brokenUsers fails every lookup to simulate an unavailable database.
type brokenUsers struct {
	*memory.Store
}

var errDatabaseDown = errors.New("database down")

func (brokenUsers) FindByEmail(context.Context, string) (models.User, error) {
	return models.User{}, errDatabaseDown
}
