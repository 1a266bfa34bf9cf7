package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/payment-gateway/internal/models"
	"github.com/hongminglow/payment-gateway/internal/payments/razorpay"
	"github.com/hongminglow/payment-gateway/internal/storage"
)

func TestToMinorUnits(t *testing.T) {
	got, err := ToMinorUnits(1000.00)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), got)

	got, err = ToMinorUnits(19.99)
	require.NoError(t, err)
	assert.Equal(t, int64(1999), got)

	for _, bad := range []float64{0, -5, 0.001} {
		_, err := ToMinorUnits(bad)
		assert.ErrorIs(t, err, ErrValidation, "amount %v", bad)
	}
}

func TestCreatePayment_PendingRecord(t *testing.T) {
	f := newFixture(t)
	user := f.signup(t, "a@x.com")

	out, err := f.payments.Create(context.Background(), "a@x.com", CreatePaymentInput{Amount: 1000.00, Currency: "inr"})
	require.NoError(t, err)

	p := out.Payment
	assert.Equal(t, "order_1", p.OrderID)
	assert.Equal(t, models.PaymentPending, p.Status)
	assert.Equal(t, 1000.00, p.Amount)
	assert.Equal(t, "INR", p.Currency)
	assert.Equal(t, user.ID, p.UserID)
	assert.Equal(t, "rzp_test_key", out.KeyID)

	require.Len(t, f.processor.requests, 1)
	req := f.processor.requests[0]
	assert.Equal(t, int64(100000), req.Amount)
	assert.Equal(t, "INR", req.Currency)
	assert.Equal(t, "Payment for services", req.Notes["description"])
	assert.LessOrEqual(t, len(req.Receipt), 40)
	assert.Contains(t, req.Receipt, "rcpt_")
}

func TestCreatePayment_DefaultsCurrency(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "a@x.com")

	out, err := f.payments.Create(context.Background(), "a@x.com", CreatePaymentInput{Amount: 5, Description: "Books"})
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, out.Payment.Currency)
	assert.Equal(t, "Books", out.Payment.Description)
	assert.Equal(t, "Books", f.processor.requests[0].Notes["description"])
}

func TestCreatePayment_ProviderFailureLeavesNoRecord(t *testing.T) {
	f := newFixture(t)
	user := f.signup(t, "a@x.com")
	cause := errors.New("bad gateway")
	f.processor.createErr = cause

	_, err := f.payments.Create(context.Background(), "a@x.com", CreatePaymentInput{Amount: 10, Currency: "INR"})
	var providerErr *ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.ErrorIs(t, err, cause)

	list, err := f.store.ListByOwner(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreatePayment_RejectsBeforeProcessor(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "a@x.com")
	ctx := context.Background()

	_, err := f.payments.Create(ctx, "a@x.com", CreatePaymentInput{Amount: 0})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.payments.Create(ctx, "a@x.com", CreatePaymentInput{Amount: 10, Currency: "RUPEE"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.payments.Create(ctx, "gone@x.com", CreatePaymentInput{Amount: 10})
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.Empty(t, f.processor.requests)
}

func TestVerifyPayment_CompletesOnceThenIdempotent(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "a@x.com")
	ctx := context.Background()

	out, err := f.payments.Create(ctx, "a@x.com", CreatePaymentInput{Amount: 1000.00, Currency: "INR"})
	require.NoError(t, err)
	orderID := out.Payment.OrderID
	sig := razorpay.Sign(processorSecret, orderID, "pay_1")

	done, err := f.payments.Verify(ctx, "a@x.com", orderID, "pay_1", sig)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, done.Status)
	assert.Equal(t, "pay_1", done.PaymentRef)

	again, err := f.payments.Verify(ctx, "a@x.com", orderID, "pay_1", sig)
	require.NoError(t, err)
	assert.Equal(t, done, again)
	assert.Equal(t, 1, f.processor.verifications())
}

func TestVerifyPayment_TamperedSignatureStaysPending(t *testing.T) {
	f := newFixture(t)
	user := f.signup(t, "a@x.com")
	ctx := context.Background()

	out, err := f.payments.Create(ctx, "a@x.com", CreatePaymentInput{Amount: 50})
	require.NoError(t, err)
	sig := razorpay.Sign(processorSecret, out.Payment.OrderID, "pay_1")
	tampered := "0" + sig[1:]
	if tampered == sig {
		tampered = "1" + sig[1:]
	}

	_, err = f.payments.Verify(ctx, "a@x.com", out.Payment.OrderID, "pay_1", tampered)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	stored, err := f.store.FindByOrderAndOwner(ctx, out.Payment.OrderID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, stored.Status)
	assert.Empty(t, stored.PaymentRef)
}

func TestVerifyPayment_OtherOwnersOrder(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "a@x.com")
	f.signup(t, "b@x.com")
	ctx := context.Background()

	out, err := f.payments.Create(ctx, "a@x.com", CreatePaymentInput{Amount: 50})
	require.NoError(t, err)
	sig := razorpay.Sign(processorSecret, out.Payment.OrderID, "pay_1")

	_, err = f.payments.Verify(ctx, "b@x.com", out.Payment.OrderID, "pay_1", sig)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
	assert.Zero(t, f.processor.verifications())
}

func TestVerifyPayment_FailedIsClosed(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "a@x.com")
	ctx := context.Background()

	out, err := f.payments.Create(ctx, "a@x.com", CreatePaymentInput{Amount: 50})
	require.NoError(t, err)
	_, err = f.store.UpdateStatus(ctx, out.Payment.ID, storage.StatusUpdate{From: models.PaymentPending, To: models.PaymentFailed})
	require.NoError(t, err)

	sig := razorpay.Sign(processorSecret, out.Payment.OrderID, "pay_1")
	_, err = f.payments.Verify(ctx, "a@x.com", out.Payment.OrderID, "pay_1", sig)
	assert.ErrorIs(t, err, ErrPaymentClosed)
}

func TestVerifyPayment_ConcurrentCallsTransitionOnce(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "a@x.com")
	ctx := context.Background()

	out, err := f.payments.Create(ctx, "a@x.com", CreatePaymentInput{Amount: 50})
	require.NoError(t, err)
	sig := razorpay.Sign(processorSecret, out.Payment.OrderID, "pay_1")

	var wg sync.WaitGroup
	results := make([]models.Payment, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.payments.Verify(ctx, "a@x.com", out.Payment.OrderID, "pay_1", sig)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, models.PaymentCompleted, results[i].Status)
		assert.Equal(t, results[0].UpdatedAt, results[i].UpdatedAt)
	}
}

func TestListPayments_NewestFirst(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "a@x.com")
	f.signup(t, "b@x.com")
	ctx := context.Background()

	for _, amount := range []float64{10, 20, 30} {
		_, err := f.payments.Create(ctx, "a@x.com", CreatePaymentInput{Amount: amount})
		require.NoError(t, err)
	}
	_, err := f.payments.Create(ctx, "b@x.com", CreatePaymentInput{Amount: 99})
	require.NoError(t, err)

	list, err := f.payments.List(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []float64{30, 20, 10}, []float64{list[0].Amount, list[1].Amount, list[2].Amount})

	_, err = f.payments.List(ctx, "gone@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
