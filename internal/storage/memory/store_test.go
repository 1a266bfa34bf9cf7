package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/payment-gateway/internal/models"
	"github.com/hongminglow/payment-gateway/internal/storage"
)

func TestStore_UserLifecycle(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, models.User{Email: "a@x.com", FullName: "A", PasswordHash: "h"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	_, err = s.CreateUser(ctx, models.User{Email: "a@x.com", FullName: "B", PasswordHash: "h2"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	found, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "A", found.FullName)
	assert.Equal(t, "h", found.PasswordHash)

	later := u.UpdatedAt.Add(time.Minute)
	s.now = func() time.Time { return later }
	name := "Alpha"
	updated, err := s.UpdateUser(ctx, u.ID, models.UserUpdate{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", updated.FullName)
	assert.Equal(t, later.UTC(), updated.UpdatedAt)
	assert.Equal(t, u.CreatedAt, updated.CreatedAt)

	_, err = s.UpdateUser(ctx, 99, models.UserUpdate{FullName: &name})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.FindByEmail(ctx, "b@x.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_PaymentOwnershipAndOrdering(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	owner, err := s.CreateUser(ctx, models.User{Email: "a@x.com"})
	require.NoError(t, err)
	other, err := s.CreateUser(ctx, models.User{Email: "b@x.com"})
	require.NoError(t, err)

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, order := range []string{"order_1", "order_2", "order_3"} {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		_, err := s.CreatePayment(ctx, models.Payment{OrderID: order, Amount: 10, Currency: "INR", Status: models.PaymentPending, UserID: owner.ID})
		require.NoError(t, err)
	}

	_, err = s.CreatePayment(ctx, models.Payment{OrderID: "order_1", UserID: owner.ID})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	_, err = s.FindByOrderAndOwner(ctx, "order_1", other.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	list, err := s.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"order_3", "order_2", "order_1"}, []string{list[0].OrderID, list[1].OrderID, list[2].OrderID})

	empty, err := s.ListByOwner(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, storage.Stats{Driver: "memory", Users: 2, Payments: 3}, stats)
}

func TestStore_UpdateStatusCompareAndSet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	owner, err := s.CreateUser(ctx, models.User{Email: "a@x.com"})
	require.NoError(t, err)
	p, err := s.CreatePayment(ctx, models.Payment{OrderID: "order_1", Amount: 10, Currency: "INR", Status: models.PaymentPending, UserID: owner.ID})
	require.NoError(t, err)

	update := storage.StatusUpdate{From: models.PaymentPending, To: models.PaymentCompleted, PaymentRef: "pay_1"}

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.UpdateStatus(ctx, p.ID, update)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, storage.ErrStatusConflict)
		}
	}
	assert.Equal(t, 1, wins)

	got, err := s.FindByOrderAndOwner(ctx, "order_1", owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, got.Status)
	assert.Equal(t, "pay_1", got.PaymentRef)

	_, err = s.UpdateStatus(ctx, p.ID, storage.StatusUpdate{From: models.PaymentCompleted, To: models.PaymentFailed})
	assert.ErrorIs(t, err, storage.ErrStatusConflict)

	_, err = s.UpdateStatus(ctx, 42, update)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
