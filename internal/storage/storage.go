package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/payment-gateway/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrStatusConflict indicates a status compare-and-set lost: the record was
// no longer in the expected state.
var ErrStatusConflict = errors.New("record status changed concurrently")

// UserStore captures the account directory operations needed by services.
// Emails are compared exactly; callers normalize them first.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUser(ctx context.Context, id int64, update models.UserUpdate) (models.User, error)
}

// StatusUpdate describes a guarded status transition.
type StatusUpdate struct {
	From       models.PaymentStatus
	To         models.PaymentStatus
	PaymentRef string
}

// PaymentStore captures the transaction ledger operations needed by services.
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment models.Payment) (models.Payment, error)
	FindByOrderAndOwner(ctx context.Context, orderID string, userID int64) (models.Payment, error)
	// UpdateStatus applies the transition only if the record is still in
	// update.From, returning ErrStatusConflict otherwise.
	UpdateStatus(ctx context.Context, id int64, update StatusUpdate) (models.Payment, error)
	// ListByOwner returns the user's payments, newest first.
	ListByOwner(ctx context.Context, userID int64) ([]models.Payment, error)
}

// Stats summarizes stored records for status reporting.
type Stats struct {
	Driver   string `json:"driver"`
	Users    int64  `json:"users"`
	Payments int64  `json:"payments"`
}

// Store is the full storage surface used by the server.
type Store interface {
	UserStore
	PaymentStore
	Ping(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
	Close()
}
