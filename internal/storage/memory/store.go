// Package memory is an in-process implementation of storage.Store used by
// tests and by STORAGE_DRIVER=memory for local runs. Data does not survive a
// restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hongminglow/payment-gateway/internal/models"
	"github.com/hongminglow/payment-gateway/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps users and payments in maps guarded by a single mutex.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	nextUser int64
	nextPay  int64
	users    map[int64]models.User
	emails   map[string]int64
	payments map[int64]models.Payment
	orders   map[string]int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[int64]models.User),
		emails:   make(map[string]int64),
		payments: make(map[int64]models.Payment),
		orders:   make(map[string]int64),
	}
}

func (s *Store) Close() {}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Stats(context.Context) (storage.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return storage.Stats{Driver: "memory", Users: int64(len(s.users)), Payments: int64(len(s.payments))}, nil
}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emails[user.Email]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	s.nextUser++
	now := s.now().UTC()
	user.ID = s.nextUser
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = user
	s.emails[user.Email] = user.ID
	return user, nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) UpdateUser(_ context.Context, id int64, update models.UserUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	if update.FullName != nil {
		user.FullName = *update.FullName
	}
	user.UpdatedAt = s.now().UTC()
	s.users[id] = user
	return user, nil
}

func (s *Store) CreatePayment(_ context.Context, p models.Payment) (models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[p.UserID]; !ok {
		return models.Payment{}, fmt.Errorf("payment owner %d does not exist", p.UserID)
	}
	if _, ok := s.orders[p.OrderID]; ok {
		return models.Payment{}, storage.ErrAlreadyExists
	}
	s.nextPay++
	now := s.now().UTC()
	p.ID = s.nextPay
	p.CreatedAt = now
	p.UpdatedAt = now
	s.payments[p.ID] = p
	s.orders[p.OrderID] = p.ID
	return p, nil
}

func (s *Store) FindByOrderAndOwner(_ context.Context, orderID string, userID int64) (models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.orders[orderID]
	if !ok || s.payments[id].UserID != userID {
		return models.Payment{}, storage.ErrNotFound
	}
	return s.payments[id], nil
}

func (s *Store) UpdateStatus(_ context.Context, id int64, update storage.StatusUpdate) (models.Payment, error) {
	if !update.From.CanTransition(update.To) {
		return models.Payment{}, fmt.Errorf("illegal transition %s -> %s: %w", update.From, update.To, storage.ErrStatusConflict)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return models.Payment{}, storage.ErrNotFound
	}
	if p.Status != update.From {
		return models.Payment{}, storage.ErrStatusConflict
	}
	p.Status = update.To
	if update.PaymentRef != "" {
		p.PaymentRef = update.PaymentRef
	}
	p.UpdatedAt = s.now().UTC()
	s.payments[id] = p
	return p, nil
}

func (s *Store) ListByOwner(_ context.Context, userID int64) ([]models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Payment, 0)
	for _, p := range s.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
