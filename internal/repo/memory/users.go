package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/surpriselly/authsvc/internal/domain/user"
	"github.com/surpriselly/authsvc/internal/repo"
)

// UsersRepo is an in-memory users store with the same contract as the
// postgres repo. Used in handler tests and local experiments.
type UsersRepo struct {
	mu      sync.RWMutex
	byID    map[string]user.User
	byEmail map[string]string // email -> id
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		byID:    make(map[string]user.User),
		byEmail: make(map[string]string),
	}
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]

	if !ok {
		return user.User{}, repo.ErrUserNotFound
	}

	return r.byID[id], nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]

	if !ok {
		return user.User{}, repo.ErrUserNotFound
	}

	return u, nil
}

func (r *UsersRepo) Create(_ context.Context, name, email, passwordHash string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return user.User{}, repo.ErrEmailAlreadyUsed
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID

	return u, nil
}

func (r *UsersRepo) SetResetCode(_ context.Context, id, code string, expiresAt time.Time) error {
	return r.update(id, func(u *user.User) {
		u.ResetCode = &code
		u.ResetCodeExp = &expiresAt
	})
}

func (r *UsersRepo) ClearResetCode(_ context.Context, id string) error {
	return r.update(id, func(u *user.User) {
		u.ResetCode = nil
		u.ResetCodeExp = nil
	})
}

func (r *UsersRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return r.update(id, func(u *user.User) {
		u.PasswordHash = passwordHash
		u.ResetCode = nil
		u.ResetCodeExp = nil
	})
}

func (r *UsersRepo) update(id string, mutate func(*user.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]

	if !ok {
		return repo.ErrUserNotFound
	}

	mutate(&u)
	u.UpdatedAt = time.Now().UTC()
	r.byID[id] = u

	return nil
}

// ExpireResetCode backdates the stored expiry. Test helper.
func (r *UsersRepo) ExpireResetCode(id string) error {
	past := time.Now().UTC().Add(-time.Minute)
	return r.update(id, func(u *user.User) {
		u.ResetCodeExp = &past
	})
}
