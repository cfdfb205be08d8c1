package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danuarta/identity-service/internal/domain/entity"
	"github.com/danuarta/identity-service/internal/domain/repository"
)

// UserRepository is an in-memory store used by tests and local tooling. It
// mirrors the uniqueness guarantees the Postgres schema provides.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entity.User)}
}

func clone(u *entity.User) *entity.User {
	c := *u
	return &c
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if u.Email != "" && existing.Email == u.Email {
			return repository.ErrDuplicate
		}
		if u.Mobile != "" && existing.Mobile == u.Mobile {
			return repository.ErrDuplicate
		}
	}

	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = clone(u)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return clone(u), nil
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email != "" && u.Email == email {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) GetByMobile(_ context.Context, mobile string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Mobile != "" && u.Mobile == mobile {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[u.ID] = clone(u)
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
