package repository

import (
	"context"
	"errors"

	"github.com/danuarta/identity-service/internal/domain/entity"
)

var (
	// ErrNotFound is returned by lookups when no identity matches.
	ErrNotFound = errors.New("identity not found")
	// ErrDuplicate is returned when a write would violate email or mobile
	// uniqueness. Two concurrent signups for the same new email both pass the
	// not-found check; exactly one of them sees this error.
	ErrDuplicate = errors.New("identity already exists")
)

// UserRepository is the persistence port for identity records. The store is
// the sole arbiter of concurrent writes: uniqueness of email and mobile is
// enforced by the store, not by callers.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByMobile(ctx context.Context, mobile string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
