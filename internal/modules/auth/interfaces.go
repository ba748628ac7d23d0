package auth

import (
	"context"
	"time"

	"museumtix/internal/domain"
	"museumtix/internal/pkg/firebaseauth"
)

// UserRepository is the subset of user storage the auth service needs.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Ensure(ctx context.Context, u *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	TouchLastSeen(ctx context.Context, id string, at time.Time) error
}

type tokenIssuer interface {
	GenerateToken(userID, role, email string) (string, error)
}

type idTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*firebaseauth.Identity, error)
}
