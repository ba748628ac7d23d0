package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"museumtix/internal/domain"
	"museumtix/internal/middleware"
	"museumtix/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service contains all business logic for authentication
type Service struct {
	users UserRepository
	jwt   tokenIssuer
	now   func() time.Time
}

func NewService(users UserRepository, jwt tokenIssuer) *Service {
	return &Service{users: users, jwt: jwt, now: time.Now}
}

type AuthResult struct {
	User  *domain.User
	Token string
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hashed,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         domain.RoleVisitor,
		Language:     req.Language,
		CreatedAt:    now,
		LastSeen:     now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.TouchLastSeen(ctx, user.ID, s.now().UTC()); err != nil {
		log.Printf("auth_last_seen_failed user_id=%s error=%q", user.ID, err.Error())
	}
	return s.issue(user)
}

func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	_ = s.users.TouchLastSeen(ctx, userID, s.now().UTC())
	return user, nil
}

func (s *Service) issue(user *domain.User) (*AuthResult, error) {
	token, err := s.jwt.GenerateToken(user.ID, string(user.Role), user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FirebaseVerifier turns identity provider tokens into principals, creating
// the local user row on first sight.
type FirebaseVerifier struct {
	verifier idTokenVerifier
	users    UserRepository
}

func NewFirebaseVerifier(verifier idTokenVerifier, users UserRepository) *FirebaseVerifier {
	return &FirebaseVerifier{verifier: verifier, users: users}
}

func (f *FirebaseVerifier) Verify(ctx context.Context, token string) (*middleware.Principal, error) {
	id, err := f.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	role, ok := domain.ParseUserRole(id.Role)
	if !ok {
		role = domain.RoleVisitor
	}
	now := time.Now().UTC()
	user, err := f.users.Ensure(ctx, &domain.User{
		ID:        id.UID,
		Email:     id.Email,
		Role:      role,
		CreatedAt: now,
		LastSeen:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	return &middleware.Principal{UserID: user.ID, Role: string(user.Role), Email: user.Email}, nil
}
