// Package service holds application services that sit between the HTTP
// handlers and the repositories.
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/slotarena/platform/internal/auth"
	"github.com/slotarena/platform/internal/domain"
	"github.com/slotarena/platform/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles user registration and login.
type AuthService struct {
	pool    *pgxpool.Pool
	users   repository.UserRepository
	wallets repository.WalletRepository
	jwtMgr  *auth.JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(pool *pgxpool.Pool, users repository.UserRepository, wallets repository.WalletRepository, jwtMgr *auth.JWTManager) *AuthService {
	return &AuthService{pool: pool, users: users, wallets: wallets, jwtMgr: jwtMgr}
}

// RegisterInput holds the registration request fields.
type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginInput holds the login request fields.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	Token    string    `json:"token"`
	UserID   uuid.UUID `json:"userId"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	Balance  int64     `json:"balance"`
}

// Register creates a new user account with a zeroed wallet in a single
// transaction.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := domain.ValidateGamingUsername(input.Username); err != nil {
		return nil, err
	}
	if len(input.Password) < 8 {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}

	existing, err := s.users.FindByEmail(ctx, s.pool, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	user := &domain.User{
		ID:           uuid.New(),
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, tx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.ErrConflict("email already registered")
		}
		return nil, domain.ErrInternal("create user", err)
	}

	wallet := &domain.Wallet{UserID: user.ID}
	if err := s.wallets.Create(ctx, tx, wallet); err != nil {
		return nil, domain.ErrInternal("create wallet", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	token, err := s.jwtMgr.GenerateToken(auth.RealmPlayer, user.ID, user.Email)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{
		Token:    token,
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	}, nil
}

// Login authenticates a user and issues a realm token. Admin accounts get
// an admin-realm token so the settlement endpoints accept them.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, s.pool, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	realm := auth.RealmPlayer
	if user.IsAdmin {
		realm = auth.RealmAdmin
	}
	token, err := s.jwtMgr.GenerateToken(realm, user.ID, user.Email)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	var balance int64
	wallet, err := s.wallets.FindByUser(ctx, s.pool, user.ID)
	if err == nil && wallet != nil {
		balance = wallet.Balance
	}

	return &AuthResult{
		Token:    token,
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Balance:  balance,
	}, nil
}
