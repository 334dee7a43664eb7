package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"
)

// AuthService implements ports.AuthService.
type AuthService struct {
	accounts      ports.AccountRepository
	hasher        ports.HashService
	tokens        ports.TokenService
	adminPassword string
	now           func() time.Time
}

// NewAuthService creates a new AuthService. adminPassword guards AdminLogin;
// an empty value disables admin login.
func NewAuthService(
	accounts ports.AccountRepository,
	hasher ports.HashService,
	tokens ports.TokenService,
	adminPassword string,
) *AuthService {
	return &AuthService{
		accounts:      accounts,
		hasher:        hasher,
		tokens:        tokens,
		adminPassword: adminPassword,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account with zero balance and returns a session token.
func (s *AuthService) Register(ctx context.Context, req ports.RegisterRequest) (*ports.RegisterResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	for _, f := range []struct{ name, value string }{
		{"name", name}, {"email", email}, {"password", req.Password},
	} {
		if err := domain.RequireField(f.name, f.value); err != nil {
			return nil, apperror.Validation(err.Error())
		}
	}

	existing, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check email: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrDuplicateEmail()
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	account := domain.NewAccount(name, email, hash, s.now())
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ports.ErrDuplicateKey) {
			return nil, apperror.ErrDuplicateEmail()
		}
		return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
	}

	token, expiry, err := s.tokens.Generate(account.ID.String(), ports.RoleUser)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return &ports.RegisterResponse{Account: account, Token: token, Expiry: expiry}, nil
}

// Login checks the password and returns a user token. Unknown email and wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResponse, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrInvalidCredentials()
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokens.Generate(account.ID.String(), ports.RoleUser)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}
	return &ports.LoginResponse{Account: account, Token: token, Expiry: expiry}, nil
}

// AdminLogin compares password with the configured admin password in constant time.
func (s *AuthService) AdminLogin(_ context.Context, password string) (*ports.LoginResponse, error) {
	if s.adminPassword == "" ||
		subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) != 1 {
		return nil, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokens.Generate(ports.AdminSubject, ports.RoleAdmin)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}
	return &ports.LoginResponse{Token: token, Expiry: expiry}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
