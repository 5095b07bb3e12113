package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/sageexcel/internal/apperror"
	"github.com/sakif/sageexcel/internal/auth"
	"github.com/sakif/sageexcel/internal/model"
	"github.com/sakif/sageexcel/internal/repository"
)

// AuthService handles registration, login and password changes.
//
//	AuthHandler (HTTP) → AuthService → UserRepository
//	                              ↘ TokenService, PasswordService
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	admins    map[string]bool
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// WithAdminEmails makes Register grant the admin role to these addresses.
func (s *AuthService) WithAdminEmails(emails []string) *AuthService {
	s.admins = make(map[string]bool, len(emails))
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			s.admins[e] = true
		}
	}
	return s
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginResult is what the login endpoint hands back to the client.
type LoginResult struct {
	Token string
	User  *model.User
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user. The email is stored lower-cased; only addresses
// configured as admin emails get the admin role.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	switch {
	case name == "":
		return nil, apperror.MissingField("name", "name is required")
	case email == "":
		return nil, apperror.MissingField("email", "email is required")
	case in.Password == "":
		return nil, apperror.MissingField("password", "password is required")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{Name: name, Email: email, PasswordHash: hash, IsAdmin: s.admins[email]}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
		slog.Bool("isAdmin", user.IsAdmin),
	)
	return user, nil
}

// Login checks credentials and issues a token. An unknown email fails
// straight away without comparing any hash.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.MissingField("", "email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthenticated("user doesnt exist")
		}
		return nil, fmt.Errorf("service/auth: looking up %s: %w", email, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("login with wrong password", slog.String("userID", user.ID))
			return nil, apperror.InvalidCredential("Invalid password")
		}
		return nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}

	token, err := s.tokens.Issue(profileOf(user))
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return &LoginResult{Token: token, User: user}, nil
}

// Verify validates a token without touching the store.
func (s *AuthService) Verify(token string) (*auth.Profile, error) {
	p, err := s.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperror.InvalidToken("Token expired")
		}
		return nil, apperror.InvalidToken("Invalid token")
	}
	return p, nil
}

// GetUser reloads the caller from the store, with back-references.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, asUserNotFound(err, userID)
	}
	return user, nil
}

// ChangePassword replaces the hash after checking the old password. Tokens
// issued before the change stay valid until they expire.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return apperror.MissingField("newPassword", "new password is required")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return asUserNotFound(err, userID)
	}

	if err := s.passwords.Verify(user.PasswordHash, oldPassword); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return apperror.InvalidCredential("Old password is incorrect")
		}
		return fmt.Errorf("service/auth: verifying password: %w", err)
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return apperror.ValidationFailed("newPassword", err.Error())
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return asUserNotFound(err, userID)
	}

	s.logger.Info("password changed", slog.String("userID", userID))
	return nil
}

func profileOf(u *model.User) auth.Profile {
	return auth.Profile{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin}
}
