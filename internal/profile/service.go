package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	sharedauth "career-backend/internal/shared/auth"
	"career-backend/internal/shared/storage/kv"
	"career-backend/internal/shared/telemetry"
)

// StorageKey is where the signed-in profile is kept.
const StorageKey = "user"

var (
	// ErrNotSignedIn is returned when no profile is stored.
	ErrNotSignedIn  = errors.New("not signed in")
	ErrInvalidInput = errors.New("invalid input")
)

// User is the workspace owner's profile.
type User struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
	// Subject identifies the sign-in source, "local:<email>" or "google:<id>".
	Subject string `json:"subject,omitempty"`
}

// Session is a stored profile with a token for API clients.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Service persists the single workspace profile.
type Service struct {
	Store kv.Store
}

// Login stores the given name and email as the current profile.
func (s *Service) Login(ctx context.Context, name, email string) (Session, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return Session{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, fmt.Errorf("%w: email is invalid", ErrInvalidInput)
	}
	return s.save(ctx, User{Name: name, Email: email, Subject: "local:" + strings.ToLower(email)})
}

// LoginExternal stores a profile obtained from an identity provider.
func (s *Service) LoginExternal(ctx context.Context, u User) (Session, error) {
	if strings.TrimSpace(u.Subject) == "" {
		return Session{}, fmt.Errorf("%w: subject is required", ErrInvalidInput)
	}
	if strings.TrimSpace(u.Name) == "" {
		u.Name = u.Email
	}
	return s.save(ctx, u)
}

// Logout removes the stored profile. Logging out twice is not an error.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.Store.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	telemetry.Info("profile.logout", nil)
	return nil
}

func (s *Service) Current(ctx context.Context) (User, error) {
	raw, err := s.Store.Get(ctx, StorageKey)
	if errors.Is(err, kv.ErrNotFound) {
		return User{}, ErrNotSignedIn
	}
	if err != nil {
		return User{}, fmt.Errorf("load profile: %w", err)
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return User{}, fmt.Errorf("decode profile: %w", err)
	}
	return u, nil
}

func (s *Service) save(ctx context.Context, u User) (Session, error) {
	token, err := sharedauth.SignJWT(sharedauth.Claims{
		Sub:     u.Subject,
		Email:   u.Email,
		Name:    u.Name,
		Picture: u.Picture,
	})
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return Session{}, err
	}
	if err := s.Store.Set(ctx, StorageKey, raw); err != nil {
		return Session{}, fmt.Errorf("save profile: %w", err)
	}
	telemetry.Info("profile.login", map[string]any{"subject": u.Subject})
	return Session{User: u, Token: token}, nil
}
