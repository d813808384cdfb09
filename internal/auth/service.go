package auth

import (
	"context"
	"errors"
	"strings"

	"ouvidoria.app/internal/obs"
	"ouvidoria.app/internal/token"
)

// Authenticator implements the signup/login/signoff/refresh flows on top of
// the user store and the token service.
type Authenticator struct {
	users  UserStore
	tokens *token.Service
	pepper string
}

// NewAuthenticator constructs the password authenticator. An empty pepper is
// a configuration error and should abort startup.
func NewAuthenticator(users UserStore, tokens *token.Service, pepper string) (*Authenticator, error) {
	if strings.TrimSpace(pepper) == "" {
		return nil, errors.New("auth: password pepper is not configured")
	}
	return &Authenticator{users: users, tokens: tokens, pepper: pepper}, nil
}

// Signup registers a new individual account and returns a fresh session.
// An active user already holding the email yields ErrEmailInUse.
func (a *Authenticator) Signup(ctx context.Context, email, name, password string) (Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || name == "" || password == "" {
		return Session{}, ErrInvalidInput
	}

	if _, err := a.users.FindByEmail(ctx, email); err == nil {
		return Session{}, ErrEmailInUse
	} else if !errors.Is(err, ErrNotFound) {
		return Session{}, err
	}

	salt, err := GenerateSalt()
	if err != nil {
		return Session{}, err
	}
	digest, err := HashPassword(password, salt, a.pepper)
	if err != nil {
		return Session{}, err
	}

	user := &User{
		Email:        email,
		Name:         name,
		PasswordHash: digest,
		PasswordSalt: salt,
	}
	if err := a.users.Create(ctx, user); err != nil {
		return Session{}, err
	}
	return a.session(user)
}

// Login authenticates the credentials against an active user whose
// affiliation matches the requested account kind. The three failure causes
// (unknown email, wrong account kind, bad password) are logged distinctly
// for audit but are indistinguishable to the caller.
func (a *Authenticator) Login(ctx context.Context, email, password string, kind AccountKind) (Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return Session{}, ErrUnauthorized
	}

	user, err := a.users.FindForLogin(ctx, email, kind)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logLoginFailure(email, "user_not_found")
			return Session{}, ErrUnauthorized
		}
		return Session{}, err
	}

	digest, err := HashPassword(password, user.PasswordSalt, a.pepper)
	if err != nil {
		return Session{}, err
	}
	if digest != user.PasswordHash {
		logLoginFailure(email, "password_mismatch")
		return Session{}, ErrUnauthorized
	}

	return a.session(user)
}

// Signoff soft-deletes the account after the same credential check as login.
func (a *Authenticator) Signoff(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return ErrUnauthorized
	}

	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logLoginFailure(email, "user_not_found")
			return ErrUnauthorized
		}
		return err
	}
	digest, err := HashPassword(password, user.PasswordSalt, a.pepper)
	if err != nil {
		return err
	}
	if digest != user.PasswordHash {
		logLoginFailure(email, "password_mismatch")
		return ErrUnauthorized
	}

	return a.users.SoftDelete(ctx, user.ID)
}

// Refresh exchanges a refresh token for a new pair. The user record is
// re-read so the new access token carries a fresh profile snapshot; this is
// the only path that does so. Soft-deleted users are rejected.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := a.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return Session{}, ErrUnauthorized
	}

	user, err := a.users.Find(ctx, claims.User)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrUnauthorized
		}
		return Session{}, err
	}

	return a.session(user)
}

func (a *Authenticator) session(user *User) (Session, error) {
	pair, err := a.tokens.IssuePair(tokenProfile(user))
	if err != nil {
		return Session{}, err
	}
	return Session{User: *user, Pair: pair}, nil
}

func logLoginFailure(email, cause string) {
	obs.LogRequest(map[string]any{
		"type":  "audit",
		"event": "auth.login.rejected",
		"cause": cause,
		"email": email,
	})
}
