package auth

import (
	"context"
	"errors"
	"strings"
)

// Member management for organization accounts. Every operation is scoped to
// one competência; a member of another organization is indistinguishable
// from a missing user.

// Members lists the active users affiliated to the competência.
func (a *Authenticator) Members(ctx context.Context, competenciaID string) ([]*User, error) {
	return a.users.ListByCompetencia(ctx, competenciaID)
}

// Member returns one user only when affiliated to the competência.
func (a *Authenticator) Member(ctx context.Context, id, competenciaID string) (*User, error) {
	return a.users.FindMember(ctx, id, competenciaID)
}

// CreateMember registers a new user affiliated to the competência. Email
// conflicts with any active user yield ErrEmailInUse.
func (a *Authenticator) CreateMember(ctx context.Context, competenciaID, email, name, password string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || name == "" || password == "" || competenciaID == "" {
		return nil, ErrInvalidInput
	}

	if _, err := a.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	salt, err := GenerateSalt()
	if err != nil {
		return nil, err
	}
	digest, err := HashPassword(password, salt, a.pepper)
	if err != nil {
		return nil, err
	}

	user := &User{
		Email:         email,
		Name:          name,
		CompetenciaID: &competenciaID,
		PasswordHash:  digest,
		PasswordSalt:  salt,
	}
	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateMember rewrites the member's name and/or password. A nil field is
// left untouched; a new password gets a fresh salt.
func (a *Authenticator) UpdateMember(ctx context.Context, competenciaID, id string, name, password *string) (*User, error) {
	if _, err := a.users.FindMember(ctx, id, competenciaID); err != nil {
		return nil, err
	}

	var digest, salt *string
	if password != nil {
		if *password == "" {
			return nil, ErrInvalidInput
		}
		s, err := GenerateSalt()
		if err != nil {
			return nil, err
		}
		d, err := HashPassword(*password, s, a.pepper)
		if err != nil {
			return nil, err
		}
		digest, salt = &d, &s
	}
	if name != nil && *name == "" {
		return nil, ErrInvalidInput
	}

	if err := a.users.Update(ctx, id, name, digest, salt); err != nil {
		return nil, err
	}
	return a.users.FindMember(ctx, id, competenciaID)
}

// RemoveMember soft-deletes the member.
func (a *Authenticator) RemoveMember(ctx context.Context, competenciaID, id string) error {
	return a.users.SoftDeleteMember(ctx, id, competenciaID)
}
