package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind discriminates the two token shapes. A payload whose type does not
// match the shape expected by the caller is rejected, so a refresh token can
// never pass where an access token is required and vice versa.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Profile is the denormalized user snapshot embedded into access tokens.
// CompetenciaID is nil for individual citizen accounts.
type Profile struct {
	ID            string
	Email         string
	Name          string
	CompetenciaID *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AccessClaims carries the profile snapshot. Timestamps travel as RFC3339
// strings and are parsed back to instants during validation.
type AccessClaims struct {
	Type          Kind    `json:"type"`
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	CompetenciaID *string `json:"competenciaId"`
	CreatedAtRaw  string  `json:"createdAt"`
	UpdatedAtRaw  string  `json:"updatedAt"`
	jwt.RegisteredClaims

	createdAt time.Time
	updatedAt time.Time
}

// RefreshClaims carries only the user id. It is never trusted for profile
// data; the refresh flow re-reads the user record before reissuing.
type RefreshClaims struct {
	Type Kind   `json:"type"`
	User string `json:"user"`
	jwt.RegisteredClaims
}

// Validate is invoked by the JWT parser after signature and expiry checks.
func (c *AccessClaims) Validate() error {
	if c.Type != KindAccess {
		return errors.New("not an access token")
	}
	if c.ID == "" || c.Email == "" || c.Name == "" {
		return errors.New("missing profile fields")
	}
	if c.CompetenciaID != nil && *c.CompetenciaID == "" {
		return errors.New("empty competencia id")
	}
	var err error
	if c.createdAt, err = time.Parse(time.RFC3339, c.CreatedAtRaw); err != nil {
		return errors.New("bad createdAt")
	}
	if c.updatedAt, err = time.Parse(time.RFC3339, c.UpdatedAtRaw); err != nil {
		return errors.New("bad updatedAt")
	}
	return nil
}

// CreatedAt returns the parsed creation instant of the snapshot.
func (c *AccessClaims) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns the parsed update instant of the snapshot.
func (c *AccessClaims) UpdatedAt() time.Time { return c.updatedAt }

// Snapshot rebuilds the profile carried by the claims.
func (c *AccessClaims) Snapshot() Profile {
	return Profile{
		ID:            c.ID,
		Email:         c.Email,
		Name:          c.Name,
		CompetenciaID: c.CompetenciaID,
		CreatedAt:     c.createdAt,
		UpdatedAt:     c.updatedAt,
	}
}

// Validate rejects payloads that are not refresh-shaped.
func (c *RefreshClaims) Validate() error {
	if c.Type != KindRefresh {
		return errors.New("not a refresh token")
	}
	if c.User == "" {
		return errors.New("missing user id")
	}
	return nil
}
