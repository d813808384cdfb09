package auth

import (
	"time"

	"ouvidoria.app/internal/token"
)

// User is the persisted account record. CompetenciaID is nil for individual
// citizens; soft-deleted rows keep their data but never match active lookups.
type User struct {
	ID            string
	Email         string
	Name          string
	CompetenciaID *string
	PasswordHash  string
	PasswordSalt  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// Competencia is a tenant organization account.
type Competencia struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is the denormalized snapshot carried by an access token. It can be
// stale relative to the live user record until the next refresh.
type Profile struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Principal is the authenticated identity derived from verified access
// claims. It is a closed two-variant union so authorization code can switch
// exhaustively instead of branching on a nullable field.
type Principal interface {
	Snapshot() Profile
	principal()
}

// Individual is a citizen account with no organization affiliation.
type Individual struct {
	Profile Profile
}

// OrganizationMember is an account affiliated to a competência.
type OrganizationMember struct {
	Profile       Profile
	CompetenciaID string
}

func (p Individual) Snapshot() Profile { return p.Profile }
func (p Individual) principal()        {}

func (p OrganizationMember) Snapshot() Profile { return p.Profile }
func (p OrganizationMember) principal()        {}

// PrincipalFromClaims converts decoded access claims into the matching
// principal variant.
func PrincipalFromClaims(c *token.AccessClaims) Principal {
	profile := Profile{
		ID:        c.ID,
		Email:     c.Email,
		Name:      c.Name,
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
	if c.CompetenciaID != nil {
		return OrganizationMember{Profile: profile, CompetenciaID: *c.CompetenciaID}
	}
	return Individual{Profile: profile}
}

// Session is what the auth endpoints hand back after a successful
// signup/login/refresh.
type Session struct {
	User User
	Pair token.Pair
}

func tokenProfile(u *User) token.Profile {
	return token.Profile{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		CompetenciaID: u.CompetenciaID,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
