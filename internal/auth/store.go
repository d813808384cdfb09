package auth

import "context"

// AccountKind selects which affiliation nullability a login lookup must
// match: an organization login resolves only to users with a competência, an
// individual login only to users without one.
type AccountKind int

const (
	KindIndividual AccountKind = iota
	KindOrganization
)

// UserStore describes persistence operations required by the authenticator
// and the competência-scoped member management handlers. All lookups skip
// soft-deleted rows unless noted otherwise.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	// Find returns the user by id regardless of affiliation.
	Find(ctx context.Context, id string) (*User, error)
	// FindByEmail returns the active user holding the email.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindForLogin returns the active user matching both the email and the
	// requested account kind.
	FindForLogin(ctx context.Context, email string, kind AccountKind) (*User, error)
	// ListByCompetencia returns the active members of one organization.
	ListByCompetencia(ctx context.Context, competenciaID string) ([]*User, error)
	// FindMember returns an active user only when affiliated to the given
	// organization.
	FindMember(ctx context.Context, id, competenciaID string) (*User, error)
	// Update rewrites name and/or credentials; nil fields are left untouched.
	Update(ctx context.Context, id string, name, passwordHash, passwordSalt *string) error
	// SoftDelete marks the user deleted; it never removes the row.
	SoftDelete(ctx context.Context, id string) error
	// SoftDeleteMember soft-deletes only when the user belongs to the given
	// organization.
	SoftDeleteMember(ctx context.Context, id, competenciaID string) error
}

// CompetenciaStore manages the organization catalog.
type CompetenciaStore interface {
	Find(ctx context.Context, id string) (*Competencia, error)
	List(ctx context.Context) ([]*Competencia, error)
}
