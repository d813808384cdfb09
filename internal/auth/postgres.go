package auth

import (
	"context"
	"database/sql"
	"errors"

	"ouvidoria.app/internal/ids"
)

var _ UserStore = (*PGUserStore)(nil)
var _ CompetenciaStore = (*PGCompetenciaStore)(nil)

const userColumns = `id, email, name, competencia_id, password_hash, password_salt, created_at, updated_at, deleted_at`

// PGUserStore implements UserStore using PostgreSQL.
type PGUserStore struct {
	db *sql.DB
}

func NewPGUserStore(db *sql.DB) *PGUserStore {
	return &PGUserStore{db: db}
}

func (s *PGUserStore) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx,
		`insert into users(id, email, name, competencia_id, password_hash, password_salt)
		 values($1,$2,$3,$4,$5,$6)
		 returning created_at, updated_at`,
		u.ID, u.Email, u.Name, u.CompetenciaID, u.PasswordHash, u.PasswordSalt,
	)
	return row.Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (s *PGUserStore) Find(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id=$1 and deleted_at is null`, id)
	return scanUser(row)
}

func (s *PGUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where email=$1 and deleted_at is null`, email)
	return scanUser(row)
}

func (s *PGUserStore) FindForLogin(ctx context.Context, email string, kind AccountKind) (*User, error) {
	var clause string
	if kind == KindOrganization {
		clause = `competencia_id is not null`
	} else {
		clause = `competencia_id is null`
	}
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where email=$1 and `+clause+` and deleted_at is null`, email)
	return scanUser(row)
}

func (s *PGUserStore) ListByCompetencia(ctx context.Context, competenciaID string) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+userColumns+` from users where competencia_id=$1 and deleted_at is null order by created_at`,
		competenciaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PGUserStore) FindMember(ctx context.Context, id, competenciaID string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id=$1 and competencia_id=$2 and deleted_at is null`,
		id, competenciaID)
	return scanUser(row)
}

func (s *PGUserStore) Update(ctx context.Context, id string, name, passwordHash, passwordSalt *string) error {
	res, err := s.db.ExecContext(ctx,
		`update users set
			name = coalesce($2, name),
			password_hash = coalesce($3, password_hash),
			password_salt = coalesce($4, password_salt),
			updated_at = now()
		 where id=$1 and deleted_at is null`,
		id, name, passwordHash, passwordSalt,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGUserStore) SoftDelete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`update users set deleted_at = now(), updated_at = now() where id=$1 and deleted_at is null`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGUserStore) SoftDeleteMember(ctx context.Context, id, competenciaID string) error {
	res, err := s.db.ExecContext(ctx,
		`update users set deleted_at = now(), updated_at = now()
		 where id=$1 and competencia_id=$2 and deleted_at is null`,
		id, competenciaID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// PGCompetenciaStore implements CompetenciaStore using PostgreSQL.
type PGCompetenciaStore struct {
	db *sql.DB
}

func NewPGCompetenciaStore(db *sql.DB) *PGCompetenciaStore {
	return &PGCompetenciaStore{db: db}
}

func (s *PGCompetenciaStore) Find(ctx context.Context, id string) (*Competencia, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, name, created_at, updated_at from competencias where id=$1 and deleted_at is null`, id)
	var c Competencia
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *PGCompetenciaStore) List(ctx context.Context) ([]*Competencia, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, name, created_at, updated_at from competencias where deleted_at is null order by created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Competencia
	for rows.Next() {
		var c Competencia
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, &c)
	}
	return res, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.CompetenciaID,
		&u.PasswordHash, &u.PasswordSalt, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
