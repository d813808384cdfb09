package thread

import (
	"context"
	"database/sql"
	"errors"

	"ouvidoria.app/internal/ids"
)

var _ Store = (*PGStore)(nil)
var _ MessageStore = (*PGMessageStore)(nil)

const threadColumns = `id, title, status, competencia_id, user_id, created_at, updated_at, deleted_at`

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, t *Thread) error {
	if t.ID == "" {
		t.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx,
		`insert into reclamacoes(id, title, status, competencia_id, user_id)
		 values($1,$2,$3,$4,$5)
		 returning created_at, updated_at`,
		t.ID, t.Title, t.Status, t.CompetenciaID, t.UserID,
	)
	return row.Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (s *PGStore) Find(ctx context.Context, id string) (*Thread, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+threadColumns+` from reclamacoes where id=$1 and deleted_at is null`, id)
	return scanThread(row)
}

func (s *PGStore) ListByAuthor(ctx context.Context, userID, title string) ([]*Thread, error) {
	return s.list(ctx,
		`select `+threadColumns+` from reclamacoes
		 where user_id=$1 and ($2 = '' or title=$2) and deleted_at is null
		 order by created_at`,
		userID, title)
}

func (s *PGStore) ListByCompetencia(ctx context.Context, competenciaID, title string) ([]*Thread, error) {
	return s.list(ctx,
		`select `+threadColumns+` from reclamacoes
		 where competencia_id=$1 and ($2 = '' or title=$2) and deleted_at is null
		 order by created_at`,
		competenciaID, title)
}

func (s *PGStore) list(ctx context.Context, query string, args ...any) ([]*Thread, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Thread
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (s *PGStore) Update(ctx context.Context, t *Thread) error {
	res, err := s.db.ExecContext(ctx,
		`update reclamacoes set title=$2, status=$3, competencia_id=$4, updated_at=now()
		 where id=$1 and deleted_at is null`,
		t.ID, t.Title, t.Status, t.CompetenciaID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) SoftDelete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`update reclamacoes set deleted_at=now(), updated_at=now() where id=$1 and deleted_at is null`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// PGMessageStore implements MessageStore using PostgreSQL.
type PGMessageStore struct {
	db *sql.DB
}

func NewPGMessageStore(db *sql.DB) *PGMessageStore {
	return &PGMessageStore{db: db}
}

func (s *PGMessageStore) Create(ctx context.Context, m *Message) error {
	if m.ID == "" {
		m.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into mensagens(id, reclamacao_id, user_id, text, image, lat, lng, dth)
		 values($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ID, m.ThreadID, m.UserID, m.Text, m.Image, m.Lat, m.Lng, m.DTH,
	)
	return err
}

func (s *PGMessageStore) ListByThread(ctx context.Context, threadID string) ([]Message, error) {
	// Insertion order, which ULID ids make equivalent to id order.
	rows, err := s.db.QueryContext(ctx,
		`select id, reclamacao_id, user_id, text, image, lat, lng, dth
		 from mensagens where reclamacao_id=$1 and deleted_at is null order by id`,
		threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.UserID, &m.Text, &m.Image, &m.Lat, &m.Lng, &m.DTH); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func scanThread(row interface{ Scan(dest ...any) error }) (*Thread, error) {
	var t Thread
	err := row.Scan(&t.ID, &t.Title, &t.Status, &t.CompetenciaID, &t.UserID,
		&t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
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
