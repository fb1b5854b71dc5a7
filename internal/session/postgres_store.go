package session

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"odonto-console/internal/database"
)

// PostgresStore keeps session records in the console_sessions table.
type PostgresStore struct {
	DB         *pgxpool.Pool
	migrations fs.FS
	logger     zerolog.Logger
}

func NewPostgresStore(db *pgxpool.Pool, migrations fs.FS, logger zerolog.Logger) *PostgresStore {
	return &PostgresStore{DB: db, migrations: migrations, logger: logger}
}

func (s *PostgresStore) Save(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	query := `
		INSERT INTO console_sessions (id, payload, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at
	`
	_, err := s.DB.Exec(ctx, query, id, data, time.Now().Add(ttl))
	return err
}

func (s *PostgresStore) Load(ctx context.Context, id string) ([]byte, error) {
	query := `SELECT payload FROM console_sessions WHERE id = $1 AND expires_at > NOW()`

	var data []byte
	err := s.DB.QueryRow(ctx, query, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, `DELETE FROM console_sessions WHERE id = $1`, id)
	return err
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.DB.Ping(ctx)
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	return database.NewMigratorWithFS(s.DB, s.migrations, s.logger).RunMigrations(ctx)
}

func (s *PostgresStore) Purge(ctx context.Context) (int64, error) {
	tag, err := s.DB.Exec(ctx, `DELETE FROM console_sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
