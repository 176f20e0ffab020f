package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
)

// Store owns the single database connection of a pipeline run.
type Store struct {
	conn *pgx.Conn
}

// NewStore opens the run's database connection.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close releases the connection; called on every exit path.
func (s *Store) Close(ctx context.Context) {
	if s.conn != nil {
		_ = s.conn.Close(ctx)
	}
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS argo_profiles (
    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    float_id TEXT,
    date TIMESTAMP,
    latitude DOUBLE PRECISION,
    longitude DOUBLE PRECISION,
    depth DOUBLE PRECISION,
    temperature DOUBLE PRECISION,
    salinity DOUBLE PRECISION
)`

var indexSQL = []string{
	`CREATE INDEX IF NOT EXISTS idx_argo_profiles_date ON argo_profiles (date)`,
	`CREATE INDEX IF NOT EXISTS idx_argo_profiles_latlon ON argo_profiles (latitude, longitude)`,
	`CREATE INDEX IF NOT EXISTS idx_argo_profiles_float ON argo_profiles (float_id)`,
}

// EnsureSchema creates the argo_profiles table and its secondary
// indexes if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.conn.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create argo_profiles: %w", err)
	}
	for _, stmt := range indexSQL {
		if _, err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// Truncate discards all stored rows and restarts the identity column.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.conn.Exec(ctx, `TRUNCATE TABLE argo_profiles RESTART IDENTITY`); err != nil {
		return fmt.Errorf("truncate argo_profiles: %w", err)
	}
	return nil
}

const copySQL = `COPY argo_profiles (float_id, date, latitude, longitude, depth, temperature, salinity)
FROM STDIN WITH (FORMAT csv, HEADER true, NULL '')`

// BulkLoad streams the CSV artifact through the COPY protocol,
// skipping the header line, and returns the number of rows loaded.
func (s *Store) BulkLoad(ctx context.Context, csvPath string) (int64, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	tag, err := s.conn.PgConn().CopyFrom(ctx, f, copySQL)
	if err != nil {
		return 0, fmt.Errorf("copy into argo_profiles: %w", err)
	}
	return tag.RowsAffected(), nil
}
