package publish

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/config"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS market_briefs (
		name TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	upsertSQL = `INSERT INTO market_briefs (name, content, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at`
	selectSQL = `SELECT content FROM market_briefs WHERE name = $1`
)

// Postgres 每个文档名只保留一行，发布即覆盖
type Postgres struct {
	db   *sql.DB
	name string
}

// NewPostgres 连接数据库并确保表存在
func NewPostgres(ctx context.Context, cfg config.PostgresConfig) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, errors.New("postgres dsn is required")
	}
	name := cfg.Name
	if name == "" {
		name = "crypto_data.json"
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Postgres{db: db, name: name}, nil
}

func (p *Postgres) Publish(ctx context.Context, doc []byte) error {
	if _, err := p.db.ExecContext(ctx, upsertSQL, p.name, string(doc)); err != nil {
		return fmt.Errorf("upsert report %s: %w", p.name, err)
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context) ([]byte, error) {
	var content string
	err := p.db.QueryRowContext(ctx, selectSQL, p.name).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load report %s: %w", p.name, err)
	}
	return []byte(content), nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
