package persist

import (
	"context"
	"errors"
	"rental-marketplace/internal/persist/zapadapter"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// ErrSchemaMissing is returned when the session_records table has not been created
var ErrSchemaMissing = errors.New("session_records table does not exist")

const schema = `create table if not exists session_records (
	key        text primary key,
	payload    jsonb not null,
	updated_at timestamptz not null default now()
)`

// Postgres keeps records in the session_records table
type Postgres struct {
	logger *zap.SugaredLogger
	db     *pgxpool.Pool
}

// NewPostgres sets provided zap.Logger via zapadapter to pgxpool.Pool and returns instance of Postgres
func NewPostgres(ctx context.Context, logger *zap.SugaredLogger, cfg PostgresConfig, opts ...Option) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, err
	}
	config.ConnConfig.Logger = zapadapter.NewLogger(logger.Desugar())
	for _, opt := range opts {
		opt.apply(config)
	}

	pool, err := pgxpool.ConnectConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	return &Postgres{
		logger: logger,
		db:     pool,
	}, nil
}

// EnsureSchema creates the session_records table when it does not exist yet
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, schema)
	return err
}

// Load returns the payload stored under key
func (p *Postgres) Load(ctx context.Context, key string) ([]byte, bool, error) {
	p.logger.Debugf("Loading record (%s)", key)

	var payload pgtype.JSONB
	sql := "select payload from session_records where key = $1"
	err := p.db.QueryRow(ctx, sql, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, classify(err)
	}

	if payload.Status != pgtype.Present {
		return nil, false, nil
	}

	return payload.Bytes, true, nil
}

// Save upserts the payload stored under key
func (p *Postgres) Save(ctx context.Context, key string, data []byte) error {
	p.logger.Debugf("Saving record (%s)", key)

	payload := pgtype.JSONB{Bytes: data, Status: pgtype.Present}
	sql := `insert into session_records (key, payload, updated_at) values ($1, $2, now())
			on conflict (key) do update set payload = excluded.payload, updated_at = excluded.updated_at`
	_, err := p.db.Exec(ctx, sql, key, payload)
	return classify(err)
}

// Delete removes the payload stored under key
func (p *Postgres) Delete(ctx context.Context, key string) error {
	p.logger.Debugf("Deleting record (%s)", key)

	_, err := p.db.Exec(ctx, "delete from session_records where key = $1", key)
	return classify(err)
}

// Close closes all connections in the pool
func (p *Postgres) Close() {
	p.db.Close()
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return ErrSchemaMissing
	}
	return err
}
