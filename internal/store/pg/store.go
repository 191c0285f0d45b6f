package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentia/talentia-api/internal/config"
)

// Store implementa los repositorios del core sobre pgxpool:
// UserRepository, RBACRepository, TeamRepository y TokenRepository.
type Store struct{ pool *pgxpool.Pool }

func New(ctx context.Context, cfg *config.Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.Storage.DSN)
	if err != nil {
		return nil, err
	}
	if v := cfg.Storage.Postgres.MaxOpenConns; v > 0 {
		pcfg.MaxConns = int32(v)
	}
	// MaxIdleConns se mapea a MinConns (pgxpool)
	if v := cfg.Storage.Postgres.MaxIdleConns; v > 0 {
		pcfg.MinConns = int32(v)
	}
	if s := cfg.Storage.Postgres.ConnMaxLifetime; s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			pcfg.MaxConnLifetime = d
			pcfg.MaxConnIdleTime = d
		}
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 10
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Pool expone el pool interno (migraciones, readyz).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

// Ping verifica conectividad con timeout corto (readyz).
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}
