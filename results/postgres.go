package results

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRecorder は複数のボットで共有するPostgreSQLに結果を追記します。
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, dsn string) (*PostgresRecorder, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS match_results (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL,
		match_name TEXT,
		player_id TEXT NOT NULL,
		nickname TEXT,
		score INTEGER NOT NULL,
		kills INTEGER NOT NULL,
		place INTEGER NOT NULL,
		players INTEGER NOT NULL,
		ended_at TIMESTAMPTZ NOT NULL
	)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &PostgresRecorder{pool: pool}, nil
}

func (p *PostgresRecorder) Record(ctx context.Context, r Result) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO match_results
		 (session_id, match_name, player_id, nickname, score, kills, place, players, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.SessionID, r.MatchName, r.PlayerID, r.Nickname, r.Score, r.Kills, r.Place, r.Players, r.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (p *PostgresRecorder) Close() error {
	p.pool.Close()
	return nil
}
