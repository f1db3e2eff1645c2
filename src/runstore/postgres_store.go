package runstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/alpkeskin/gotoon"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists suspended run state in Postgres, keyed by
// (agent, run_id), with the snapshot stored as jsonb.
type PostgresStore struct {
	DB *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and returns a store backed by it.
func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return &PostgresStore{DB: db}, nil
}

// CreateSchema bootstraps the backing table.
func (ps *PostgresStore) CreateSchema(ctx context.Context) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	_, err := ps.DB.Exec(ctx, `
                CREATE TABLE IF NOT EXISTS agent_runs (
                        agent      TEXT        NOT NULL,
                        run_id     BIGINT      NOT NULL,
                        state      JSONB       NOT NULL,
                        updated_at TIMESTAMPTZ NOT NULL,
                        PRIMARY KEY (agent, run_id)
                );
        `)
	return err
}

func (ps *PostgresStore) Save(ctx context.Context, state RunState) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	state.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal run state: %w", err)
	}
	_, err = ps.DB.Exec(ctx, `
                INSERT INTO agent_runs (agent, run_id, state, updated_at)
                VALUES ($1, $2, $3::jsonb, $4)
                ON CONFLICT (agent, run_id)
                DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at;
        `, state.Agent, state.RunID, payload, state.UpdatedAt)
	return err
}

func (ps *PostgresStore) Load(ctx context.Context, agent string, runID int64) (RunState, error) {
	if ps == nil || ps.DB == nil {
		return RunState{}, ErrNotFound
	}
	var payload []byte
	err := ps.DB.QueryRow(ctx, `
                SELECT state FROM agent_runs WHERE agent = $1 AND run_id = $2;
        `, agent, runID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return RunState{}, ErrNotFound
	}
	if err != nil {
		return RunState{}, err
	}
	var state RunState
	if err := json.Unmarshal(payload, &state); err != nil {
		return RunState{}, fmt.Errorf("unmarshal run state: %w", err)
	}
	return state, nil
}

func (ps *PostgresStore) Delete(ctx context.Context, agent string, runID int64) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	_, err := ps.DB.Exec(ctx, `
                DELETE FROM agent_runs WHERE agent = $1 AND run_id = $2;
        `, agent, runID)
	return err
}

var _ Store = (*PostgresStore)(nil)
