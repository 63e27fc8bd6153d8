package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kaboo-server/game"
	"kaboo-server/moveerrors"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS games (
	id         TEXT PRIMARY KEY,
	state      JSONB NOT NULL,
	version    BIGINT NOT NULL,
	phase      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS game_members (
	game_id   TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	seat      SMALLINT NOT NULL,
	player_id TEXT NOT NULL,
	name      TEXT NOT NULL DEFAULT '',
	is_host   BOOLEAN NOT NULL DEFAULT false,
	is_bot    BOOLEAN NOT NULL DEFAULT false,
	joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (game_id, seat)
);
CREATE INDEX IF NOT EXISTS idx_game_members_player ON game_members(player_id);
CREATE TABLE IF NOT EXISTS round_results (
	game_id      TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	round        INT NOT NULL,
	seat         SMALLINT NOT NULL,
	player_id    TEXT NOT NULL,
	name         TEXT NOT NULL DEFAULT '',
	score        INT NOT NULL,
	total_score  INT NOT NULL,
	called_kaboo BOOLEAN NOT NULL DEFAULT false,
	leading      BOOLEAN NOT NULL DEFAULT false,
	recorded_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (game_id, round, seat)
);
`

// Store persists games in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and ensures the tables exist.
// If databaseURL is empty, NewStore returns (nil, nil) and no persistence occurs.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to Postgres", "tag", "storage")
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// SaveGame writes the canonical state. An older version never overwrites a newer one.
func (s *Store) SaveGame(ctx context.Context, id string, state game.GameState) error {
	if s == nil || s.pool == nil {
		return nil
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO games (id, state, version, phase) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET state = EXCLUDED.state, version = EXCLUDED.version, phase = EXCLUDED.phase, updated_at = now()
		WHERE games.version < EXCLUDED.version`,
		id, data, state.Version, state.GamePhase.String())
	return err
}

// LoadGame returns the last saved canonical state, or moveerrors.ErrGameNotFound.
func (s *Store) LoadGame(ctx context.Context, id string) (game.GameState, error) {
	if s == nil || s.pool == nil {
		return game.GameState{}, moveerrors.ErrGameNotFound
	}
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT state FROM games WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return game.GameState{}, moveerrors.ErrGameNotFound
		}
		return game.GameState{}, err
	}
	var st game.GameState
	if err := json.Unmarshal(data, &st); err != nil {
		return game.GameState{}, fmt.Errorf("decode state of %s: %w", id, err)
	}
	return st, nil
}

// UpsertMember records who sits in a seat.
func (s *Store) UpsertMember(ctx context.Context, gameID string, m Member) error {
	if s == nil || s.pool == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO game_members (game_id, seat, player_id, name, is_host, is_bot) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, seat) DO UPDATE
		SET player_id = EXCLUDED.player_id, name = EXCLUDED.name, is_host = EXCLUDED.is_host, is_bot = EXCLUDED.is_bot`,
		gameID, m.Seat, m.PlayerID, m.Name, m.IsHost, m.IsBot)
	return err
}

// ListMembers returns the seats of a game ordered by seat.
func (s *Store) ListMembers(ctx context.Context, gameID string) ([]Member, error) {
	if s == nil || s.pool == nil {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT seat, player_id, name, is_host, is_bot, joined_at
		FROM game_members WHERE game_id = $1 ORDER BY seat`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.Seat, &m.PlayerID, &m.Name, &m.IsHost, &m.IsBot, &m.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// InsertRoundResult records one player's result. Re-recording the same round is a no-op.
func (s *Store) InsertRoundResult(ctx context.Context, r RoundResult) error {
	if s == nil || s.pool == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO round_results (game_id, round, seat, player_id, name, score, total_score, called_kaboo, leading)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (game_id, round, seat) DO NOTHING`,
		r.GameID, r.Round, r.Seat, r.PlayerID, r.Name, r.Score, r.TotalScore, r.CalledKaboo, r.Leading)
	return err
}

// ListRoundResults returns every recorded result of a game, oldest round first.
func (s *Store) ListRoundResults(ctx context.Context, gameID string) ([]RoundResult, error) {
	if s == nil || s.pool == nil {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT game_id, round, seat, player_id, name, score, total_score, called_kaboo, leading
		FROM round_results WHERE game_id = $1 ORDER BY round, seat`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RoundResult
	for rows.Next() {
		var r RoundResult
		if err := rows.Scan(&r.GameID, &r.Round, &r.Seat, &r.PlayerID, &r.Name, &r.Score, &r.TotalScore, &r.CalledKaboo, &r.Leading); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveRound records every result of a revealed round in one transaction.
func (s *Store) SaveRound(ctx context.Context, results []RoundResult) error {
	if s == nil || s.pool == nil || len(results) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	batch := &pgx.Batch{}
	for _, r := range results {
		batch.Queue(`
			INSERT INTO round_results (game_id, round, seat, player_id, name, score, total_score, called_kaboo, leading)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (game_id, round, seat) DO NOTHING`,
			r.GameID, r.Round, r.Seat, r.PlayerID, r.Name, r.Score, r.TotalScore, r.CalledKaboo, r.Leading)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
