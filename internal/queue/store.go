package queue

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchmaker/internal/model"
)

var _ WaitingPool = (*store)(nil)

// store keeps the pool in SQL tables: queue_entries holds the ordering index
// and queued_players the expiring player records.
type store struct {
	db   *sql.DB
	opts Options
}

// NewStore creates a WaitingPool backed by a SQLite or libsql database.
func NewStore(db *sql.DB, opts Options) WaitingPool {
	return &store{db: db, opts: opts.withDefaults()}
}

func (s *store) Enqueue(ctx context.Context, player model.Player) error {
	payload, err := model.EncodePlayer(player)
	if err != nil {
		return err
	}
	score := s.opts.score(player)
	expiresAt := s.opts.Now().Add(s.opts.RecordTTL).UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin enqueue: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO queued_players (player_id, payload, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET payload = excluded.payload, expires_at = excluded.expires_at;
	`, player.ID, payload, expiresAt); err != nil {
		return fmt.Errorf("failed to store player %s: %w", player.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO queue_entries (player_id, score) VALUES (?, ?)
		ON CONFLICT(player_id) DO UPDATE SET score = excluded.score;
	`, player.ID, score); err != nil {
		return fmt.Errorf("failed to index player %s: %w", player.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit enqueue of %s: %w", player.ID, err)
	}
	log.Debug("Player enqueued", "player", player.ID, "score", score)
	return nil
}

func (s *store) Dequeue(ctx context.Context, playerID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin dequeue: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM queue_entries WHERE player_id = ?", playerID)
	if err != nil {
		return false, fmt.Errorf("failed to remove player %s: %w", playerID, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM queued_players WHERE player_id = ?", playerID); err != nil {
		return false, fmt.Errorf("failed to remove record of %s: %w", playerID, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit dequeue of %s: %w", playerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *store) Snapshot(ctx context.Context) iter.Seq2[model.Player, error] {
	guard := &once{}
	return func(yield func(model.Player, error) bool) {
		if !guard.take() {
			yield(model.Player{}, ErrSnapshotConsumed)
			return
		}

		ids, err := s.orderedIDs(ctx)
		if err != nil {
			yield(model.Player{}, err)
			return
		}

		for start := 0; start < len(ids); start += snapshotBatch {
			batch := ids[start:min(start+snapshotBatch, len(ids))]
			records, err := s.loadRecords(ctx, batch)
			if err != nil {
				yield(model.Player{}, err)
				return
			}
			for _, id := range batch {
				player, ok := records[id]
				if !ok {
					s.prune(ctx, id)
					continue
				}
				if !yield(player, nil) {
					return
				}
			}
		}
	}
}

// orderedIDs captures the current pool order. The rows are fully drained
// before any other statement runs on the connection.
func (s *store) orderedIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT player_id FROM queue_entries ORDER BY "+s.orderClause())
	if err != nil {
		return nil, fmt.Errorf("failed to read queue order: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// loadRecords returns the unexpired, decodable records among ids.
func (s *store) loadRecords(ctx context.Context, ids []string) (map[string]model.Player, error) {
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, s.opts.Now().UnixMilli())

	query := fmt.Sprintf(
		"SELECT player_id, payload FROM queued_players WHERE player_id IN (%s) AND expires_at > ?",
		placeholders(len(ids)),
	)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load player records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]model.Player, len(ids))
	for rows.Next() {
		var (
			id      string
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		player, err := model.DecodePlayer(payload)
		if err != nil {
			log.Error("Failed to decode queued player", "player", id, "error", err)
			continue
		}
		records[id] = player
	}
	return records, rows.Err()
}

func (s *store) prune(ctx context.Context, playerID string) {
	log.Warn("Pruned stale queue entry", "player", playerID)
	if _, err := s.Dequeue(ctx, playerID); err != nil {
		log.Error("Failed to prune stale queue entry", "player", playerID, "error", err)
	}
}

func (s *store) Size(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM queue_entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return n, nil
}

func (s *store) Contains(ctx context.Context, playerID string) (bool, error) {
	_, ok, err := s.scoreOf(ctx, playerID)
	return ok, err
}

func (s *store) PositionOf(ctx context.Context, playerID string) (int64, bool, error) {
	score, ok, err := s.scoreOf(ctx, playerID)
	if err != nil || !ok {
		return 0, false, err
	}

	ahead := "score < ? OR (score = ? AND player_id < ?)"
	if s.opts.descending() {
		ahead = "score > ? OR (score = ? AND player_id > ?)"
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM queue_entries WHERE "+ahead, score, score, playerID).Scan(&n); err != nil {
		return 0, false, fmt.Errorf("failed to rank player %s: %w", playerID, err)
	}
	return n + 1, true, nil
}

func (s *store) scoreOf(ctx context.Context, playerID string) (float64, bool, error) {
	var score float64
	err := s.db.QueryRowContext(ctx, "SELECT score FROM queue_entries WHERE player_id = ?", playerID).Scan(&score)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up player %s: %w", playerID, err)
	}
	return score, true, nil
}

func (s *store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, table := range []string{"queue_entries", "queued_players"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Cleared matchmaking queue")
	return nil
}

func (s *store) orderClause() string {
	if s.opts.descending() {
		return "score DESC, player_id DESC"
	}
	return "score ASC, player_id ASC"
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
