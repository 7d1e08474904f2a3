package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchmaker/internal/model"
)

var _ MatchStore = (*store)(nil)

type store struct {
	db        *sql.DB
	retention time.Duration
	now       func() time.Time
}

// NewStore creates a MatchStore backed by the match_assignments table.
func NewStore(db *sql.DB, retention time.Duration) MatchStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &store{db: db, retention: retention, now: time.Now}
}

func (s *store) Save(ctx context.Context, match model.Match) error {
	payload, err := model.EncodeMatch(match)
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(s.retention).UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin match save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO match_assignments (player_id, match_id, payload, expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			match_id = excluded.match_id,
			payload = excluded.payload,
			expires_at = excluded.expires_at;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare match save: %w", err)
	}
	defer stmt.Close()

	for _, p := range match.Players {
		if _, err := stmt.ExecContext(ctx, p.ID, match.ID, payload, expiresAt); err != nil {
			return fmt.Errorf("failed to store match %s for player %s: %w", match.ID, p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match %s: %w", match.ID, err)
	}
	log.Debug("Stored match", "match", match.ID, "players", len(match.Players))
	return nil
}

func (s *store) Lookup(ctx context.Context, playerID string) (model.Match, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM match_assignments WHERE player_id = ? AND expires_at > ?",
		playerID, s.now().UnixMilli(),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return model.Match{}, false, nil
	}
	if err != nil {
		return model.Match{}, false, fmt.Errorf("failed to look up match for %s: %w", playerID, err)
	}
	match, err := model.DecodeMatch(payload)
	if err != nil {
		return model.Match{}, false, err
	}
	return match, true, nil
}

func (s *store) Delete(ctx context.Context, match model.Match) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM match_assignments WHERE match_id = ?", match.ID); err != nil {
		return fmt.Errorf("failed to delete match %s: %w", match.ID, err)
	}
	return nil
}
