package daily

import (
	"context"
	"database/sql"
)

// Result is one player's finished game for a period.
type Result struct {
	PlayerID  string `json:"playerId"`
	Period    string `json:"period"`
	MemberID  string `json:"memberId"`
	Guesses   int    `json:"guesses"`
	Solved    bool   `json:"solved"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Store records results in the daily_results table.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether the player has a result for the period.
func (s *Store) AlreadyPlayed(ctx context.Context, playerID, period string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE player_id=? AND period=?",
		playerID, period,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult stores r. A second result for the same player and period is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(player_id, period, member_id, guesses, solved, elapsed_ms)
		VALUES(?,?,?,?,?,?)`, r.PlayerID, r.Period, r.MemberID, r.Guesses, r.Solved, r.ElapsedMs,
	)
	return err
}

type LBRow struct {
	PlayerID  string `json:"playerId"`
	Guesses   int    `json:"guesses"`
	Solved    bool   `json:"solved"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Leaderboard lists a period's results: solved first, then fewest guesses,
// then fastest, then earliest.
func (s *Store) Leaderboard(ctx context.Context, period string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, guesses, solved, elapsed_ms
		FROM daily_results
		WHERE period=?
		ORDER BY solved DESC, guesses ASC, elapsed_ms ASC, created_at ASC, id ASC
		LIMIT ?`, period, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.PlayerID, &r.Guesses, &r.Solved, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
