// internal/httpserver/stats.go
//
// Per-player history and records.
//
// Finished boards live in the games table with their size, mine count,
// reveal count and clear time. Totals and per-board records are aggregated
// from there; only the win streak is kept on the users row.

package httpserver

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/zenikatas/minesweeper/apps/go-server/internal/game"
	"github.com/zenikatas/minesweeper/apps/go-server/internal/layouts"
)

// boardRecord aggregates finished games of one board configuration.
type boardRecord struct {
	Label       string `json:"label"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Mines       int    `json:"mines"`
	Played      int    `json:"played"`
	Wins        int    `json:"wins"`
	BestMs      *int64 `json:"bestMs,omitempty"`
	BestReveals *int64 `json:"bestReveals,omitempty"`
}

type statsRes struct {
	ID          string        `json:"id"`
	GamesPlayed int           `json:"gamesPlayed"`
	Wins        int           `json:"wins"`
	Streak      int           `json:"streak"`
	BestStreak  int           `json:"bestStreak"`
	Boards      []boardRecord `json:"boards"`
}

// boardLabel names a configuration after its difficulty when it has one.
func boardLabel(rows, cols, mines int) string {
	if name, ok := layouts.DifficultyName(layouts.Dimensions{Rows: rows, Cols: cols, Mines: mines}); ok {
		return name
	}
	return fmt.Sprintf("%dx%d/%d", rows, cols, mines)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	me := userFrom(r)
	res := statsRes{ID: me.ID, Boards: []boardRecord{}}
	if err := s.db.QueryRowContext(r.Context(), `SELECT streak, best_streak FROM users WHERE id=?`, me.ID).
		Scan(&res.Streak, &res.BestStreak); err != nil {
		log.Error().Err(err).Str("user", me.ID).Msg("load streak")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}

	rows, err := s.db.QueryContext(r.Context(), `
		SELECT board_rows, board_cols, mines, COUNT(*), SUM(status = 'won'),
		       MIN(CASE WHEN status = 'won' THEN elapsed_ms END),
		       MIN(CASE WHEN status = 'won' THEN reveals END)
		  FROM games
		 WHERE user_id = ? AND status != 'playing'
		 GROUP BY board_rows, board_cols, mines
		 ORDER BY COUNT(*) DESC, board_rows * board_cols DESC`, me.ID)
	if err != nil {
		log.Error().Err(err).Str("user", me.ID).Msg("load board records")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var rec boardRecord
		var bestMs, bestReveals sql.NullInt64
		if err := rows.Scan(&rec.Rows, &rec.Cols, &rec.Mines, &rec.Played, &rec.Wins, &bestMs, &bestReveals); err != nil {
			log.Warn().Err(err).Msg("scan board record")
			continue
		}
		if bestMs.Valid {
			rec.BestMs = &bestMs.Int64
		}
		if bestReveals.Valid {
			rec.BestReveals = &bestReveals.Int64
		}
		rec.Label = boardLabel(rec.Rows, rec.Cols, rec.Mines)
		res.GamesPlayed += rec.Played
		res.Wins += rec.Wins
		res.Boards = append(res.Boards, rec)
	}
	_ = json.NewEncoder(w).Encode(res)
}

// gameRow is one entry of GET /games/mine.
type gameRow struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Rows       int    `json:"rows"`
	Cols       int    `json:"cols"`
	Mines      int    `json:"mines"`
	Status     string `json:"status"`
	Reveals    int    `json:"reveals"`
	ElapsedMs  *int64 `json:"elapsedMs,omitempty"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.QueryContext(r.Context(), `
		SELECT id, board_rows, board_cols, mines, status, reveals, elapsed_ms, started_at, COALESCE(finished_at, '')
		  FROM games WHERE user_id = ? ORDER BY started_at DESC LIMIT 50`, userFrom(r).ID)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	out := []gameRow{}
	for rows.Next() {
		var gr gameRow
		var elapsed sql.NullInt64
		if err := rows.Scan(&gr.ID, &gr.Rows, &gr.Cols, &gr.Mines, &gr.Status, &gr.Reveals, &elapsed, &gr.StartedAt, &gr.FinishedAt); err != nil {
			log.Warn().Err(err).Msg("scan game row")
			continue
		}
		if elapsed.Valid {
			gr.ElapsedMs = &elapsed.Int64
		}
		gr.Label = boardLabel(gr.Rows, gr.Cols, gr.Mines)
		out = append(out, gr)
	}
	_ = json.NewEncoder(w).Encode(out)
}

// claimAnonGames moves a guest's boards to userID and returns how many moved.
func (s *Server) claimAnonGames(r *http.Request, anonID, userID string) int64 {
	if anonID == "" || userID == "" {
		return 0
	}
	res, err := s.db.ExecContext(r.Context(), `UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	if err != nil {
		log.Warn().Err(err).Msg("claim anon games")
		return 0
	}
	n, _ := res.RowsAffected()
	return n
}

// updateStreak extends or resets the win streak for a finished board.
// SQLite evaluates every SET expression against the old row.
func updateStreak(tx *sql.Tx, userID string, state game.State) error {
	won := 0
	if state == game.StateWon {
		won = 1
	}
	_, err := tx.Exec(`
		UPDATE users
		   SET streak      = CASE WHEN ? THEN streak + 1 ELSE 0 END,
		       best_streak = MAX(best_streak, CASE WHEN ? THEN streak + 1 ELSE 0 END)
		 WHERE id = ?`, won, won, userID)
	return err
}
