// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new          start today's board (creates or reuses session)
//   - POST /daily/reveal       reveal a cell on today's board
//   - GET  /daily/leaderboard  fastest clears for today (or ?date=YYYY-MM-DD)
//
// Everyone gets the same generated board for a UTC date (seed from
// daily.Seed). Each player has one attempt per day: a win is persisted and
// blocks a new session; a loss locks the in-memory session. Sessions only
// live for their date and are dropped once the UTC day rolls over.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/zenikatas/minesweeper/apps/go-server/internal/daily"
	"github.com/zenikatas/minesweeper/apps/go-server/internal/game"
	"github.com/zenikatas/minesweeper/apps/go-server/internal/layouts"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	dims     layouts.Dimensions
	sessions map[string]*dailySession // active sessions keyed by userID|date
	current  string                   // date the sessions map holds
	mu       sync.Mutex               // guards sessions and current
}

// dailySession is one player's attempt at one day's board.
type dailySession struct {
	UserID string
	Date   string
	Seed   int64
	Game   *game.Game
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:   s,
		store: daily.NewStore(s.db),
		salt:  getEnv("DAILY_SALT", "local_dev_salt"),
		dims: layouts.Dimensions{
			Rows:  envInt("DAILY_ROWS", 16),
			Cols:  envInt("DAILY_COLS", 16),
			Mines: envInt("DAILY_MINES", 40),
		},
		sessions: make(map[string]*dailySession),
	}
	s.daily = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/reveal", dd.handleReveal)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// today returns today's date key and board seed.
func (d *dailyServer) today() (date string, seed int64) {
	now := time.Now().UTC()
	return daily.DateKey(now), daily.Seed(now, d.salt)
}

// userIDWithAnon returns the authenticated user ID if logged in,
// otherwise ensures an anonymous ID via Server.ensureAnonID.
func (d *dailyServer) userIDWithAnon(w http.ResponseWriter, r *http.Request) string {
	if me := userFrom(r); me != nil {
		return me.ID
	}
	return d.srv.ensureAnonID(w, r)
}

// -----------------------------------------------------------------------------
// /daily/new

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	GameID string     `json:"gameId"`
	Date   string     `json:"date"`
	Played bool       `json:"played"`
	View   *game.View `json:"view,omitempty"`
}

// evictStale drops every session that does not belong to date.
// Callers hold d.mu.
func (d *dailyServer) evictStale(date string) {
	if d.current == date {
		return
	}
	for k, sess := range d.sessions {
		if sess.Date != date {
			delete(d.sessions, k)
		}
	}
	d.current = date
}

// handleNew creates or reuses a daily session for the current date.
// A player who already has a result for today gets Played=true and no
// board; anyone else gets their (possibly new) in-memory session.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := d.userIDWithAnon(w, r)
	date, seed := d.today()

	if played, err := d.store.AlreadyPlayed(r.Context(), uid, date); err != nil {
		log.Warn().Err(err).Str("user", uid).Msg("daily already played")
	} else if played {
		_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Played: true})
		return
	}

	key := uid + "|" + date
	d.mu.Lock()
	d.evictStale(date)
	sess, ok := d.sessions[key]
	if !ok {
		layout, err := layouts.Generate(d.dims.Rows, d.dims.Cols, d.dims.Mines, seed)
		if err != nil {
			d.mu.Unlock()
			log.Error().Err(err).Interface("dims", d.dims).Msg("daily layout")
			http.Error(w, `{"error":"daily_misconfigured"}`, http.StatusInternalServerError)
			return
		}
		g, err := game.New(layout)
		if err != nil {
			d.mu.Unlock()
			http.Error(w, `{"error":"daily_misconfigured"}`, http.StatusInternalServerError)
			return
		}
		sess = &dailySession{UserID: uid, Date: date, Seed: seed, Game: g}
		d.sessions[key] = sess
	}
	d.mu.Unlock()

	sess.Game.Lock()
	view := sess.Game.View()
	sess.Game.Unlock()
	_ = json.NewEncoder(w).Encode(dailyNewRes{GameID: sess.Game.ID, Date: date, View: &view})
}

// -----------------------------------------------------------------------------
// /daily/reveal

// handleReveal applies one move to today's session; persists the result on a win.
func (d *dailyServer) handleReveal(w http.ResponseWriter, r *http.Request) {
	uid := d.userIDWithAnon(w, r)

	var req revealReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.GameID == "" || req.Row == nil || req.Col == nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}

	date, _ := d.today()
	d.mu.Lock()
	sess, ok := d.sessions[uid+"|"+date]
	d.mu.Unlock()
	if !ok || sess.Game.ID != req.GameID {
		http.Error(w, `{"error":"no_session"}`, http.StatusConflict)
		return
	}

	g := sess.Game
	g.Lock()
	state, err := g.Reveal(*req.Row, *req.Col)
	view := g.View()
	reveals, elapsed := g.Reveals, g.Elapsed()
	g.Unlock()
	if err != nil {
		writeMoveError(w, err)
		return
	}

	if state == game.StateWon {
		if err := d.store.InsertResult(r.Context(), daily.Result{
			UserID:    uid,
			Date:      sess.Date,
			Seed:      sess.Seed,
			Reveals:   reveals,
			ElapsedMs: int(elapsed.Milliseconds()),
		}); err != nil {
			log.Warn().Err(err).Str("user", uid).Msg("insert daily result")
		}
	}
	_ = json.NewEncoder(w).Encode(view)
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date, _ = d.today()
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		log.Error().Err(err).Msg("daily leaderboard")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}

// envInt reads an integer env var, falling back to def when unset or invalid.
func envInt(k string, def int) int {
	if n, err := strconv.Atoi(getEnv(k, "")); err == nil {
		return n
	}
	return def
}
