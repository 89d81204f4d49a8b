// internal/httpserver/server.go
//
// HTTP server wiring for the minesweeper backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/debug/layouts".
//   - Game endpoints (optional auth): POST /game/new, POST /game/reveal, GET /game/{id}.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: see auth.go.
//   - Database persistence for game history and user stats.
//
// Notes:
//   - Boards live in the session store; SQLite only keeps history rows.
//   - Every handler that touches a board holds the game's lock for the whole
//     move, so one board never sees two concurrent moves.

package httpserver

import (
	"crypto/rand"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/zenikatas/minesweeper/apps/go-server/internal/game"
	"github.com/zenikatas/minesweeper/apps/go-server/internal/layouts"
	"github.com/zenikatas/minesweeper/apps/go-server/internal/store"
)

// Server bundles router, in-memory game store, and DB handle.
type Server struct {
	r     *chi.Mux
	store store.Store
	db    *sql.DB
	auth  authConfig
	daily *dailyServer
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, db *sql.DB) *Server {
	s := &Server{r: chi.NewRouter(), store: st, db: db, auth: authConfigFromEnv()}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog(log.Logger)...)        // zerolog request logging
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(limitBody)                       // cap request bodies
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(getEnv("CLIENT_ORIGIN", "http://localhost:5173")))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"minesweeper-go","endpoints":["/health","POST /game/new","POST /game/reveal","GET /game/{id}","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/layouts", func(w http.ResponseWriter, r *http.Request) {
		n, mines := layouts.Stats()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"presets":  n,
			"mines":    mines,
			"names":    layouts.Names(),
			"sessions": s.store.Len(),
		})
	})

	// Game endpoints, optional auth (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth)
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/reveal", s.handleReveal)
		r.Get("/game/{id}", s.handleGetGame)
	})

	// Daily Challenge, optional auth (guests can play; result persisted on win)
	s.mountDaily(s.r.With(s.withOptionalAuth))

	// Auth + profile/stats (require auth)
	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ------------------------------ GAME ---------------------------------------

// newGameReq is the payload for POST /game/new.
// The first populated source wins: layout, preset, difficulty, explicit
// dimensions. An empty body picks a random preset.
type newGameReq struct {
	Layout     []string `json:"layout"`
	Preset     string   `json:"preset"`
	Difficulty string   `json:"difficulty"`
	Rows       int      `json:"rows"`
	Cols       int      `json:"cols"`
	Mines      int      `json:"mines"`
	Seed       *int64   `json:"seed"`
}

type newGameRes struct {
	GameID string    `json:"gameId"`
	Source string    `json:"source"`
	View   game.View `json:"view"`
}

// layoutFor resolves a request to a layout and a label for logs.
func layoutFor(req newGameReq) ([][]bool, string, error) {
	seed := func() int64 {
		if req.Seed != nil {
			return *req.Seed
		}
		return randomSeed()
	}

	switch {
	case len(req.Layout) > 0:
		l, err := layouts.Parse(req.Layout)
		return l, "custom", err
	case req.Preset != "":
		p, ok := layouts.Lookup(req.Preset)
		if !ok {
			return nil, "", errUnknownPreset
		}
		return p.Layout, "preset:" + p.Name, nil
	case req.Difficulty != "":
		d, ok := layouts.Difficulty(req.Difficulty)
		if !ok {
			return nil, "", errUnknownDifficulty
		}
		l, err := layouts.Generate(d.Rows, d.Cols, d.Mines, seed())
		return l, "difficulty:" + req.Difficulty, err
	case req.Rows > 0 || req.Cols > 0:
		l, err := layouts.Generate(req.Rows, req.Cols, req.Mines, seed())
		return l, "generated", err
	default:
		p, err := layouts.Random()
		if err != nil {
			return nil, "", err
		}
		return p.Layout, "preset:" + p.Name, nil
	}
}

var (
	errUnknownPreset     = errors.New("unknown_preset")
	errUnknownDifficulty = errors.New("unknown_difficulty")
)

// handleNewGame creates a new in-memory game and persists a DB "owner" row
// (either user_id or anonymous_id) for history/stats.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDecodeError(w, err)
			return
		}
	}

	layout, source, err := layoutFor(req)
	switch {
	case errors.Is(err, game.ErrInvalidLayout):
		http.Error(w, `{"error":"invalid_layout"}`, http.StatusBadRequest)
		return
	case errors.Is(err, errUnknownPreset), errors.Is(err, errUnknownDifficulty):
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	case err != nil:
		log.Error().Err(err).Msg("resolve layout")
		http.Error(w, `{"error":"layout_failed"}`, http.StatusInternalServerError)
		return
	}

	g, err := game.New(layout)
	if err != nil {
		http.Error(w, `{"error":"invalid_layout"}`, http.StatusBadRequest)
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	b := g.Board
	now := g.StartedAt.Format(time.RFC3339)
	if me := userFrom(r); me != nil {
		_, err = s.db.ExecContext(r.Context(), `INSERT INTO games (id, user_id, board_rows, board_cols, mines, started_at, status)
		                     VALUES (?,?,?,?,?,?,?)`, g.ID, me.ID, b.RowsLength(), b.ColumnsLength(), b.NumberOfMines(), now, game.StatePlaying)
	} else {
		anon := s.ensureAnonID(w, r)
		_, err = s.db.ExecContext(r.Context(), `INSERT INTO games (id, anonymous_id, board_rows, board_cols, mines, started_at, status)
		                     VALUES (?,?,?,?,?,?,?)`, g.ID, anon, b.RowsLength(), b.ColumnsLength(), b.NumberOfMines(), now, game.StatePlaying)
	}
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert game row")
	}

	log.Debug().Str("gameId", g.ID).Str("source", source).
		Int("rows", b.RowsLength()).Int("cols", b.ColumnsLength()).Int("mines", b.NumberOfMines()).
		Msg("game created")

	g.Lock()
	view := g.View()
	g.Unlock()
	_ = json.NewEncoder(w).Encode(newGameRes{GameID: g.ID, Source: source, View: view})
}

// revealReq is the payload for POST /game/reveal and POST /daily/reveal.
type revealReq struct {
	GameID string `json:"gameId"`
	Row    *int   `json:"row"`
	Col    *int   `json:"col"`
}

// handleReveal applies one move, persists progress, and (if finished)
// updates user stats in a best-effort transaction.
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	var req revealReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.Row == nil || req.Col == nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	g, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}

	g.Lock()
	state, err := g.Reveal(*req.Row, *req.Col)
	view := g.View()
	elapsed := g.Elapsed()
	g.Unlock()
	if err != nil {
		writeMoveError(w, err)
		return
	}

	s.recordMove(w, r, g.ID, state, elapsed)
	_ = json.NewEncoder(w).Encode(view)
}

// handleGetGame returns the current view of a game.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	g.Lock()
	view := g.View()
	g.Unlock()
	_ = json.NewEncoder(w).Encode(view)
}

// writeDecodeError answers a body that failed to decode.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		http.Error(w, `{"error":"body_too_large"}`, http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
}

// writeMoveError maps game errors to HTTP responses.
func writeMoveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrOutOfBounds):
		http.Error(w, `{"error":"out_of_bounds"}`, http.StatusBadRequest)
	case errors.Is(err, game.ErrGameFinished):
		http.Error(w, `{"error":"game_finished"}`, http.StatusConflict)
	default:
		http.Error(w, `{"error":"move_failed"}`, http.StatusInternalServerError)
	}
}

// recordMove bumps the reveal counter and, once decided, closes the game row
// with its clear time and updates the owner's streak. Failures are logged,
// never surfaced.
func (s *Server) recordMove(w http.ResponseWriter, r *http.Request, gameID string, state game.State, elapsed time.Duration) {
	me := userFrom(r)
	ownerClause := `anonymous_id=?`
	ownerArg := any(s.ensureAnonID(w, r))
	if me != nil {
		ownerClause = `user_id=?`
		ownerArg = any(me.ID)
	}

	tx, err := s.db.BeginTx(r.Context(), nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin move tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`UPDATE games SET reveals = reveals + 1 WHERE id=? AND `+ownerClause, gameID, ownerArg); err != nil {
		log.Warn().Err(err).Msg("update reveals")
	}

	if state != game.StatePlaying {
		if _, err := tx.Exec(`UPDATE games SET status=?, finished_at=?, elapsed_ms=? WHERE id=? AND `+ownerClause,
			state, time.Now().UTC().Format(time.RFC3339), elapsed.Milliseconds(), gameID, ownerArg); err != nil {
			log.Warn().Err(err).Msg("finish game")
		}
		if me != nil {
			if err := updateStreak(tx, me.ID, state); err != nil {
				log.Warn().Err(err).Str("user", me.ID).Msg("update streak")
			}
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit move tx")
	}
}

// ------------------------------- small util --------------------------------

// randomSeed draws a non-negative generator seed from crypto/rand.
func randomSeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.BigEndian.Uint64(b[:]) &^ (1 << 63))
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
