// internal/httpserver/auth.go
//
// Player accounts and sessions.
// Routes:
//   - POST /auth/signup, /auth/login, /auth/logout
//   - GET  /auth/me (requires auth)
//
// A session is an HS256 JWT carried in a cookie or a Bearer header. Guests
// play under an anonymous cookie; their boards move to the account when
// they sign up or log in (see stats.go).

package httpserver

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer    = "minesweeper"
	anonCookieName = "minesweeper_anon"
	anonCookieTTL  = 180 * 24 * time.Hour
)

var (
	errUsernameTaken = errors.New("username taken")
	errNoToken       = errors.New("no token")
)

// authConfig is read once from the environment when the server is built.
type authConfig struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	sameSite   http.SameSite
}

func authConfigFromEnv() authConfig {
	c := authConfig{
		secret:     []byte(getEnv("JWT_SECRET", "dev_secret_change_me")),
		ttl:        time.Duration(envInt("JWT_EXPIRES_DAYS", 14)) * 24 * time.Hour,
		cookieName: getEnv("COOKIE_NAME", "minesweeper_token"),
		sameSite:   http.SameSiteLaxMode,
	}
	if getEnv("APP_ENV", "development") == "production" {
		c.secure, c.sameSite = true, http.SameSiteNoneMode
	}
	return c
}

// cookie builds an HttpOnly cookie. A negative ttl deletes it.
func (c authConfig) cookie(name, value string, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	}
	if ttl < 0 {
		ck.MaxAge = -1
	} else {
		ck.Expires = time.Now().Add(ttl)
	}
	return ck
}

// playerClaims is the JWT payload. Subject holds the user ID.
type playerClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (c authConfig) sign(u *authUser) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, playerClaims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}).SignedString(c.secret)
}

func (c authConfig) verify(token string) (string, error) {
	var claims playerClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// tokenFrom prefers the Authorization header over the session cookie.
func (c authConfig) tokenFrom(r *http.Request) string {
	if a := r.Header.Get("Authorization"); len(a) > 7 && strings.EqualFold(a[:7], "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if ck, err := r.Cookie(c.cookieName); err == nil {
		return ck.Value
	}
	return ""
}

// authenticate resolves the request's token to a user that still exists.
func (s *Server) authenticate(r *http.Request) (*authUser, error) {
	tok := s.auth.tokenFrom(r)
	if tok == "" {
		return nil, errNoToken
	}
	id, err := s.auth.verify(tok)
	if err != nil {
		return nil, err
	}
	u, err := s.lookupUser(r, "id", id)
	if err != nil {
		return nil, err
	}
	return &authUser{ID: u.ID, Username: u.Username}, nil
}

// credentials is the signup/login payload.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authUser is what handlers see of the logged-in player.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// mountAuthRoutes registers /auth/* and the player-only history routes.
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, s.auth.cookie(s.auth.cookieName, "", -1))
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	})

	s.r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(userFrom(r))
		})
		r.Get("/stats/me", s.handleStats)
		r.Get("/games/mine", s.handleMyGames)
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	u, err := s.createUser(r, strings.TrimSpace(body.Username), body.Password)
	switch {
	case errors.Is(err, errUsernameTaken):
		http.Error(w, `{"error":"Username taken"}`, http.StatusConflict)
		return
	case err != nil:
		msg, _ := json.Marshal(map[string]string{"error": err.Error()})
		http.Error(w, string(msg), http.StatusBadRequest)
		return
	}
	s.startSession(w, r, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	u, err := s.lookupUser(r, "username", strings.TrimSpace(body.Username))
	if err != nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(body.Password)) != nil {
		http.Error(w, `{"error":"Invalid username or password"}`, http.StatusUnauthorized)
		return
	}
	s.startSession(w, r, u)
}

// startSession issues the token cookie, moves guest boards to the account,
// and replies with the token for clients that prefer the header.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, u *userRow) {
	me := &authUser{ID: u.ID, Username: u.Username}
	tok, err := s.auth.sign(me)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, s.auth.cookie(s.auth.cookieName, tok, s.auth.ttl))
	claimed := s.claimAnonGames(r, s.ensureAnonID(w, r), u.ID)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":        u.ID,
		"username":  u.Username,
		"createdAt": u.CreatedAt,
		"claimed":   claimed,
		"token":     tok,
	})
}

// ensureAnonID returns the guest cookie, minting one if absent.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := genID()
	http.SetCookie(w, s.auth.cookie(anonCookieName, id, anonCookieTTL))
	return id
}

// userRow is one row of the users table.
type userRow struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// lookupUser loads a user by id or by (case-insensitive) username.
func (s *Server) lookupUser(r *http.Request, by, value string) (*userRow, error) {
	where := `id = ?`
	if by == "username" {
		where = `username = ? COLLATE NOCASE`
	}
	var u userRow
	var created string
	err := s.db.QueryRowContext(r.Context(),
		`SELECT id, username, password_hash, created_at FROM users WHERE `+where, value).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &created)
	if err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

// createUser validates and stores a new account. The UNIQUE NOCASE
// constraint on username decides races between concurrent signups.
func (s *Server) createUser(r *http.Request, username, pw string) (*userRow, error) {
	if err := validateSignup(username, pw); err != nil {
		return nil, err
	}
	if _, err := s.lookupUser(r, "username", username); err == nil {
		return nil, errUsernameTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &userRow{ID: genID(), Username: username, PasswordHash: string(h), CreatedAt: time.Now().UTC().Truncate(time.Second)}
	if _, err := s.db.ExecContext(r.Context(), `INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.Format(time.RFC3339)); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, errUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

func validateSignup(u, p string) error {
	if n := len(u); n < 3 || n > 24 {
		return fmt.Errorf("username must be 3-24 chars, got %d", n)
	}
	if strings.IndexFunc(u, func(r rune) bool {
		return r != '_' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9')
	}) >= 0 {
		return errors.New("username: letters, numbers, underscore only")
	}
	if n := len(p); n < 8 || n > 72 {
		return errors.New("password must be 8-72 bytes")
	}
	return nil
}

// genID returns 22 URL-safe characters of crypto randomness.
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
