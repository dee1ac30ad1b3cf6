package httpserver

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	errEmailTaken    = errors.New("email already registered")
	errUsernameTaken = errors.New("username taken")
)

// userRow matches the users table shape.
type userRow struct {
	ID           string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// UserStore owns the users and profiles tables.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore { return &UserStore{db: db} }

func (s *UserStore) byEmail(ctx context.Context, email string) (*userRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, is_admin, created_at
		FROM users WHERE lower(email)=lower(?)`, email)
	return scanUser(row)
}

func (s *UserStore) byID(ctx context.Context, id string) (*userRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, is_admin, created_at
		FROM users WHERE id=?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*userRow, error) {
	var u userRow
	var created string
	var isAdmin int
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &isAdmin, &created); err != nil {
		return nil, err
	}
	u.IsAdmin = isAdmin != 0
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

// create validates input, checks uniqueness, hashes the password, and inserts
// the user plus an optional profile row.
func (s *UserStore) create(ctx context.Context, email, password, username string, isAdmin bool) (*userRow, error) {
	if err := validateSignup(email, password, username); err != nil {
		return nil, err
	}
	var exists int
	_ = s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE lower(email)=lower(?)`, email).Scan(&exists)
	if exists == 1 {
		return nil, errEmailTaken
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &userRow{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(email),
		PasswordHash: string(h),
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	admin := 0
	if isAdmin {
		admin = 1
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, is_admin, created_at) VALUES (?,?,?,?,?)`,
		u.ID, u.Email, u.PasswordHash, admin, u.CreatedAt.Format(time.RFC3339)); err != nil {
		return nil, err
	}
	if username != "" {
		if err := s.setUsername(ctx, u.ID, username); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// Username returns the user's display name, or "" if none is set.
func (s *UserStore) Username(ctx context.Context, userID string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT username FROM profiles WHERE user_id=?`, userID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return name, err
}

// setUsername upserts the profile row, enforcing display-name uniqueness.
func (s *UserStore) setUsername(ctx context.Context, userID, username string) error {
	var owner string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id FROM profiles WHERE lower(username)=lower(?)`, username).Scan(&owner)
	if err == nil && owner != userID {
		return errUsernameTaken
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, username, updated_at) VALUES (?,?,?)
		ON CONFLICT(user_id) DO UPDATE SET username=excluded.username, updated_at=excluded.updated_at`,
		userID, username, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *UserStore) setPassword(ctx context.Context, userID, password string) error {
	if len(password) < 8 || len(password) > 100 {
		return errors.New("password must be 8-100 chars")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE users SET password_hash=? WHERE id=?`, string(h), userID)
	return err
}

// validateSignup enforces basic email/password/username rules.
func validateSignup(email, password, username string) error {
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return errors.New("invalid email address")
	}
	if len(password) < 8 || len(password) > 100 {
		return errors.New("password must be 8-100 chars")
	}
	if username != "" {
		if err := validateUsername(username); err != nil {
			return err
		}
	}
	return nil
}

func validateUsername(u string) error {
	if len(u) < 3 || len(u) > 24 {
		return errors.New("username must be 3-24 chars")
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("username: letters, numbers, underscore only")
		}
	}
	return nil
}

// checkPassword is a bcrypt verifier.
func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// ------------------------------- handlers ----------------------------------

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type passwordReq struct {
	Current string `json:"current"`
	New     string `json:"new"`
}

// handleSignup creates a user, signs a JWT, and sets the auth cookie.
// Addresses on the admin allowlist become admins at creation.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body signupReq
	if !decode(w, r, &body) {
		return
	}
	isAdmin := false
	for _, a := range s.cfg.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(body.Email)) {
			isAdmin = true
		}
	}
	u, err := s.d.Users.create(r.Context(), body.Email, body.Password, strings.TrimSpace(body.Username), isAdmin)
	if err != nil {
		if errors.Is(err, errEmailTaken) || errors.Is(err, errUsernameTaken) {
			writeErr(w, http.StatusConflict, err.Error())
			return
		}
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	tok, exp, err := s.signJWT(u.ID, u.Email)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setAuthCookie(w, tok, exp)
	writeJSON(w, map[string]any{"id": u.ID, "email": u.Email, "createdAt": u.CreatedAt, "token": tok})
}

// handleLogin authenticates and sets the auth cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if !decode(w, r, &body) {
		return
	}
	u, err := s.d.Users.byEmail(r.Context(), strings.TrimSpace(body.Email))
	if err != nil || !checkPassword(u.PasswordHash, body.Password) {
		writeErr(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	tok, exp, err := s.signJWT(u.ID, u.Email)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setAuthCookie(w, tok, exp)
	writeJSON(w, map[string]any{"id": u.ID, "email": u.Email, "token": tok})
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	username, err := s.d.Users.Username(r.Context(), me.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, map[string]any{
		"id":       me.ID,
		"email":    me.Email,
		"username": username,
		"isAdmin":  me.IsAdmin,
	})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	var body passwordReq
	if !decode(w, r, &body) {
		return
	}
	u, err := s.d.Users.byID(r.Context(), me.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	if !checkPassword(u.PasswordHash, body.Current) {
		writeErr(w, http.StatusUnauthorized, "current password is wrong")
		return
	}
	if err := s.d.Users.setPassword(r.Context(), me.ID, body.New); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, map[string]bool{"ok": true})
}

// ------------------------------ JWT & cookies ------------------------------

// signJWT creates an HS256 JWT with id/email and the configured expiry.
func (s *Server) signJWT(id, email string) (string, time.Time, error) {
	exp := time.Now().Add(time.Duration(s.cfg.JWTExpiresDays) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    id,
		"email": email,
		"exp":   exp.Unix(),
		"iat":   time.Now().Unix(),
	})
	ss, err := t.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.cfg.SecureCookies {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: sameSite,
		Expires:  exp,
	})
}

func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	sameSite := http.SameSiteLaxMode
	if s.cfg.SecureCookies {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: sameSite,
		MaxAge:   -1,
	})
}

// bearerOrCookie extracts a token from the Authorization header or cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// ---------------------------- auth middleware ------------------------------

// authUser is placed into request context by the auth middleware.
type authUser struct {
	ID      string
	Email   string
	IsAdmin bool
}

type ctxUserKey struct{}

// requireAuth enforces a valid JWT and injects the user into request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := s.bearerOrCookie(r)
		if tokenStr == "" {
			writeErr(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(s.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			writeErr(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		id, _ := claims["id"].(string)
		if id == "" {
			writeErr(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		// Ensure the user still exists; admin flag is read fresh.
		u, err := s.d.Users.byID(r.Context(), id)
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserKey{}, &authUser{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates the console; it must run after requireAuth.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		me := currentUser(r)
		if me == nil || !me.IsAdmin {
			writeErr(w, http.StatusForbidden, "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request) *authUser {
	u, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return u
}
