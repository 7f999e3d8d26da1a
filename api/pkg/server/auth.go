package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// tokenTTL is how long a /login-issued bearer token remains valid.
const tokenTTL = 24 * time.Hour

var errAuthFailed = errors.New("authentication failed")

// adminAuth guards the HTTP surface with a single shared operator secret
// (no per-user accounts): a small struct with an isRequestAuthenticated
// check and a middleware method. A non-empty admin token also unlocks
// /login, which exchanges it for a short-lived JWT so subsequent calls
// don't have to keep sending the raw secret.
type adminAuth struct {
	adminToken string
	signingKey []byte
}

func newAdminAuth(adminToken string, signingKey []byte) *adminAuth {
	return &adminAuth{adminToken: adminToken, signingKey: signingKey}
}

func (a *adminAuth) enabled() bool {
	return a.adminToken != ""
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimPrefix(h, prefix)
}

func (a *adminAuth) isRequestAuthenticated(r *http.Request) bool {
	if !a.enabled() {
		return true
	}
	token := bearerToken(r)
	if token == "" {
		return false
	}
	if token == a.adminToken {
		return true
	}
	return a.validateSessionToken(token) == nil
}

func (a *adminAuth) validateSessionToken(token string) error {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errAuthFailed
		}
		return a.signingKey, nil
	})
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return errAuthFailed
	}
	return nil
}

func (a *adminAuth) issueSessionToken() (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   "operator",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.signingKey)
}

func (a *adminAuth) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.isRequestAuthenticated(r) {
			writeErrResponse(w, errAuthFailed, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loginRequest is the body of POST /login.
type loginRequest struct {
	AdminToken string `json:"admin_token"`
}

// loginResponse is the body of POST /login on success.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// loginHandler godoc
// @Summary     Exchange the shared operator secret for a session token
// @Description Validates admin_token and issues a short-lived bearer token
// @Router      /login [post]
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if !s.auth.enabled() {
		writeJSON(w, http.StatusOK, loginResponse{AccessToken: "", TokenType: "bearer"})
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrResponse(w, err, http.StatusBadRequest)
		return
	}
	if req.AdminToken == "" || req.AdminToken != s.auth.adminToken {
		writeErrResponse(w, errAuthFailed, http.StatusUnauthorized)
		return
	}

	token, err := s.auth.issueSessionToken()
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, TokenType: "bearer"})
}
