// Package auth holds the API bearer-token check and the anonymous visitor
// cookie that scopes a browser's trip log.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/trip-planner/internal/internaltypes"
)

func HashToken(token string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	return string(b), err
}

func CheckToken(hash, token string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token))
	return err == nil
}

// Guard verifies "Authorization: Bearer <token>" against a bcrypt hash. An
// empty hash disables the check.
type Guard struct {
	hash string

	mu sync.Mutex
	// last accepted token, so bcrypt runs once per distinct token
	last string
}

func NewGuard(hash string) *Guard { return &Guard{hash: strings.TrimSpace(hash)} }

func (g *Guard) Enabled() bool { return g != nil && g.hash != "" }

func (g *Guard) Check(r *http.Request) error {
	if !g.Enabled() {
		return nil
	}
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || token == "" {
		return internaltypes.ErrUnauthorized
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last != "" && secureEq(g.last, token) {
		return nil
	}
	if !CheckToken(g.hash, token) {
		return internaltypes.ErrUnauthorized
	}
	g.last = token
	return nil
}

const (
	cookieName = "tripplanner_visitor"
	visitorTTL = 30 * 24 * time.Hour
)

// Visitors issues and reads the signed, encrypted visitor id cookie.
type Visitors struct {
	sc *securecookie.SecureCookie
}

func NewVisitors(hashKey, blockKey []byte) *Visitors {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(visitorTTL.Seconds()))
	return &Visitors{sc: sc}
}

// Ensure returns the visitor id from r, issuing a new cookie on w when the
// request has none or it does not decode.
func (v *Visitors) Ensure(w http.ResponseWriter, r *http.Request) (string, error) {
	if id, ok := v.Get(r); ok {
		return id, nil
	}
	id := uuid.NewString()
	encoded, err := v.sc.Encode(cookieName, map[string]string{"vid": id})
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int(visitorTTL.Seconds()),
	})
	return id, nil
}

func (v *Visitors) Get(r *http.Request) (string, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return "", false
	}
	val := map[string]string{}
	if err := v.sc.Decode(cookieName, c.Value, &val); err != nil {
		return "", false
	}
	id := val["vid"]
	return id, id != ""
}

func secureEq(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
