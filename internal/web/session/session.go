// Package session keeps the logged in user and the CSRF token in the session storage.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/uniuri"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "session"
	// CSRFField is the form field carrying the CSRF token.
	CSRFField = "_csrf"
	// LocalsKey holds the *Data of an authenticated request.
	LocalsKey = "Session"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Store is the global session store instance.
var Store *session.Store

// Data represents the session data structure.
type Data struct {
	User      models.User
	CSRFToken string
}

// New returns session data for a user with a fresh CSRF token.
func New(user models.User) *Data {
	return &Data{User: user, CSRFToken: uniuri.New()}
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(sessionID, out, exp)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	if sessionID == "" {
		return ErrSessionNotFound
	}

	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err
	}

	if len(byteData) == 0 {
		return ErrSessionNotFound
	}

	return json.Unmarshal(byteData, s)
}

// Delete removes a session from the storage.
func Delete(sessionID string) error {
	if sessionID == "" {
		return nil
	}

	return Store.Storage.Delete(sessionID)
}

// Init initializes the session store. A nil storage keeps sessions in memory.
func Init(storage fiber.Storage) {
	Store = session.New(session.Config{
		Storage: storage,
	})
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// FromCtx returns the session stored in the locals by the auth middleware, nil for visitors.
func FromCtx(c *fiber.Ctx) *Data {
	d, _ := c.Locals(LocalsKey).(*Data)

	return d
}

// UserID returns the id of the logged in user, 0 for visitors.
func UserID(c *fiber.Ctx) uint64 {
	if d := FromCtx(c); d != nil {
		return d.User.ID
	}

	return 0
}

// CSRFToken returns the token to embed in forms, "" for visitors.
func CSRFToken(c *fiber.Ctx) string {
	if d := FromCtx(c); d != nil {
		return d.CSRFToken
	}

	return ""
}

// CheckCSRF reports whether the submitted _csrf value matches the session token.
func CheckCSRF(c *fiber.Ctx) bool {
	return uniuri.Equal(c.FormValue(CSRFField), CSRFToken(c))
}

// SetCookie sets the session cookie. Secure is off in dev mode.
func SetCookie(c *fiber.Ctx, sessionID string, exp time.Duration, devMode bool) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		MaxAge:   int(exp.Seconds()),
		Secure:   !devMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		MaxAge:   -1,
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
