// Package session keeps the authenticated identity of a browser session in
// a fiber storage backend, keyed by the session cookie.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Luizsilva-repros/intranet/internal/identity"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "session"

	localsKey = "identity"
)

// ErrNotFound is returned by Read for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Store is the global session storage.
var Store fiber.Storage //nolint:gochecknoglobals

// Data represents the session data structure.
type Data struct {
	Identity identity.Identity `json:"identity"`
}

// Valid reports whether the session holds an identity.
func (s *Data) Valid() bool {
	return s.Identity.Email != ""
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Set(sessionID, out, exp)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	byteData, err := Store.Get(sessionID)
	if err != nil {
		return err
	}

	if len(byteData) == 0 {
		return ErrNotFound
	}

	return json.Unmarshal(byteData, s)
}

// Delete removes a session.
func Delete(sessionID string) error {
	return Store.Delete(sessionID)
}

// Init initializes the session store with the provided storage backend.
func Init(storage fiber.Storage) {
	if storage == nil {
		panic("storage is nil")
	}

	Store = storage
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

// SetCurrent stores the request's identity in the fiber locals.
func SetCurrent(c fiber.Ctx, ident *identity.Identity) {
	c.Locals(localsKey, ident)
}

// Current returns the identity stored by SetCurrent, or nil.
func Current(c fiber.Ctx) *identity.Identity {
	ident, _ := c.Locals(localsKey).(*identity.Identity)

	return ident
}
