package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"strings"

	"contactdesk-bot/internal/database"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotPrivileged is returned when a non-operator identity tries to log in or out.
	ErrNotPrivileged = errors.New("identity is not the configured admin")
	// ErrWrongPassword is returned when the password does not match.
	ErrWrongPassword = errors.New("wrong admin password")
)

// Gate decides who may use admin actions: the single configured identity,
// and only while its stored session is marked logged in.
type Gate struct {
	adminID      int64
	sessions     database.AdminSessionRepository
	password     string
	passwordHash string
}

// NewGate creates a Gate. When passwordHash is set it takes precedence over
// the plain password.
func NewGate(adminID int64, sessions database.AdminSessionRepository, password, passwordHash string) (*Gate, error) {
	if adminID == 0 {
		return nil, fmt.Errorf("admin ID cannot be zero")
	}
	if sessions == nil {
		return nil, fmt.Errorf("admin session repository cannot be nil")
	}
	if password == "" && passwordHash == "" {
		return nil, fmt.Errorf("admin password or password hash is required")
	}
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("invalid admin password hash: %w", err)
		}
	}
	return &Gate{
		adminID:      adminID,
		sessions:     sessions,
		password:     password,
		passwordHash: passwordHash,
	}, nil
}

// AdminID returns the privileged identity.
func (g *Gate) AdminID() int64 {
	return g.adminID
}

// IsPrivileged reports whether userID is the configured admin identity,
// regardless of login state.
func (g *Gate) IsPrivileged(userID int64) bool {
	return userID == g.adminID
}

// IsAdmin reports whether userID may run admin actions right now.
func (g *Gate) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	if !g.IsPrivileged(userID) {
		return false, nil
	}
	loggedIn, err := g.sessions.IsAdminLoggedIn(ctx, userID)
	if err != nil {
		log.Printf("[AdminGate User:%d] Error reading admin session: %v. Assuming logged out.", userID, err)
		return false, fmt.Errorf("failed to check admin session: %w", err)
	}
	return loggedIn, nil
}

// Login checks the password and marks the session logged in. The identity is
// checked first; a non-admin never reaches the password comparison.
func (g *Gate) Login(ctx context.Context, userID int64, password string) error {
	if !g.IsPrivileged(userID) {
		return ErrNotPrivileged
	}
	if !g.verify(strings.TrimSpace(password)) {
		return ErrWrongPassword
	}
	if err := g.sessions.SetAdminSession(ctx, userID, true); err != nil {
		return fmt.Errorf("failed to store admin login: %w", err)
	}
	log.Printf("[AdminGate User:%d] Logged in", userID)
	return nil
}

func (g *Gate) Logout(ctx context.Context, userID int64) error {
	if !g.IsPrivileged(userID) {
		return ErrNotPrivileged
	}
	if err := g.sessions.SetAdminSession(ctx, userID, false); err != nil {
		return fmt.Errorf("failed to store admin logout: %w", err)
	}
	log.Printf("[AdminGate User:%d] Logged out", userID)
	return nil
}

func (g *Gate) verify(password string) bool {
	if g.passwordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(g.passwordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(g.password), []byte(password)) == 1
}
