// internal/pkg/auth/session.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrInvalidCredential is returned for credentials that were never issued,
// were revoked, or no longer parse.
var ErrInvalidCredential = errors.New("invalid credential")

// SessionStore is the key/value surface the session manager needs.
// A miss must be reported as redis.Nil.
type SessionStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	// AddToSet adds member to the set at key and pushes its expiry out to ttl.
	AddToSet(ctx context.Context, key, member string, ttl time.Duration) error
	// SetMembers lists the set at key. A missing set is empty, not an error.
	SetMembers(ctx context.Context, key string) ([]string, error)
}

// SessionManager ties issued bearer credentials to server-side sessions so
// that logout can invalidate them before they expire.
type SessionManager struct {
	store SessionStore
	jwt   *JWTManager
}

// NewSessionManager creates a session manager over store.
func NewSessionManager(store SessionStore, jwtManager *JWTManager) *SessionManager {
	return &SessionManager{store: store, jwt: jwtManager}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

// userSessionKey holds the credential handed out again on the next login.
func userSessionKey(userID uint) string {
	return fmt.Sprintf("user_session:%d", userID)
}

// userSessionsKey holds the id of every session issued to the user.
func userSessionsKey(userID uint) string {
	return fmt.Sprintf("user_sessions:%d", userID)
}

// Issue returns the live credential already held by userID, or mints and
// stores a new one. reused reports which happened.
func (m *SessionManager) Issue(ctx context.Context, userID uint, username string) (token string, reused bool, err error) {
	existing, err := m.store.Get(ctx, userSessionKey(userID))
	switch {
	case err == nil:
		if _, vErr := m.Validate(ctx, existing); vErr == nil {
			return existing, true, nil
		}
	case !errors.Is(err, redis.Nil):
		return "", false, fmt.Errorf("failed to read user session: %w", err)
	}

	token, claims, err := m.jwt.GenerateAccessToken(userID, username)
	if err != nil {
		return "", false, err
	}

	ttl := m.jwt.Expiry()
	if err := m.store.Set(ctx, sessionKey(claims.SessionID()), strconv.FormatUint(uint64(userID), 10), ttl); err != nil {
		return "", false, fmt.Errorf("failed to store session: %w", err)
	}
	if err := m.store.AddToSet(ctx, userSessionsKey(userID), claims.SessionID(), ttl); err != nil {
		return "", false, fmt.Errorf("failed to index session: %w", err)
	}
	if err := m.store.Set(ctx, userSessionKey(userID), token, ttl); err != nil {
		return "", false, fmt.Errorf("failed to store user session: %w", err)
	}

	return token, false, nil
}

// Validate parses token and checks that its session is still live.
func (m *SessionManager) Validate(ctx context.Context, token string) (*Claims, error) {
	claims, err := m.jwt.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidCredential
	}

	stored, err := m.store.Get(ctx, sessionKey(claims.SessionID()))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if stored != strconv.FormatUint(uint64(claims.UserID), 10) {
		return nil, ErrInvalidCredential
	}

	return claims, nil
}

// Revoke invalidates token. Unknown or already revoked tokens yield ErrInvalidCredential.
func (m *SessionManager) Revoke(ctx context.Context, token string) (*Claims, error) {
	claims, err := m.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := m.store.Del(ctx, sessionKey(claims.SessionID()), userSessionKey(claims.UserID)); err != nil {
		return nil, fmt.Errorf("failed to delete session: %w", err)
	}
	return claims, nil
}

// RevokeUser drops every credential issued to userID, including ones minted
// by concurrent logins.
func (m *SessionManager) RevokeUser(ctx context.Context, userID uint) error {
	ids, err := m.store.SetMembers(ctx, userSessionsKey(userID))
	if err != nil {
		return fmt.Errorf("failed to list user sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+2)
	keys = append(keys, userSessionKey(userID), userSessionsKey(userID))
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}

	if err := m.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
