// Package session owns the client's local session state: the bearer token,
// the user identifier, the guest-mode flag, and user-namespaced cached data.
// All state lives in an injected store.Store; nothing here touches the network.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/shopflow/shopflow-client/errors"
	"github.com/shopflow/shopflow-client/logger"
	"github.com/shopflow/shopflow-client/store"
	"github.com/shopflow/shopflow-client/types"
)

// Store keys. The guest flag is global on purpose: it must survive
// ClearAllNamespaced, which only touches user-prefixed keys.
const (
	keyToken     = "token"
	keyUserID    = "userId"
	keyGuestMode = "guest_mode"

	guestSentinel = "true"
)

// Manager wraps the persistent store with session semantics.
type Manager struct {
	store store.Store
	log   *zap.SugaredLogger
}

// NewManager returns a Manager backed by the given store.
func NewManager(st store.Store) *Manager {
	return &Manager{
		store: st,
		log:   logger.GetLogger(),
	}
}

// Store exposes the underlying store, primarily so callers can Watch it.
func (m *Manager) Store() store.Store {
	return m.store
}

// SetToken persists the bearer token.
func (m *Manager) SetToken(ctx context.Context, token string) error {
	if err := m.store.Set(ctx, keyToken, token); err != nil {
		return apperrors.NewCacheError(err)
	}
	m.log.Debugw("Stored session token", "token", logger.MaskToken(token))
	return nil
}

// Token returns the stored bearer token, or "" when absent.
func (m *Manager) Token(ctx context.Context) (string, error) {
	return m.get(ctx, keyToken)
}

// ClearToken removes the bearer token.
func (m *Manager) ClearToken(ctx context.Context) error {
	if err := m.store.Delete(ctx, keyToken); err != nil {
		return apperrors.NewCacheError(err)
	}
	return nil
}

// SetUserID persists the user identifier correlated with the token.
func (m *Manager) SetUserID(ctx context.Context, id string) error {
	if err := m.store.Set(ctx, keyUserID, id); err != nil {
		return apperrors.NewCacheError(err)
	}
	return nil
}

// UserID returns the stored user identifier, or "" when absent.
func (m *Manager) UserID(ctx context.Context) (string, error) {
	return m.get(ctx, keyUserID)
}

// ClearUserID removes the user identifier.
func (m *Manager) ClearUserID(ctx context.Context) error {
	if err := m.store.Delete(ctx, keyUserID); err != nil {
		return apperrors.NewCacheError(err)
	}
	return nil
}

// namespacePrefix returns the key prefix for the given user id.
func namespacePrefix(userID string) string {
	return fmt.Sprintf("user_%s_", userID)
}

// NamespacedKey returns rawKey prefixed with the current user's namespace, or
// rawKey unchanged when no user identifier is stored.
func (m *Manager) NamespacedKey(ctx context.Context, rawKey string) (string, error) {
	userID, err := m.UserID(ctx)
	if err != nil {
		return "", err
	}
	if userID == "" {
		return rawKey, nil
	}
	return namespacePrefix(userID) + rawKey, nil
}

// GetNamespaced decodes the JSON value cached under the current user's
// namespaced key into dest. It reports whether a usable value was found:
// absent and malformed entries both return false without touching dest, so a
// corrupted cache entry degrades to the caller's default instead of failing.
func (m *Manager) GetNamespaced(ctx context.Context, rawKey string, dest interface{}) (bool, error) {
	key, err := m.NamespacedKey(ctx, rawKey)
	if err != nil {
		return false, err
	}

	raw, err := m.store.Get(ctx, key)
	if errors.Is(err, store.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewCacheError(err)
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		m.log.Warnw("Ignoring malformed cached value", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

// SetNamespaced JSON-encodes value and stores it under the current user's
// namespaced key.
func (m *Manager) SetNamespaced(ctx context.Context, rawKey string, value interface{}) error {
	key, err := m.NamespacedKey(ctx, rawKey)
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CacheError, "failed to encode cached value")
	}
	if err := m.store.Set(ctx, key, string(encoded)); err != nil {
		return apperrors.NewCacheError(err)
	}
	return nil
}

// RemoveNamespaced deletes the value cached under the current user's
// namespaced key.
func (m *Manager) RemoveNamespaced(ctx context.Context, rawKey string) error {
	key, err := m.NamespacedKey(ctx, rawKey)
	if err != nil {
		return err
	}
	if err := m.store.Delete(ctx, key); err != nil {
		return apperrors.NewCacheError(err)
	}
	return nil
}

// ClearAllNamespaced removes every key under the current user's namespace and
// then the user identifier itself. Keys outside the namespace, including the
// guest flag, are left untouched. Safe to call with no user identifier stored,
// and calling it twice is a no-op the second time.
func (m *Manager) ClearAllNamespaced(ctx context.Context) error {
	userID, err := m.UserID(ctx)
	if err != nil {
		return err
	}
	if userID == "" {
		return nil
	}

	prefix := namespacePrefix(userID)
	keys, err := m.store.Keys(ctx, prefix)
	if err != nil {
		return apperrors.NewCacheError(err)
	}
	for _, key := range keys {
		if err := m.store.Delete(ctx, key); err != nil {
			return apperrors.NewCacheError(err)
		}
	}

	m.log.Debugw("Cleared user-namespaced data", "userID", userID, "removedKeys", len(keys))
	return m.ClearUserID(ctx)
}

// EnableGuestMode turns on the degraded local-only experience.
func (m *Manager) EnableGuestMode(ctx context.Context) error {
	if err := m.store.Set(ctx, keyGuestMode, guestSentinel); err != nil {
		return apperrors.NewCacheError(err)
	}
	m.log.Infow("Guest mode enabled")
	return nil
}

// IsGuestMode reports whether the guest flag is set.
func (m *Manager) IsGuestMode(ctx context.Context) (bool, error) {
	value, err := m.get(ctx, keyGuestMode)
	if err != nil {
		return false, err
	}
	return value == guestSentinel, nil
}

// DisableGuestMode clears the guest flag.
func (m *Manager) DisableGuestMode(ctx context.Context) error {
	if err := m.store.Delete(ctx, keyGuestMode); err != nil {
		return apperrors.NewCacheError(err)
	}
	return nil
}

// DeleteGlobal removes a non-namespaced key. Guest-local collections use this
// on guest exit.
func (m *Manager) DeleteGlobal(ctx context.Context, key string) error {
	if err := m.store.Delete(ctx, key); err != nil {
		return apperrors.NewCacheError(err)
	}
	return nil
}

// GetGlobalJSON and SetGlobalJSON read and write JSON values under fixed,
// non-namespaced keys. Guest mode has no user identifier, so its local data
// cannot live in a namespace.
func (m *Manager) GetGlobalJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := m.store.Get(ctx, key)
	if errors.Is(err, store.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewCacheError(err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		m.log.Warnw("Ignoring malformed cached value", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (m *Manager) SetGlobalJSON(ctx context.Context, key string, value interface{}) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CacheError, "failed to encode cached value")
	}
	if err := m.store.Set(ctx, key, string(encoded)); err != nil {
		return apperrors.NewCacheError(err)
	}
	return nil
}

// Resolve derives the current session from store contents. A stored token
// always wins over the guest flag; the flag only matters when no token exists.
func (m *Manager) Resolve(ctx context.Context) (types.Session, error) {
	token, err := m.Token(ctx)
	if err != nil {
		return types.Session{}, err
	}
	if token != "" {
		return types.Session{Authenticated: true, Mode: types.ModeCredentialed}, nil
	}

	guest, err := m.IsGuestMode(ctx)
	if err != nil {
		return types.Session{}, err
	}
	if guest {
		return types.Session{Authenticated: true, Mode: types.ModeGuest}, nil
	}

	return types.Session{Authenticated: false, Mode: types.ModeNone}, nil
}

// get reads a key, translating "missing" into the empty string.
func (m *Manager) get(ctx context.Context, key string) (string, error) {
	value, err := m.store.Get(ctx, key)
	if errors.Is(err, store.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.NewCacheError(err)
	}
	return value, nil
}
