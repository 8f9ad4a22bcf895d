package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopflow/shopflow-client/session"
	"github.com/shopflow/shopflow-client/store"
	"github.com/shopflow/shopflow-client/types"
)

// flakyStore fails reads a configurable number of times before delegating,
// simulating a freshly loaded tab racing the store becoming readable.
type flakyStore struct {
	store.Store
	failures int
}

func (f *flakyStore) Get(ctx context.Context, key string) (string, error) {
	if f.failures > 0 {
		f.failures--
		return "", errors.New("store not readable yet")
	}
	return f.Store.Get(ctx, key)
}

func newTestGuard(t *testing.T) (*Guard, *session.Manager, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	t.Cleanup(func() { _ = st.Close() })
	sessions := session.NewManager(st)
	return New(sessions), sessions, st
}

func TestCheckRendersForCredentialedUser(t *testing.T) {
	g, sessions, _ := newTestGuard(t)
	ctx := context.Background()

	require.NoError(t, sessions.SetToken(ctx, "tok"))

	result := g.Check(ctx, types.RouteDashboard, types.IntentDefault)
	assert.Equal(t, Render, result.Decision)
	assert.Equal(t, types.ModeCredentialed, result.Session.Mode)
	assert.False(t, result.Interim)
}

func TestCheckRendersForGuest(t *testing.T) {
	g, sessions, _ := newTestGuard(t)
	ctx := context.Background()

	require.NoError(t, sessions.EnableGuestMode(ctx))

	result := g.Check(ctx, types.RouteInventory, types.IntentDefault)
	assert.Equal(t, Render, result.Decision)
	assert.Equal(t, types.ModeGuest, result.Session.Mode)
}

func TestCheckRedirectsUnauthenticated(t *testing.T) {
	// Pins the chosen policy: plain navigation without credentials redirects
	// to login and does not silently promote the visitor to guest mode.
	g, sessions, _ := newTestGuard(t)
	ctx := context.Background()

	result := g.Check(ctx, types.RouteDashboard, types.IntentDefault)
	assert.Equal(t, RedirectToLogin, result.Decision)
	assert.Equal(t, types.ModeNone, result.Session.Mode)

	guest, err := sessions.IsGuestMode(ctx)
	require.NoError(t, err)
	assert.False(t, guest, "guard must not enable guest mode on plain navigation")
}

func TestCheckGuestEntryIntentPromotesAndRenders(t *testing.T) {
	g, sessions, _ := newTestGuard(t)
	ctx := context.Background()

	result := g.Check(ctx, types.RouteDashboard, types.IntentGuestEntry)
	assert.Equal(t, Render, result.Decision)
	assert.Equal(t, types.ModeGuest, result.Session.Mode)
	assert.True(t, result.Session.Authenticated)

	guest, err := sessions.IsGuestMode(ctx)
	require.NoError(t, err)
	assert.True(t, guest)
}

func TestCheckGuestEntryDoesNotLoop(t *testing.T) {
	// After the intent promoted the visitor, subsequent plain navigations
	// render directly off the persisted flag.
	g, _, _ := newTestGuard(t)
	ctx := context.Background()

	first := g.Check(ctx, types.RouteDashboard, types.IntentGuestEntry)
	require.Equal(t, Render, first.Decision)

	second := g.Check(ctx, types.RouteReports, types.IntentDefault)
	assert.Equal(t, Render, second.Decision)
	assert.Equal(t, types.ModeGuest, second.Session.Mode)
}

func TestCheckTokenWinsOverGuestFlag(t *testing.T) {
	g, sessions, _ := newTestGuard(t)
	ctx := context.Background()

	require.NoError(t, sessions.EnableGuestMode(ctx))
	require.NoError(t, sessions.SetToken(ctx, "tok"))

	result := g.Check(ctx, types.RouteDashboard, types.IntentDefault)
	assert.Equal(t, Render, result.Decision)
	assert.Equal(t, types.ModeCredentialed, result.Session.Mode)
}

func TestCheckRetriesTransientStoreFailure(t *testing.T) {
	backing := store.NewMemoryStore()
	t.Cleanup(func() { _ = backing.Close() })
	ctx := context.Background()
	require.NoError(t, backing.Set(ctx, "token", "tok"))

	flaky := &flakyStore{Store: backing, failures: 1}
	g := New(session.NewManager(flaky))

	result := g.Check(ctx, types.RouteDashboard, types.IntentDefault)
	assert.Equal(t, Render, result.Decision, "one transient failure must not cause a redirect")
	assert.Equal(t, types.ModeCredentialed, result.Session.Mode)
	assert.True(t, result.Interim, "caller should have shown a loading placeholder")
}

func TestCheckPersistentStoreFailureRedirects(t *testing.T) {
	backing := store.NewMemoryStore()
	t.Cleanup(func() { _ = backing.Close() })
	flaky := &flakyStore{Store: backing, failures: 10}
	g := New(session.NewManager(flaky))

	result := g.Check(context.Background(), types.RouteDashboard, types.IntentDefault)
	assert.Equal(t, RedirectToLogin, result.Decision)
	assert.True(t, result.Interim)
}

func TestCheckReevaluatesOnEveryNavigation(t *testing.T) {
	g, sessions, _ := newTestGuard(t)
	ctx := context.Background()

	require.NoError(t, sessions.SetToken(ctx, "tok"))
	first := g.Check(ctx, types.RouteDashboard, types.IntentDefault)
	require.Equal(t, Render, first.Decision)

	// Logging out between navigations must be observed by the next check.
	require.NoError(t, sessions.ClearToken(ctx))
	second := g.Check(ctx, types.RouteSales, types.IntentDefault)
	assert.Equal(t, RedirectToLogin, second.Decision)
}
