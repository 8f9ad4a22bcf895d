package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopflow/shopflow-client/client"
	"github.com/shopflow/shopflow-client/config"
	"github.com/shopflow/shopflow-client/session"
	"github.com/shopflow/shopflow-client/store"
	"github.com/shopflow/shopflow-client/types"
)

type inventoryFixture struct {
	svc      *InventoryService
	sessions *session.Manager
	epoch    *ScreenEpoch
	requests *atomic.Int64
}

func newInventoryFixture(t *testing.T, handler http.Handler) *inventoryFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	t.Cleanup(func() { _ = st.Close() })
	sessions := session.NewManager(st)

	requests := &atomic.Int64{}
	counting := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		handler.ServeHTTP(w, r)
	})
	server := httptest.NewServer(counting)
	t.Cleanup(server.Close)

	api := client.New(config.APIConfig{BaseURL: server.URL, TimeoutSeconds: 5}, sessions.Token)
	epoch := &ScreenEpoch{}
	svc := NewInventoryService(api, sessions, epoch, config.GuestConfig{InventoryLimit: 2})
	return &inventoryFixture{svc: svc, sessions: sessions, epoch: epoch, requests: requests}
}

func TestCredentialedListProxiesBackend(t *testing.T) {
	router := gin.New()
	router.GET("/products", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{
			{"_id": "p1", "name": "Keyboard", "quantity": 12},
		})
	})

	f := newInventoryFixture(t, router)
	gen := f.epoch.Enter()

	products, err := f.svc.List(context.Background(), gen)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].EffectiveID())
}

func TestGuestListStartsEmptyWithoutBackendCalls(t *testing.T) {
	f := newInventoryFixture(t, gin.New())
	ctx := context.Background()
	require.NoError(t, f.sessions.EnableGuestMode(ctx))

	products, err := f.svc.List(ctx, f.epoch.Enter())
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Zero(t, f.requests.Load(), "guest mode must not call the backend")
}

func TestGuestAddAssignsLocalIDAndPersists(t *testing.T) {
	f := newInventoryFixture(t, gin.New())
	ctx := context.Background()
	require.NoError(t, f.sessions.EnableGuestMode(ctx))

	result, err := f.svc.Add(ctx, types.Product{Name: "Trial Keyboard", Quantity: 3})
	require.NoError(t, err)
	require.NotNil(t, result.Product)
	assert.False(t, result.SignupRequired)
	assert.Regexp(t, `^guest-\d+$`, result.Product.ID)

	products, err := f.svc.List(ctx, f.epoch.Enter())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Trial Keyboard", products[0].Name)

	var count int
	found, err := f.sessions.GetGlobalJSON(ctx, keyGuestInventoryCount, &count)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, count)

	assert.Zero(t, f.requests.Load(), "guest items must never reach the server")
}

func TestGuestAddAtCapRequiresSignup(t *testing.T) {
	f := newInventoryFixture(t, gin.New())
	ctx := context.Background()
	require.NoError(t, f.sessions.EnableGuestMode(ctx))

	for i := 0; i < 2; i++ {
		result, err := f.svc.Add(ctx, types.Product{Name: "Item"})
		require.NoError(t, err)
		require.False(t, result.SignupRequired)
	}

	result, err := f.svc.Add(ctx, types.Product{Name: "One Too Many"})
	require.NoError(t, err)
	assert.True(t, result.SignupRequired)
	assert.Nil(t, result.Product)

	products, err := f.svc.List(ctx, f.epoch.Enter())
	require.NoError(t, err)
	assert.Len(t, products, 2, "the refused item must not be stored")
	assert.Zero(t, f.requests.Load())
}

func TestGuestUpdateAndDelete(t *testing.T) {
	f := newInventoryFixture(t, gin.New())
	ctx := context.Background()
	require.NoError(t, f.sessions.EnableGuestMode(ctx))

	added, err := f.svc.Add(ctx, types.Product{Name: "Original", Quantity: 1})
	require.NoError(t, err)
	id := added.Product.ID

	updated, err := f.svc.Update(ctx, id, types.Product{Name: "Renamed", Quantity: 7})
	require.NoError(t, err)
	assert.Equal(t, id, updated.EffectiveID())
	assert.Equal(t, "Renamed", updated.Name)

	require.NoError(t, f.svc.Delete(ctx, id))

	products, err := f.svc.List(ctx, f.epoch.Enter())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestGuestLowStockComputedLocally(t *testing.T) {
	f := newInventoryFixture(t, gin.New())
	ctx := context.Background()
	require.NoError(t, f.sessions.EnableGuestMode(ctx))

	_, err := f.svc.Add(ctx, types.Product{Name: "Plenty", Quantity: 40})
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, types.Product{Name: "Scarce", Quantity: 2})
	require.NoError(t, err)

	low, err := f.svc.LowStock(ctx, f.epoch.Enter())
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Scarce", low[0].Name)
}

func TestGuestHistoryIsEmpty(t *testing.T) {
	f := newInventoryFixture(t, gin.New())
	ctx := context.Background()
	require.NoError(t, f.sessions.EnableGuestMode(ctx))

	entries, err := f.svc.History(ctx, f.epoch.Enter())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, f.requests.Load())
}

func TestCredentialedAddSendsToServer(t *testing.T) {
	router := gin.New()
	router.POST("/products", func(c *gin.Context) {
		var p types.Product
		require.NoError(t, c.ShouldBindJSON(&p))
		p.MongoID = "srv-1"
		c.JSON(http.StatusCreated, p)
	})

	f := newInventoryFixture(t, router)
	result, err := f.svc.Add(context.Background(), types.Product{Name: "Real Item"})
	require.NoError(t, err)
	require.NotNil(t, result.Product)
	assert.Equal(t, "srv-1", result.Product.EffectiveID())
}

func TestStaleListResultIsDropped(t *testing.T) {
	router := gin.New()
	router.GET("/products", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"_id": "p1", "name": "Keyboard"}})
	})

	f := newInventoryFixture(t, router)
	gen := f.epoch.Enter()

	// User navigates away while the request is in flight.
	f.epoch.Enter()

	_, err := f.svc.List(context.Background(), gen)
	assert.ErrorIs(t, err, ErrStaleScreen)
}
