package oauth

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/shopflow/shopflow-client/errors"
	"github.com/shopflow/shopflow-client/session"
	"github.com/shopflow/shopflow-client/store"
	"github.com/shopflow/shopflow-client/types"
)

type MockProfileAPI struct {
	mock.Mock
}

func (m *MockProfileAPI) Me(ctx context.Context) (*types.UserProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserProfile), args.Error(1)
}

func newTestFlow(t *testing.T) (*Flow, *session.Manager, *MockProfileAPI) {
	t.Helper()
	st := store.NewMemoryStore()
	t.Cleanup(func() { _ = st.Close() })
	sessions := session.NewManager(st)
	api := new(MockProfileAPI)
	return NewFlow(sessions, api), sessions, api
}

func TestParseCallbackSanitizesPlaceholders(t *testing.T) {
	values := url.Values{}
	values.Set("token", "tok-1")
	values.Set("shopCategory", "null")
	values.Set("userId", "undefined")
	values.Set("categorySelected", "true")

	params := ParseCallback(values)
	assert.Equal(t, "tok-1", params.Token)
	assert.Empty(t, params.ShopCategory)
	assert.Empty(t, params.UserID)
	assert.True(t, params.CategorySelected)
}

func TestErrorTakesPrecedenceOverToken(t *testing.T) {
	flow, sessions, api := newTestFlow(t)
	ctx := context.Background()

	outcome := flow.Complete(ctx, CallbackParams{
		Error: "access_denied",
		Token: "tok-1",
	})

	assert.Equal(t, GoToLoginWithError, outcome.Kind)
	assert.Equal(t, types.RouteLogin, outcome.Route)
	assert.Equal(t, "access_denied", outcome.Error)

	// Nothing was persisted and the profile check never ran.
	token, err := sessions.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	api.AssertNotCalled(t, "Me", mock.Anything)
}

func TestPendingTokenTakesPrecedenceAndPersistsNothing(t *testing.T) {
	flow, sessions, api := newTestFlow(t)
	ctx := context.Background()

	outcome := flow.Complete(ctx, CallbackParams{
		PendingToken: "pend-1",
		Provider:     "facebook",
		Name:         "Jordan",
		Token:        "tok-should-be-ignored",
	})

	assert.Equal(t, GoToSocialEmailCapture, outcome.Kind)
	assert.Equal(t, types.RouteSocialEmail, outcome.Route)
	assert.Equal(t, "pend-1", outcome.PendingToken)
	assert.Equal(t, "facebook", outcome.Provider)
	assert.Equal(t, "Jordan", outcome.DisplayName)

	token, err := sessions.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token, "pending-email flow must not persist any token")
	api.AssertNotCalled(t, "Me", mock.Anything)
}

func TestCompleteWithAuthoritativeProfile(t *testing.T) {
	flow, sessions, api := newTestFlow(t)
	ctx := context.Background()

	api.On("Me", mock.Anything).Return(&types.UserProfile{
		ID:                 "u7",
		ShopCategory:       "Computer Shop",
		IsCategorySelected: true,
	}, nil)

	outcome := flow.Complete(ctx, CallbackParams{Token: "tok-7"})

	assert.Equal(t, GoToDashboard, outcome.Kind)

	token, err := sessions.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-7", token)

	// The callback omitted the user id; the profile backfilled it.
	userID, err := sessions.UserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u7", userID)
}

func TestProfileOverridesCallbackCategory(t *testing.T) {
	flow, _, api := newTestFlow(t)
	ctx := context.Background()

	// Callback claims a complete category, the profile says otherwise. The
	// profile is ground truth.
	api.On("Me", mock.Anything).Return(&types.UserProfile{ID: "u1"}, nil)

	outcome := flow.Complete(ctx, CallbackParams{
		Token:            "tok-1",
		ShopCategory:     "Electronics",
		CategorySelected: true,
	})

	assert.Equal(t, GoToSelectCategory, outcome.Kind)
}

func TestFailedProfileCheckFallsBackToCallback(t *testing.T) {
	flow, sessions, api := newTestFlow(t)
	ctx := context.Background()

	api.On("Me", mock.Anything).Return(nil, apperrors.Transport(assert.AnError))

	outcome := flow.Complete(ctx, CallbackParams{
		Token:            "tok-1",
		UserID:           "u1",
		ShopCategory:     "Electronics",
		CategorySelected: true,
	})

	// Degrade to the callback parameters rather than aborting sign-in.
	assert.Equal(t, GoToDashboard, outcome.Kind)

	token, err := sessions.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}

func TestIncompleteCategoryGoesToSelection(t *testing.T) {
	tests := []struct {
		name   string
		params CallbackParams
	}{
		{name: "no category", params: CallbackParams{Token: "t", CategorySelected: true}},
		{name: "category without completeness", params: CallbackParams{Token: "t", ShopCategory: "Pharmacy"}},
		{name: "neither", params: CallbackParams{Token: "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow, _, api := newTestFlow(t)
			api.On("Me", mock.Anything).Return(nil, apperrors.Transport(assert.AnError))

			outcome := flow.Complete(context.Background(), tt.params)
			assert.Equal(t, GoToSelectCategory, outcome.Kind)
		})
	}
}
