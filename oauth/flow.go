// Package oauth reconciles the redirect callback from a third-party identity
// provider into local session state. The callback parameters are consumed
// exactly once; nothing from the raw URL is persisted verbatim.
package oauth

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/shopflow/shopflow-client/logger"
	"github.com/shopflow/shopflow-client/session"
	"github.com/shopflow/shopflow-client/types"
)

// OutcomeKind enumerates the terminal states of the completion flow.
type OutcomeKind string

const (
	GoToDashboard          OutcomeKind = "dashboard"
	GoToSelectCategory     OutcomeKind = "select-category"
	GoToSocialEmailCapture OutcomeKind = "social-email-capture"
	GoToLoginWithError     OutcomeKind = "login-with-error"
)

// Outcome is where the flow sends the user next, with whatever that screen
// needs carried along.
type Outcome struct {
	Kind  OutcomeKind
	Route types.Route

	// Set for GoToLoginWithError.
	Error string

	// Set for GoToSocialEmailCapture. The pending token has not been
	// persisted; the email-capture screen exchanges it for a real one.
	PendingToken string
	Provider     string
	DisplayName  string
}

// CallbackParams is the one-time bundle carried on the provider redirect.
type CallbackParams struct {
	Token            string
	UserID           string
	ShopCategory     string
	CategorySelected bool
	Error            string
	PendingToken     string
	Provider         string
	Name             string
}

// sanitize drops the string artifacts of URL-encoding absent values.
func sanitize(value string) string {
	if value == "null" || value == "undefined" {
		return ""
	}
	return value
}

// ParseCallback extracts callback parameters from the redirect query string,
// treating "null"/"undefined" placeholders as absent.
func ParseCallback(values url.Values) CallbackParams {
	return CallbackParams{
		Token:            sanitize(values.Get("token")),
		UserID:           sanitize(values.Get("userId")),
		ShopCategory:     sanitize(values.Get("shopCategory")),
		CategorySelected: sanitize(values.Get("categorySelected")) == "true",
		Error:            sanitize(values.Get("error")),
		PendingToken:     sanitize(values.Get("pendingToken")),
		Provider:         sanitize(values.Get("provider")),
		Name:             sanitize(values.Get("name")),
	}
}

// ProfileAPI is the authoritative "who am I" check used after the token is
// persisted.
type ProfileAPI interface {
	Me(ctx context.Context) (*types.UserProfile, error)
}

// Flow turns a provider redirect into a usable session.
type Flow struct {
	sessions *session.Manager
	api      ProfileAPI
	log      *zap.SugaredLogger
}

// NewFlow returns a Flow writing into the given session manager.
func NewFlow(sessions *session.Manager, api ProfileAPI) *Flow {
	return &Flow{
		sessions: sessions,
		api:      api,
		log:      logger.GetLogger(),
	}
}

// Complete runs the reconciliation. Every branch ends in a defined outcome;
// only an explicit error parameter aborts the sign-in.
func (f *Flow) Complete(ctx context.Context, params CallbackParams) Outcome {
	if params.Error != "" {
		f.log.Warnw("OAuth provider returned an error", "error", params.Error)
		return Outcome{Kind: GoToLoginWithError, Route: types.RouteLogin, Error: params.Error}
	}

	// No email from the provider: hand off to the capture screen without
	// persisting anything.
	if params.PendingToken != "" {
		f.log.Infow("OAuth provider withheld email, capturing it separately",
			"provider", params.Provider)
		return Outcome{
			Kind:         GoToSocialEmailCapture,
			Route:        types.RouteSocialEmail,
			PendingToken: params.PendingToken,
			Provider:     params.Provider,
			DisplayName:  params.Name,
		}
	}

	if params.Token != "" {
		if err := f.sessions.SetToken(ctx, params.Token); err != nil {
			f.log.Errorw("Failed to persist OAuth token", "error", err)
			return Outcome{Kind: GoToLoginWithError, Route: types.RouteLogin, Error: "Sign-in could not be completed. Please try again."}
		}
	}
	if params.UserID != "" {
		if err := f.sessions.SetUserID(ctx, params.UserID); err != nil {
			f.log.Errorw("Failed to persist user id from OAuth callback", "error", err)
		}
	}

	category, complete := f.resolveCategory(ctx, params)

	if category != "" && complete {
		return Outcome{Kind: GoToDashboard, Route: types.RouteDashboard}
	}
	return Outcome{Kind: GoToSelectCategory, Route: types.RouteSelectCategory}
}

// resolveCategory prefers the authoritative profile over the query
// parameters. A failed profile check is non-fatal: the flow degrades to the
// callback's category and flag rather than aborting the sign-in.
func (f *Flow) resolveCategory(ctx context.Context, params CallbackParams) (string, bool) {
	profile, err := f.api.Me(ctx)
	if err != nil {
		f.log.Warnw("Authoritative profile check failed, using callback parameters",
			"error", err)
		return params.ShopCategory, params.CategorySelected
	}

	// Backfill the user id when the callback omitted it.
	if params.UserID == "" && profile.ID != "" {
		if err := f.sessions.SetUserID(ctx, profile.ID); err != nil {
			f.log.Errorw("Failed to backfill user id from profile", "error", err)
		}
	}

	return profile.EffectiveCategory(), profile.IsCategorySelected
}
