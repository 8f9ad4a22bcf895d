// Package services holds the screen-facing flows: authentication and
// onboarding, inventory with its guest-mode shadow store, and the monthly
// report aggregation.
package services

import (
	"context"

	"go.uber.org/zap"

	apperrors "github.com/shopflow/shopflow-client/errors"
	"github.com/shopflow/shopflow-client/logger"
	"github.com/shopflow/shopflow-client/session"
	"github.com/shopflow/shopflow-client/types"
)

// keyUserCategory caches the chosen shop category under the user namespace.
// It is the fallback of record when the backend cannot store the category.
const keyUserCategory = "userCategory"

// AuthAPI is the slice of the backend client the auth flows need.
type AuthAPI interface {
	Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error)
	Signup(ctx context.Context, req types.SignupRequest) (*types.SignupResponse, error)
	CompleteSocialEmail(ctx context.Context, req types.CompleteSocialEmailRequest) (*types.CompleteSocialEmailResponse, error)
	UpdateCategory(ctx context.Context, shopCategory string) error
}

// AuthService drives sign-in, sign-up, onboarding, and sign-out, keeping the
// session manager in step with the backend.
type AuthService struct {
	api      AuthAPI
	sessions *session.Manager
	log      *zap.SugaredLogger
}

func NewAuthService(api AuthAPI, sessions *session.Manager) *AuthService {
	return &AuthService{
		api:      api,
		sessions: sessions,
		log:      logger.GetLogger(),
	}
}

// Login authenticates, persists the credentials, and returns where to go
// next: the dashboard when a shop category is already chosen, otherwise
// category selection.
func (s *AuthService) Login(ctx context.Context, email, password string) (types.Route, error) {
	resp, err := s.api.Login(ctx, types.LoginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}

	if err := s.sessions.SetToken(ctx, resp.Token); err != nil {
		return "", err
	}
	if id := resp.EffectiveUserID(); id != "" {
		if err := s.sessions.SetUserID(ctx, id); err != nil {
			return "", err
		}
	}

	s.log.Infow("User logged in", "email", logger.MaskEmail(email))

	if resp.EffectiveCategory() != "" {
		return types.RouteDashboard, nil
	}
	return types.RouteSelectCategory, nil
}

// Signup registers a new account. Nothing is persisted locally; the user
// signs in afterwards.
func (s *AuthService) Signup(ctx context.Context, req types.SignupRequest) (types.Route, error) {
	if _, err := s.api.Signup(ctx, req); err != nil {
		return "", err
	}
	s.log.Infow("User signed up", "email", logger.MaskEmail(req.Email))
	return types.RouteLogin, nil
}

// CompleteSocialEmail exchanges the pending token issued by the social
// sign-in for a real session.
func (s *AuthService) CompleteSocialEmail(ctx context.Context, pendingToken, email string) (types.Route, error) {
	resp, err := s.api.CompleteSocialEmail(ctx, types.CompleteSocialEmailRequest{
		Token: pendingToken,
		Email: email,
	})
	if err != nil {
		return "", err
	}

	if err := s.sessions.SetToken(ctx, resp.Token); err != nil {
		return "", err
	}
	if resp.User != nil && resp.User.ID != "" {
		if err := s.sessions.SetUserID(ctx, resp.User.ID); err != nil {
			return "", err
		}
	}

	if resp.User != nil && resp.User.HasCategory() {
		return types.RouteDashboard, nil
	}
	return types.RouteSelectCategory, nil
}

// SelectCategory records the chosen shop category. The backend endpoint is
// not deployed everywhere, so a 404 degrades to caching the category locally
// and moving on. An authentication failure clears the token and sends the
// user back to login. Other failures are surfaced with no state change.
func (s *AuthService) SelectCategory(ctx context.Context, category string) (types.Route, error) {
	err := s.api.UpdateCategory(ctx, category)
	switch {
	case err == nil:
		// Cache locally as well so the dashboard has it without another
		// round trip.
		if cacheErr := s.sessions.SetNamespaced(ctx, keyUserCategory, category); cacheErr != nil {
			s.log.Warnw("Failed to cache shop category", "error", cacheErr)
		}
		return types.RouteDashboard, nil

	case apperrors.IsNotFound(err):
		s.log.Infow("Category endpoint unavailable, keeping the choice locally",
			"category", category)
		if cacheErr := s.sessions.SetNamespaced(ctx, keyUserCategory, category); cacheErr != nil {
			return "", cacheErr
		}
		return types.RouteDashboard, nil

	case apperrors.IsAuth(err):
		s.log.Warnw("Session rejected while selecting category", "error", err)
		if clearErr := s.sessions.ClearToken(ctx); clearErr != nil {
			s.log.Errorw("Failed to clear rejected token", "error", clearErr)
		}
		return types.RouteLogin, err

	default:
		return "", err
	}
}

// Logout tears the session down. Guest sessions additionally drop the guest
// flag and the guest-local inventory so the next visitor starts clean.
func (s *AuthService) Logout(ctx context.Context) error {
	guest, err := s.sessions.IsGuestMode(ctx)
	if err != nil {
		return err
	}
	if guest {
		if err := s.sessions.DisableGuestMode(ctx); err != nil {
			return err
		}
		if err := s.sessions.DeleteGlobal(ctx, keyGuestInventory); err != nil {
			return err
		}
		if err := s.sessions.DeleteGlobal(ctx, keyGuestInventoryCount); err != nil {
			return err
		}
	}

	if err := s.sessions.ClearAllNamespaced(ctx); err != nil {
		return err
	}
	if err := s.sessions.ClearToken(ctx); err != nil {
		return err
	}

	s.log.Infow("Session cleared", "guest", guest)
	return nil
}
