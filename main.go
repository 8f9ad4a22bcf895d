package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shopflow/shopflow-client/client"
	"github.com/shopflow/shopflow-client/config"
	"github.com/shopflow/shopflow-client/guard"
	"github.com/shopflow/shopflow-client/logger"
	"github.com/shopflow/shopflow-client/session"
	"github.com/shopflow/shopflow-client/store"
	"github.com/shopflow/shopflow-client/types"
)

// The session agent resolves the current session, then follows store events
// until interrupted so changes made by other tabs or processes show up live.
func main() {
	_ = godotenv.Load()

	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Errorw("Failed to close session store", "error", err)
		}
	}()

	sessions := session.NewManager(st)
	routeGuard := guard.New(sessions)
	api := client.New(cfg.API, sessions.Token)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := routeGuard.Check(ctx, types.RouteDashboard, types.IntentDefault)
	log.Infow("Session resolved",
		"decision", result.Decision,
		"authenticated", result.Session.Authenticated,
		"mode", result.Session.Mode)

	if result.Session.Authenticated && result.Session.Mode == types.ModeCredentialed {
		if profile, err := api.Me(ctx); err != nil {
			log.Warnw("Profile check failed", "error", err)
		} else {
			log.Infow("Profile loaded",
				"user", profile.ID,
				"category", profile.EffectiveCategory())
		}
	}

	events, err := st.Watch(ctx)
	if err != nil {
		log.Fatalf("Failed to watch session store: %v", err)
	}

	log.Info("Watching for session changes, Ctrl+C to stop")
	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down")
			return
		case event, ok := <-events:
			if !ok {
				log.Info("Store closed, shutting down")
				return
			}
			log.Infow("Session store changed",
				"op", event.Op,
				"key", event.Key)

			// Re-resolve so a login or logout in another tab is reflected
			// here immediately.
			if state, err := sessions.Resolve(ctx); err != nil {
				log.Warnw("Failed to re-resolve session", "error", err)
			} else {
				log.Infow("Session now",
					"authenticated", state.Authenticated,
					"mode", state.Mode)
			}
		}
	}
}

// openStore picks the configured session store backend.
func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.Store.Backend == config.StoreBackendRedis {
		return store.NewRedisStore(cfg.Redis, cfg.Store.KeyPrefix)
	}
	return store.NewMemoryStore(), nil
}
