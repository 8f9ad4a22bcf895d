// sessioncheck is a manual smoke tool: it signs in against a live backend,
// walks the session through onboarding and sign-out, and prints each step.
//
// Usage:
//
//	SHOPFLOW_API_URL=http://localhost:5000/api \
//	SHOPFLOW_EMAIL=owner@shop.example SHOPFLOW_PASSWORD=secret \
//	go run ./cmd/sessioncheck
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/shopflow/shopflow-client/client"
	"github.com/shopflow/shopflow-client/config"
	"github.com/shopflow/shopflow-client/guard"
	"github.com/shopflow/shopflow-client/logger"
	"github.com/shopflow/shopflow-client/services"
	"github.com/shopflow/shopflow-client/session"
	"github.com/shopflow/shopflow-client/store"
	"github.com/shopflow/shopflow-client/types"
)

func main() {
	_ = godotenv.Load()
	logger.InitLogger()
	defer logger.Close()

	email := os.Getenv("SHOPFLOW_EMAIL")
	password := os.Getenv("SHOPFLOW_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("SHOPFLOW_EMAIL and SHOPFLOW_PASSWORD are required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st := store.NewMemoryStore()
	defer st.Close()
	sessions := session.NewManager(st)
	api := client.New(cfg.API, sessions.Token)
	auth := services.NewAuthService(api, sessions)
	routeGuard := guard.New(sessions)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result := routeGuard.Check(ctx, types.RouteDashboard, types.IntentDefault)
	fmt.Printf("before login: decision=%s\n", result.Decision)

	route, err := auth.Login(ctx, email, password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	fmt.Printf("login ok, next route: %s\n", route)

	result = routeGuard.Check(ctx, types.RouteDashboard, types.IntentDefault)
	fmt.Printf("after login: decision=%s mode=%s\n", result.Decision, result.Session.Mode)

	profile, err := api.Me(ctx)
	if err != nil {
		fmt.Printf("profile check failed: %v\n", err)
	} else {
		fmt.Printf("profile: id=%s category=%q\n", profile.ID, profile.EffectiveCategory())
	}

	if err := auth.Logout(ctx); err != nil {
		log.Fatalf("Logout failed: %v", err)
	}

	result = routeGuard.Check(ctx, types.RouteDashboard, types.IntentDefault)
	fmt.Printf("after logout: decision=%s\n", result.Decision)
}
