// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/whodunit-live/whodunit/internal/archive"
	"github.com/whodunit-live/whodunit/internal/auth"
	"github.com/whodunit-live/whodunit/internal/catalog"
	"github.com/whodunit-live/whodunit/internal/database"
	"github.com/whodunit-live/whodunit/internal/game"
	"github.com/whodunit-live/whodunit/internal/handlers"
	"github.com/whodunit-live/whodunit/internal/middleware"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	if os.Getenv("WHODUNIT_DEBUG") != "" {
		logger.SetLevel(logrus.DebugLevel)
	}

	// File-backed signing keys keep tokens valid across restarts; without
	// them every boot mints a fresh ephemeral pair.
	privKey := os.Getenv("AUTH_PRIVATE_KEY_FILE")
	pubKey := os.Getenv("AUTH_PUBLIC_KEY_FILE")
	if privKey != "" && pubKey != "" {
		if err := auth.InitFromPath(privKey, pubKey); err != nil {
			logger.Fatalf("failed to load signing keys: %v", err)
		}
	} else {
		auth.Init()
	}

	// Postgres backs registered accounts; the service runs guest-only
	// without it.
	if os.Getenv("PG_HOST") != "" {
		if err := database.Connect(context.Background()); err != nil {
			logger.Warnf("account store unavailable, running guest-only: %v", err)
		}
	}

	// Redis backs the fire-and-forget archive; gameplay works without it.
	var notifier archive.Notifier = archive.Nop{}
	if os.Getenv("REDIS_ADDR") != "" {
		rdb, err := archive.ConnectRedis(logger)
		if err != nil {
			logger.Warnf("archive unavailable: %v", err)
		} else {
			notifier = rdb
		}
	}

	cat := catalog.Load(os.Getenv("WHODUNIT_CONTENT_DIR"), logger)

	gs := handlers.NewGameServer(logger, cat, notifier)
	gs.CaseSelect = game.ParseCaseSelect(os.Getenv("WHODUNIT_CASE_SELECT"))

	if maxAge := os.Getenv("WHODUNIT_ROOM_MAX_AGE"); maxAge != "" {
		if d, err := time.ParseDuration(maxAge); err == nil {
			gs.StartJanitor(time.Minute, d)
		} else {
			logger.Warnf("invalid WHODUNIT_ROOM_MAX_AGE %q: %v", maxAge, err)
		}
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", handlers.HealthzHandler)
	mux.HandleFunc("/user/create", handlers.CreateUserHandler)
	mux.HandleFunc("/user/login", handlers.LoginHandler)

	mux.Handle("/rooms", middleware.LogMiddleware(logger)(handlers.ListRoomsHandler(gs)))
	mux.Handle("/ws", middleware.LogMiddleware(logger)(handlers.WSHandler(logger, gs)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("whodunit service running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
