package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"sternhalma/internal/auth"
	"sternhalma/internal/config"
	"sternhalma/internal/handlers"
	"sternhalma/internal/store"
	"sternhalma/internal/timer"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	memStore := store.NewMemoryStore()
	authService := auth.NewService(cfg.Server.JWTSecret, cfg.Game.TokenTTL)
	timerService := timer.NewService(memStore, cfg.Game.MoveDeadline)

	h := handlers.New(memStore, authService, timerService, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reaper := store.NewReaper(memStore, cfg.Game.RoomTTL, cfg.Game.PlayerTTL)
	go reaper.Run(ctx)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:    addr,
		Handler: h.SetupRouter(),
		// Write and idle timeouts stay at zero so SSE streams are not
		// cut off by the server.
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server starting on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-done
	log.Println("server shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
