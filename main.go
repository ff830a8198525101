// Package main is the scribe server entry point.
//
// main only wires things together: config, database, repositories, the
// websocket hub, services, handlers and routes. There are no globals; every
// dependency is built here and passed down.
package main

import (
	"context"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/akinalp/scribe/config"
	"github.com/akinalp/scribe/database"
	"github.com/akinalp/scribe/ws"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] scribe server starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	migrations, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Fatalf("[main] failed to open embedded migrations: %v", err)
	}

	db, err := database.New(cfg.Database.Path, migrations)
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	repos := initRepositories(db.Conn)

	hub := ws.NewHub()

	svcs, limiters := initServices(db.Conn, repos, hub, cfg)
	defer limiters.Login.Close()
	defer limiters.Message.Close()
	defer svcs.Conversation.Close()

	registerHubCallbacks(hub, svcs.Conversation)

	if err := svcs.Auth.EnsureAdmin(context.Background(), cfg.Admin); err != nil {
		log.Fatalf("[main] failed to seed admin account: %v", err)
	}

	svcs.SessionJanitor.Start()
	defer svcs.SessionJanitor.Stop()

	h := initHandlers(svcs, repos, limiters, hub, cfg)

	mux := http.NewServeMux()
	initRoutes(mux, h, svcs.Auth, repos.User)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      corsHandler.Handler(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Close websocket connections first so clients see the close frame, then
	// stop accepting HTTP requests and drain in-flight ones.
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}
