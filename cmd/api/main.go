package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"ouvidoria.app/internal/auth"
	"ouvidoria.app/internal/httpapi"
	"ouvidoria.app/internal/obs"
	"ouvidoria.app/internal/registry"
	"ouvidoria.app/internal/thread"
	"ouvidoria.app/internal/token"
)

var version = "1.0.0"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("OUVIDORIA_COMMIT"))

	secret := os.Getenv("OUVIDORIA_JWT_SECRET")
	if secret == "" {
		log.Fatal("OUVIDORIA_JWT_SECRET is not set")
	}
	pepper := os.Getenv("OUVIDORIA_PEPPER")
	if pepper == "" {
		log.Fatal("OUVIDORIA_PEPPER is not set")
	}
	addr := os.Getenv("OUVIDORIA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	tokens, err := token.NewService(secret)
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	// Postgres when a DSN is configured, in-memory stores otherwise (demo
	// mode: data does not survive a restart).
	var (
		db           *sql.DB
		users        auth.UserStore
		competencias auth.CompetenciaStore
		threads      thread.Store
		messages     thread.MessageStore
	)
	if dsn := os.Getenv("OUVIDORIA_PG_DSN"); dsn != "" {
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)

		users = auth.NewPGUserStore(db)
		competencias = auth.NewPGCompetenciaStore(db)
		threads = thread.NewPGStore(db)
		messages = thread.NewPGMessageStore(db)
	} else {
		log.Print("OUVIDORIA_PG_DSN not set, using in-memory stores")
		users = auth.NewInMemoryUserStore()
		demo := auth.NewInMemoryCompetenciaStore()
		seeded := demo.Put(auth.Competencia{Name: "Secretaria de Obras"})
		log.Printf("demo competencia %s (%s)", seeded.Name, seeded.ID)
		competencias = demo
		threads = thread.NewInMemoryStore()
		messages = thread.NewInMemoryMessageStore()
	}

	authenticator, err := auth.NewAuthenticator(users, tokens, pepper)
	if err != nil {
		log.Fatalf("authenticator: %v", err)
	}

	reg := registry.New()
	api := httpapi.New(httpapi.Deps{
		Ready:        httpapi.ReadyProbe{DB: db},
		Version:      version,
		Auth:         authenticator,
		Gateway:      httpapi.NewSessionGateway(tokens),
		Threads:      thread.NewService(threads, messages),
		Broadcaster:  thread.NewBroadcaster(messages, reg),
		Registry:     reg,
		Competencias: competencias,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// Long-lived WebSocket connections share this server; no
		// WriteTimeout, or sockets would be cut mid-conversation.
		IdleTimeout: 60 * time.Second,
	}

	log.Printf("Starting ouvidoria-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	obs.SetReady(true)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	obs.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
