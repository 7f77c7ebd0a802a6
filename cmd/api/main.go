// cmd/api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/flexflow/flexflow/internal/config"
	"github.com/flexflow/flexflow/internal/http/routes"
	"github.com/flexflow/flexflow/internal/jobs"
	"github.com/flexflow/flexflow/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Printf("starting api on :%s", cfg.Port)

	// DB
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()
	st := store.New(pool)

	// Task queue
	emitter := jobs.NewEmitter(cfg.RedisAddr)
	defer func() {
		if err := emitter.Close(); err != nil {
			log.Printf("close emitter: %v", err)
		}
	}()

	// Router / server
	s := routes.New(routes.ServerOptions{
		Store: st,
		Emit:  emitter,
	})
	h := hlog.NewHandler(logger)(s.Router)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: h}
	log.Fatal(srv.ListenAndServe())
}
