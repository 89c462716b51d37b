package main

import (
	"context"
	"log"
	"time"

	"babitune/internal/activities"
	"babitune/internal/config"
	"babitune/internal/storage"
	"babitune/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)

	// The worker can run without Postgres; run and trial rows then stay
	// unrecorded and only the file artifacts are written.
	var db *storage.DB
	if cfg.PostgresURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		db, err = storage.NewDB(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
	}
	a, err := activities.New(cfg, db)
	if err != nil {
		log.Fatal(err)
	}
	activities.Register(w, a)

	log.Printf("babitune worker listening on %s queue=%s task=%s size=%s", cfg.TemporalAddress, cfg.TemporalTaskQueue, cfg.Task, cfg.DatasetSize)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal(err)
	}
}
