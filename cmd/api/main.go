package main

import (
	"log"
	"net/http"

	"babitune/internal/api"
	"babitune/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	h := api.NewServer(cfg)
	log.Printf("babitune api listening on %s task=%s size=%s", cfg.APIAddr, cfg.Task, cfg.DatasetSize)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
