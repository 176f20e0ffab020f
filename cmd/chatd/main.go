package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/oceanobs/floatchat/internal/api"
	"github.com/oceanobs/floatchat/internal/assistant"
	"github.com/oceanobs/floatchat/internal/config"
)

func main() {
	cfg, err := config.LoadChat()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	agent, err := assistant.NewSQLAgent(ctx, cfg.DatabaseURL, cfg.GoogleAPIKey, cfg.Model)
	if err != nil {
		log.Fatalf("agent setup error: %v", err)
	}
	defer agent.Close()

	srv := api.New(cfg, agent, agent)
	log.Printf("chatd listening on %s", cfg.ListenAddr())

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
