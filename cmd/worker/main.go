package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/AyanAhmedKhan/scholar/config"
	"github.com/AyanAhmedKhan/scholar/pdfmerge"
	"github.com/AyanAhmedKhan/scholar/repository"
	"github.com/AyanAhmedKhan/scholar/storage"
	"github.com/AyanAhmedKhan/scholar/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	store := repository.New(db)
	files := storage.NewMaterializer(cfg.MediaDir)
	merger := pdfmerge.NewMerger(cfg.MediaDir)

	server := asynq.NewServer(asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
	}, asynq.Config{
		Concurrency: 4,
	})
	processor := worker.NewProcessor(store, merger, files)
	mux := processor.Handler()

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	log.Printf("Render worker starting (redis %s)", cfg.RedisAddr)
	if err := server.Run(mux); err != nil {
		log.Printf("worker stopped: %v", err)
		os.Exit(1)
	}
}
