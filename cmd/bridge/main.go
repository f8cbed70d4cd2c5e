package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/yasinthaj/lovable-velaris-bridge/internal/api"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/queue"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/scheduler"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/store"
	syncengine "github.com/yasinthaj/lovable-velaris-bridge/internal/sync"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/worker"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		log.Fatal("MYSQL_DSN is required")
	}
	stores, err := store.Open(dsn)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	log.Println("using MySQL store")

	sweeper := syncengine.NewSweeper(stores)

	// RabbitMQ is optional; without it sweeps run in-process
	var qclient queue.Client
	if rabbitURL := os.Getenv("RABBITMQ_URL"); rabbitURL != "" {
		qclient, err = queue.NewRabbitClient(rabbitURL, "velaris-sweep")
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer qclient.Close()

		wk := worker.NewWorker(stores, sweeper, qclient, 4)
		wk.Start(ctx)
	}

	interval := 15 * time.Minute
	if raw := os.Getenv("SYNC_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("invalid SYNC_INTERVAL: %v", err)
		}
		interval = d
	}
	sched := scheduler.New(stores, sweeper, qclient, interval)
	sched.Start(ctx)

	h := api.NewHandler(stores, sweeper)
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: h.Router(),
	}

	go func() {
		log.Printf("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	ctxSh, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxSh)
}
