package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/barbearia-premium/engine/internal/config"
	"github.com/barbearia-premium/engine/internal/events"
	kafkax "github.com/barbearia-premium/engine/internal/kafka"
	"github.com/barbearia-premium/engine/internal/notifier"
	"github.com/barbearia-premium/engine/internal/redisx"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notifier.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-notifier",
	}

	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), 4)

	topics := []string{
		events.TopicAppointmentBooked,
		events.TopicOrderCreated,
		events.TopicOrderPaid,
		events.TopicOrderCancelled,
		events.TopicStockLow,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, topic := range topics {
		topic := topic
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers)
		g.Go(func() error {
			log.Printf("notifier consumer started: group=%s topic=%s workers=%d", group, topic, workers)
			return cons.Start(gctx, svc.HandleEvent)
		})
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Println("shutting down notifier...")
		cancel()
	case <-gctx.Done():
	}

	if err := g.Wait(); err != nil {
		log.Printf("consumer exit: %v", err)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
