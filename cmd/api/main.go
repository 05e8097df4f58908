package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/barbearia-premium/engine/internal/booking"
	"github.com/barbearia-premium/engine/internal/cart"
	"github.com/barbearia-premium/engine/internal/catalog"
	"github.com/barbearia-premium/engine/internal/config"
	"github.com/barbearia-premium/engine/internal/events"
	"github.com/barbearia-premium/engine/internal/httpx"
	kafkax "github.com/barbearia-premium/engine/internal/kafka"
	"github.com/barbearia-premium/engine/internal/orders"
	"github.com/barbearia-premium/engine/internal/postgres"
	"github.com/barbearia-premium/engine/internal/redisx"
	"github.com/barbearia-premium/engine/internal/siteconfig"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	settings, err := siteconfig.Load(ctx, db)
	if err != nil {
		log.Fatalf("load settings: %v", err)
	}

	loc, err := time.LoadLocation(settings.GetDefault("timezone", "UTC"))
	if err != nil {
		log.Printf("bad timezone setting, using UTC: %v", err)
		loc = time.UTC
	}
	opening, closing := settings.OpeningHours()
	grid, err := booking.NewGrid(opening, closing, booking.DefaultStep)
	if err != nil {
		log.Fatalf("booking grid: %v", err)
	}

	producers := map[string]*kafkax.Producer{}
	producer := func(topic string) *kafkax.Producer {
		p := kafkax.NewProducer(cfg.KafkaBrokers, topic, 1024)
		p.Start(ctx)
		producers[topic] = p
		return p
	}

	reader := &catalog.Reader{DB: db}
	carts := &cart.Store{RDB: rdb}

	bookingSvc := &booking.Service{
		Store:   &booking.Repo{DB: db},
		Catalog: reader,
		Grid:    grid,
		Loc:     loc,
		Now:     time.Now,
	}
	orderSvc := &orders.Service{
		Store:   &orders.Repo{DB: db},
		Catalog: reader,
		Carts:   carts,
	}

	router := httpx.NewRouter()
	(&httpx.BookingHandler{
		Svc:      bookingSvc,
		Producer: producer(events.TopicAppointmentBooked),
		Service:  cfg.ServiceName,
	}).Register(router)
	(&httpx.OrdersHandler{
		Svc:       orderSvc,
		Carts:     carts,
		Redis:     rdb,
		Created:   producer(events.TopicOrderCreated),
		Paid:      producer(events.TopicOrderPaid),
		Cancelled: producer(events.TopicOrderCancelled),
		StockLow:  producer(events.TopicStockLow),
		Service:   cfg.ServiceName,
	}).Register(router)
	(&httpx.CartHandler{Store: carts, Catalog: reader}).Register(router)
	(&httpx.AdminHandler{Settings: settings}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range producers {
		p.Close()
	}
	cancel()
	for _, p := range producers {
		p.WaitClosed()
	}
}
