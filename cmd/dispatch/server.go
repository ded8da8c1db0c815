package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/antonminaichev/darkstore-dispatch/internal/dispatch"
	"github.com/antonminaichev/darkstore-dispatch/internal/events"
	"github.com/antonminaichev/darkstore-dispatch/internal/geocode"
	"github.com/antonminaichev/darkstore-dispatch/internal/hub"
	"github.com/antonminaichev/darkstore-dispatch/internal/logger"
	"github.com/antonminaichev/darkstore-dispatch/internal/metrics"
	"github.com/antonminaichev/darkstore-dispatch/internal/order"
	"github.com/antonminaichev/darkstore-dispatch/internal/partner"
	"github.com/antonminaichev/darkstore-dispatch/internal/router"
	"github.com/antonminaichev/darkstore-dispatch/internal/storage"
	"github.com/antonminaichev/darkstore-dispatch/internal/storage/postgres"
	"github.com/antonminaichev/darkstore-dispatch/internal/user"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}

func run() error {
	cfg, err := NewConfig()
	if err != nil {
		log.Fatal(err)
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var store storage.Storage
	store, err = postgres.NewPostgresStorage(cfg.DatabaseConnection)
	if err != nil {
		log.Fatalf("Failed to initialize Postgres storage: %v", err)
	}
	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	defer cancelPing()
	if err := store.Ping(pingCtx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Warning: failed to close storage: %v", err)
		}
	}()

	m := metrics.New(prometheus.DefaultRegisterer)
	broker := events.NewBroker()

	geocoder := &geocode.Client{
		Client:  &http.Client{Timeout: cfg.GeocoderTimeout},
		BaseURL: cfg.GeocoderAddress,
	}

	userSvc := user.NewService(store, []byte(cfg.JWTSecret), cfg.JWTTTL)
	orderSvc := order.NewService(store, store, geocoder, broker, m, cfg.CancelWindow, cfg.PromiseMinutes)
	dispatchSvc := dispatch.NewService(store, store, dispatch.FirstRegistered{}, broker, m)
	partnerSvc := partner.NewService(store)
	hubSvc := hub.NewService(store)

	h := router.Handlers{
		User:     user.NewHandler(userSvc),
		Order:    order.NewHandler(orderSvc),
		Dispatch: dispatch.NewHandler(dispatchSvc),
		Partner:  partner.NewHandler(partnerSvc),
		Hub:      hub.NewHandler(hubSvc),
		Events:   events.NewWSHandler(broker),
	}
	r := router.NewRouter(h, []byte(cfg.JWTSecret), store)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go dispatch.SweepLoop(ctx, dispatchSvc, cfg.SweepWorkers, cfg.SweepInterval)

	go func() {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
	return nil
}
