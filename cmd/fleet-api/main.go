// README: Entry point; loads config, wires services, starts HTTP server and the allocation scheduler.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"fleet/internal/config"
	httptransport "fleet/internal/http"
	"fleet/internal/infra"
	"fleet/internal/logger"
	"fleet/internal/modules/allocation"
	"fleet/internal/modules/booking"
	"fleet/internal/modules/fleet"
	"fleet/internal/modules/refund"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		zl.Fatal("connect db", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	bookingStore := booking.NewStore(dbPool)
	bookingSvc := booking.NewService(bookingStore)

	fleetStore := fleet.NewStore(dbPool)
	fleetSvc := fleet.NewService(fleetStore, bookingStore)

	refundSvc := refund.NewService(bookingStore, zl)

	lockStore := allocation.NewLockStore(redisClient)
	allocationSvc := allocation.NewService(bookingStore, fleetStore, lockStore, cfg.Scheduler, zl)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Booking:    bookingSvc,
		Allocation: allocationSvc,
		Fleet:      fleetSvc,
		Refund:     refundSvc,
		Log:        zl,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go allocationSvc.RunScheduler(ctx)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}
