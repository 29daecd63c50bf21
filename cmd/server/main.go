// Server entrypoint: loads configuration, opens the backing stores,
// wires repositories, the ownership gate and the mutation engine into
// the HTTP handlers, and runs the API server next to the notification
// worker until a termination signal arrives.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/stayora/hotel-booking-backend/internal/authz"
	"github.com/stayora/hotel-booking-backend/internal/blob"
	"github.com/stayora/hotel-booking-backend/internal/config"
	"github.com/stayora/hotel-booking-backend/internal/database"
	"github.com/stayora/hotel-booking-backend/internal/engine"
	"github.com/stayora/hotel-booking-backend/internal/handler"
	"github.com/stayora/hotel-booking-backend/internal/observability"
	"github.com/stayora/hotel-booking-backend/internal/queue"
	"github.com/stayora/hotel-booking-backend/internal/repository"
	"github.com/stayora/hotel-booking-backend/internal/router"
	queue_publisher "github.com/stayora/hotel-booking-backend/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal().Err(err).Msg("database open failed")
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	blobs, err := blob.OpenFromEnv(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("blob store open failed")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	hotels := repository.NewHotelRepo(db)
	bookings := repository.NewBookingRepo(db)
	reviews := repository.NewReviewRepo(db)
	notifications := repository.NewNotificationRepo(db)

	gate := authz.NewGate(authz.Resolvers{Hotels: hotels, Bookings: bookings, Reviews: reviews})
	eng := engine.New(db, logger)
	reconciler := engine.Reconciler{Delay: 50 * time.Millisecond}
	dispatch := queue_publisher.AsyncDispatcher{}

	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(users, tokens, cfg),
		PublicHotels:  handler.NewPublicHotelHandler(hotels, reviews),
		OwnerHotels:   handler.NewOwnerHotelHandler(hotels, eng, blobs, gate, dispatch),
		AdminHotels:   handler.NewAdminHotelHandler(hotels, eng, dispatch),
		AdminUsers:    handler.NewAdminUserHandler(users, tokens, reconciler, dispatch),
		Bookings:      handler.NewBookingHandler(bookings, hotels, eng, gate, dispatch),
		Reviews:       handler.NewReviewHandler(reviews, bookings, gate),
		Notifications: handler.NewNotificationHandler(notifications),
	}

	reg := observability.InitRegistry()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	router.Register(e, db, rdb, reg, cfg.JWTSecret, handlers)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("port", cfg.Port).Msg("api server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	// The worker drains lifecycle events into notification rows. It
	// reconnects on broker failures and only gives up when ctx ends.
	g.Go(func() error {
		if err := queue.StartNotificationWorker(ctx, notifications, logger); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if cfg.MetricsAddr != "" {
		metricsSrv := &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}
		g.Go(func() error {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listener up")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
	logger.Info().Msg("shutdown complete")
}
