package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridehail-backend/internal/config"
	"github.com/chachabrian/ridehail-backend/internal/database"
	"github.com/chachabrian/ridehail-backend/internal/handlers"
	"github.com/chachabrian/ridehail-backend/internal/logging"
	"github.com/chachabrian/ridehail-backend/internal/middleware"
	"github.com/chachabrian/ridehail-backend/internal/services"
	"github.com/chachabrian/ridehail-backend/internal/store/memstore"
	"github.com/chachabrian/ridehail-backend/pkg/utils"
)

// stores groups the persistence interfaces one backend provides.
type stores interface {
	services.UserStore
	services.DriverStore
	services.RideStore
	services.FareConfigStore
	services.DeviceTokenStore
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store stores
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn("using in-memory store, data is lost on restart")
		store = memstore.New()
	default:
		db, err := database.InitDB(cfg.DB)
		if err != nil {
			return err
		}
		if err := database.RunMigrations(db); err != nil {
			return err
		}
		store = database.NewStore(db)
	}

	tokens, err := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}

	rdb, err := services.InitRedis(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	var fareCache services.FareCache
	if rdb != nil {
		defer rdb.Close()
		fareCache = services.NewFareConfigCache(rdb, cfg.FareCacheTTL)
		log.Info("redis connected, fare cache and ride:updates enabled")
	} else {
		log.Warn("REDIS_URL not set, fare cache and cross-instance ride events disabled")
	}

	var locations *services.LocationList
	s3opts := services.S3Options{
		Region:          cfg.S3.Region,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Bucket:          cfg.S3.Bucket,
		Key:             cfg.S3.LocationsKey,
	}
	if s3opts.Complete() {
		if locations, err = services.NewS3LocationList(s3opts); err != nil {
			return err
		}
	} else {
		locations = services.NewFileLocationList(cfg.LocationsFile)
	}
	log.Info("location list ready", "backend", locations.Backend())

	fcm, err := services.InitFirebase(ctx, cfg.FirebaseServiceAccountPath)
	if err != nil {
		log.Warn("firebase initialization failed, push notifications disabled", "error", err)
	}
	pusher := services.NewPusher(fcm, store, log)

	hub := services.NewHub(log)
	go hub.Run(ctx)

	// With Redis every instance publishes and relays ride:updates to its
	// own sockets; without it events go straight to the local hub.
	notifiers := services.Notifiers{pusher}
	if rdb != nil {
		events := services.NewRedisRideEvents(rdb, log)
		notifiers = append(notifiers, events)
		go func() {
			if err := events.RelayRideEvents(ctx, hub); err != nil {
				log.Error("ride event relay stopped", "error", err)
			}
		}()
	} else {
		notifiers = append(notifiers, hub)
	}

	fares := services.NewFareService(store, fareCache, log)
	auth := services.NewAuthService(store, store, tokens, log)
	rides := services.NewRideService(store, store, store, fares, notifiers, log)
	admin := services.NewAdminService(store, store, locations, log)
	profiles := services.NewProfileService(store, store, log)
	resolver := services.NewPrincipalResolver(store, store, tokens, log)

	if err := auth.EnsureAdmin(ctx, services.AdminSeed{
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}); err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(log), middleware.Metrics())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	r.Use(cors.New(corsConfig))

	handlers.RegisterRoutes(r, handlers.Deps{
		Resolver: resolver,
		Auth:     auth,
		Rides:    rides,
		Fares:    fares,
		Admin:    admin,
		Profiles: profiles,
		Pusher:   pusher,
		Hub:      hub,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
