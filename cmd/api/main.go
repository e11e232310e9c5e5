package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/prevencar/inspection-system/internal/api"
	"github.com/prevencar/inspection-system/internal/core/ports"
	"github.com/prevencar/inspection-system/internal/core/service"
	"github.com/prevencar/inspection-system/internal/infrastructure/cep"
	"github.com/prevencar/inspection-system/internal/infrastructure/config"
	"github.com/prevencar/inspection-system/internal/infrastructure/db/localstore"
	"github.com/prevencar/inspection-system/internal/infrastructure/db/mongo"
	"github.com/prevencar/inspection-system/internal/infrastructure/db/redis"
	"github.com/prevencar/inspection-system/internal/infrastructure/queue"
	"github.com/prevencar/inspection-system/pkg/logger"
)

// repositories groups every persistence port so both storage drivers can be
// wired through the same code path.
type repositories struct {
	inspections ports.InspectionRepository
	services    ports.ServiceRepository
	indications ports.IndicationRepository
	closures    ports.ClosureRepository
	users       ports.UserRepository
	resets      ports.PasswordResetRepository
	audit       ports.AuditRepository
}

func main() {
	if err := godotenv.Load(); err != nil {
		// Variables may come from the environment itself (Docker, systemd).
		slog.Warn(".env file not found, reading configuration from environment")
	}

	cfg := config.Load(slog.Default())

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})
	log.Info().Str("env", cfg.Env).Str("storage", cfg.Storage).Msg("starting inspection API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	var (
		repos   repositories
		mongoDB *gomongo.Database
	)
	switch cfg.Storage {
	case config.StorageLocalstore:
		store, err := localstore.Open(cfg.DataDir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("failed to open localstore")
		}
		repos = repositories{
			inspections: store.Inspections(),
			services:    store.Services(),
			indications: store.Indications(),
			closures:    store.Closures(),
			users:       store.Users(),
			resets:      store.PasswordResets(),
			audit:       store.Audit(),
		}
		log.Info().Str("dir", cfg.DataDir).Msg("localstore ready")

	default:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongo")
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}()
		mongoDB = db

		inspectionRepo := mongo.NewInspectionRepository(db)
		closureRepo := mongo.NewClosureRepository(db)
		userRepo := mongo.NewUserRepository(db)
		resetRepo := mongo.NewPasswordResetRepository(db)
		auditRepo := mongo.NewAuditRepository(db)
		repos = repositories{
			inspections: inspectionRepo,
			services:    mongo.NewServiceRepository(db),
			indications: mongo.NewIndicationRepository(db),
			closures:    closureRepo,
			users:       userRepo,
			resets:      resetRepo,
			audit:       auditRepo,
		}

		for _, ensure := range []func(context.Context) error{
			inspectionRepo.EnsureIndexes,
			closureRepo.EnsureIndexes,
			userRepo.EnsureIndexes,
			resetRepo.EnsureIndexes,
			auditRepo.EnsureIndexes,
		} {
			if err := ensure(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to ensure indexes")
			}
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo ready")
	}

	// --- Closure-lock cache ---
	var (
		rdb       *goredis.Client
		lockCache service.MonthLockCache = service.NopMonthLockCache{}
	)
	if cfg.Redis.Enabled {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, closure lock cache disabled")
		} else {
			defer client.Close()
			rdb = client
			lockCache = redis.NewMonthLockCache(client)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("redis ready")
		}
	}

	// --- First-boot seed ---
	seeder := service.NewSeeder(repos.users, repos.services, repos.indications, log)
	if err := seeder.Run(ctx, service.SeedAdmin{
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}

	// --- Async audit writer ---
	dispatcher := queue.NewDispatcher(0, repos.audit, log)
	dispatcher.Start(ctx)

	// --- Services ---
	closureService := service.NewClosureService(repos.closures, repos.inspections, lockCache, log)
	inspectionService := service.NewInspectionService(
		repos.inspections, repos.services, repos.indications, closureService, dispatcher, log,
	)
	catalogService := service.NewCatalogService(repos.services, repos.indications, log)
	authService := service.NewAuthService(repos.users, repos.resets, cfg.JWTSecret, 24*time.Hour, log)

	cepClient := cep.NewClient(cfg.ViaCEP.BaseURL, time.Duration(cfg.ViaCEP.TimeoutSeconds)*time.Second, log)

	// --- HTTP server ---
	e := api.NewRouter(api.Deps{
		Inspections: inspectionService,
		Closures:    closureService,
		Catalog:     catalogService,
		Auth:        authService,
		Audit:       repos.audit,
		CEP:         cepClient,
		JWTSecret:   cfg.JWTSecret,
		Mongo:       mongoDB,
		Redis:       rdb,
		Logger:      log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("listening")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
}
