package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/google/uuid"
	"github.com/hamidoujand/user-service/app/services/users/api/errs"
	"github.com/hamidoujand/user-service/app/services/users/api/handlers"
	"github.com/hamidoujand/user-service/app/services/users/api/handlers/checkgrp"
	"github.com/hamidoujand/user-service/business/broker/rabbitmq"
	"github.com/hamidoujand/user-service/business/database/postgres"
	"github.com/hamidoujand/user-service/business/domain/user"
	userPostgresRepo "github.com/hamidoujand/user-service/business/domain/user/store/postgres"
	"github.com/hamidoujand/user-service/business/domain/user/store/usercache"
	"github.com/hamidoujand/user-service/foundation/hash"
	"github.com/hamidoujand/user-service/foundation/logger"
	"github.com/hamidoujand/user-service/foundation/web"
	"github.com/hamidoujand/user-service/foundation/worker"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// will be changed from build tags
var build = "0.0.1"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "err: %s", err)
		os.Exit(1)
	}
}

func run() error {
	//==========================================================================
	//setup configurations
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	configs := struct {
		API struct {
			Host            string        `conf:"default:0.0.0.0:8000"`
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			RequestTimeout  time.Duration `conf:"default:8s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			Environment     string        `conf:"default:development"`
		}

		DB struct {
			User            string        `conf:"default:postgres"`
			Password        string        `conf:"default:password,mask"`
			Host            string        `conf:"default:localhost:5432"`
			Name            string        `conf:"default:postgres"`
			MaxIdleConns    int           `conf:"default:10"`
			MaxOpenConns    int           `conf:"default:10"`
			MaxIdleConnTime time.Duration `conf:"default:5m"`
			MaxConnLifeTime time.Duration `conf:"default:10m"`
			DisableTLS      bool          `conf:"default:true"`
		}

		Redis struct {
			Enabled  bool          `conf:"default:true"`
			Host     string        `conf:"default:localhost:6379"`
			Password string        `conf:"default:,mask"`
			DBIdx    int           `conf:"default:0"`
			Timeout  time.Duration `conf:"default:5s"`
			CacheTTL time.Duration `conf:"default:5m"`
		}

		Broker struct {
			Enabled  bool   `conf:"default:false"`
			Host     string `conf:"default:localhost:5672"`
			User     string `conf:"default:guest"`
			Password string `conf:"default:guest,mask"`
		}

		Hash struct {
			Cost          int `conf:"default:10"`
			MaxConcurrent int `conf:"default:4"`
		}
	}{}

	prefix := "USERS"
	if help, err := conf.Parse(prefix, &configs); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	//==========================================================================
	//setup logger
	isProd := configs.API.Environment == "production"

	attrs := []slog.Attr{
		{Key: "build", Value: slog.StringValue(build)},
		{Key: "app", Value: slog.StringValue("user-service")},
	}

	reqIdFn := func(ctx context.Context) string {
		id := web.GetRequestId(ctx)
		if id == uuid.Nil {
			return ""
		}
		return id.String()
	}

	logger := logger.NewCustomLogger(os.Stdout, slog.LevelInfo, isProd, reqIdFn, attrs...)

	out, err := conf.String(&configs)
	if err != nil {
		return fmt.Errorf("config to string: %w", err)
	}
	logger.Info("startup", "config", out)

	//==========================================================================
	//validator
	appValidator, err := errs.NewAppValidator()
	if err != nil {
		return fmt.Errorf("creating app validator: %w", err)
	}
	logger.Info("application validator", "status", "successfully initialized")

	//==========================================================================
	//database setup
	logger.Info("database setup", "status", "connecting", "host", configs.DB.Host)
	client, err := postgres.NewClient(postgres.Config{
		User:        configs.DB.User,
		Password:    configs.DB.Password,
		Host:        configs.DB.Host,
		Name:        configs.DB.Name,
		DisableTLS:  configs.DB.DisableTLS,
		MaxIdleConn: configs.DB.MaxIdleConns,
		MaxOpenConn: configs.DB.MaxOpenConns,
		MaxIdleTime: configs.DB.MaxIdleConnTime,
		MaxLifeTime: configs.DB.MaxConnLifeTime,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := client.StatusCheck(ctx); err != nil {
		return fmt.Errorf("status check: %w", err)
	}
	logger.Info("database", "status", "status check ran successfully", "host", configs.DB.Host)

	logger.Info("database", "status", "running migrations", "host", configs.DB.Host)
	if err := client.Migrate(); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("database", "status", "ready to use")

	var storer user.Storer = userPostgresRepo.NewRepository(client)

	checks := map[string]checkgrp.Check{
		"postgres": client.StatusCheck,
	}

	//==========================================================================
	//redis
	if configs.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     configs.Redis.Host,
			Password: configs.Redis.Password,
			DB:       configs.Redis.DBIdx,
		})
		defer redisClient.Close()

		logger.Info("redis", "status", "pinging redis engine")
		ctx, cancel := context.WithTimeout(context.Background(), configs.Redis.Timeout)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		logger.Info("redis", "status", "successfully connected")

		storer = usercache.NewStore(logger, storer, redisClient, configs.Redis.CacheTTL)
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	//==========================================================================
	//broker
	var publisher user.Publisher
	if configs.Broker.Enabled {
		logger.Info("rabbitmq", "status", "connecting", "host", configs.Broker.Host)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		rClient, err := rabbitmq.NewClient(ctx, rabbitmq.Configs{
			Host:     configs.Broker.Host,
			User:     configs.Broker.User,
			Password: configs.Broker.Password,
		})
		if err != nil {
			return fmt.Errorf("rabbitmq client: %w", err)
		}
		defer rClient.Close()

		publisher = rClient
		checks["rabbitmq"] = func(ctx context.Context) error {
			if rClient.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
		logger.Info("rabbitmq", "status", "successfully connected")
	}

	//==========================================================================
	//hashing
	pool, err := worker.New(configs.Hash.MaxConcurrent)
	if err != nil {
		return fmt.Errorf("creating hash pool: %w", err)
	}

	hasher, err := hash.NewBcrypt(configs.Hash.Cost, pool)
	if err != nil {
		return fmt.Errorf("creating hasher: %w", err)
	}

	//==========================================================================
	//services
	usersService, err := user.NewService(user.Config{
		Log:       logger,
		Storer:    storer,
		Hasher:    hasher,
		Publisher: publisher,
	})
	if err != nil {
		return fmt.Errorf("creating users service: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	//==========================================================================
	//server
	serverErrors := make(chan error, 1)
	shutdownCh := make(chan os.Signal, 1)

	signal.Notify(shutdownCh, syscall.SIGTERM, syscall.SIGINT)

	logger.Info("mux", "status", "registering routes to the mux")
	app, err := handlers.RegisterRoutes(handlers.Config{
		Logger:       logger,
		Validator:    appValidator,
		UsersService: usersService,
		Registry:     registry,
		Checks:       checks,

		RequestTimeout: configs.API.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("register routes: %w", err)
	}

	srv := http.Server{
		Addr:         configs.API.Host,
		Handler:      app,
		ReadTimeout:  configs.API.ReadTimeout,
		WriteTimeout: configs.API.WriteTimeout,
		IdleTimeout:  configs.API.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("server", "status", "started", "host", configs.API.Host, "environment", configs.API.Environment)
		serverErrors <- srv.ListenAndServe()
	}()

	//block
	select {
	case serverErr := <-serverErrors:
		return fmt.Errorf("server error: %w", serverErr)
	case signal := <-shutdownCh:
		logger.Info("shutdown", "status", "started", "signal", signal)

		ctx, cancel := context.WithTimeout(context.Background(), configs.API.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			//force shutdown
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		if err := pool.Shutdown(ctx); err != nil {
			return fmt.Errorf("hash pool shutdown: %w", err)
		}

		logger.Info("shutdown", "status", "completed")
	}
	return nil
}
