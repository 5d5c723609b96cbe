package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"quickDeliver/internal/backend"
	"quickDeliver/internal/cache"
	"quickDeliver/internal/config"
	"quickDeliver/internal/db"
	"quickDeliver/internal/events"
	grpcserver "quickDeliver/internal/grpc"
	"quickDeliver/internal/httpapi"
	"quickDeliver/internal/logging"
	"quickDeliver/internal/realtime"
	"quickDeliver/repository"
)

func main() {
	var (
		seed         bool
		promoteAdmin string
		strict       bool
	)
	cmd := &cobra.Command{
		Use:           "quickdeliver-server",
		Short:         "QuickDeliver backend: gRPC and HTTP APIs with live order updates",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), seed, promoteAdmin, strict)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "load the demo catalog when the restaurant table is empty")
	cmd.Flags().StringVar(&promoteAdmin, "promote-admin", "", "grant the admin role to this account's email and exit")
	cmd.Flags().BoolVar(&strict, "strict-config", false, "require auth.jwt_secret instead of using the development secret")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, seed bool, promoteAdmin string, strict bool) error {
	load := config.LoadWithDefaults
	if strict {
		load = config.Load
	}
	cfg, err := load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logging.Init(logging.Options{
		Component: "server",
		File:      cfg.Log.File,
		Level:     cfg.Log.Level,
		Stdout:    cfg.Log.Stdout,
	})
	log.Info("configuration loaded", "config", cfg.String())

	d, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Error("close db", "err", err)
		}
	}()

	hub := realtime.NewHub(logging.New("realtime"))
	opts := backend.Options{
		Users:       repository.NewUserRepository(d),
		Restaurants: repository.NewRestaurantRepository(d),
		Orders:      repository.NewOrderRepository(d),
		Hub:         hub,
		JWTSecret:   cfg.Auth.JWTSecret,
		TokenTTL:    cfg.Auth.TokenTTL,
		Logger:      logging.New("backend"),
		Idempotency: cache.NewMemoryIdempotencyStore(cfg.Redis.IdempotencyTTL),
	}

	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		opts.Idempotency = cache.NewRedisIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
		log.Info("redis idempotency store enabled", "addr", cfg.Redis.Addr)
	}

	if cfg.Rabbit.URL != "" {
		bridge, err := realtime.DialRabbit(cfg.Rabbit.URL, cfg.Rabbit.Exchange, hub, logging.New("rabbitmq"))
		if err != nil {
			return err
		}
		defer bridge.Close()
		if err := bridge.Start(ctx); err != nil {
			return err
		}
		opts.Publisher = bridge
		log.Info("rabbitmq fan-out enabled", "exchange", cfg.Rabbit.Exchange)
	}

	svc, err := backend.New(opts)
	if err != nil {
		return err
	}

	if promoteAdmin != "" {
		if err := svc.PromoteAdmin(ctx, promoteAdmin); err != nil {
			return err
		}
		log.Info("admin role granted", "email", promoteAdmin)
		return nil
	}
	if seed {
		n, err := svc.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		log.Info("catalog seeded", "restaurants", n)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		group, err := events.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
		if err != nil {
			return fmt.Errorf("kafka consumer group: %w", err)
		}
		consumer := events.NewConsumer(group, []string{cfg.Kafka.Topic}, svc, logging.New("kafka"))
		defer consumer.Close()
		go func() {
			if err := consumer.Start(ctx); err != nil {
				log.Error("kafka consumer stopped", "err", err)
			}
		}()
		log.Info("kafka consumer started", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.GroupID)
	}

	stopGRPC, err := grpcserver.StartGRPC(cfg, svc, logging.New("grpc"))
	if err != nil {
		return fmt.Errorf("start grpc: %w", err)
	}
	log.Info("gRPC server listening", "addr", cfg.GRPC.Address)

	var stopHTTP func(context.Context) error
	if cfg.HTTP.Address != "" {
		stopHTTP, err = httpapi.StartHTTP(cfg, svc, logging.New("http"))
		if err != nil {
			return fmt.Errorf("start http: %w", err)
		}
		log.Info("HTTP server listening", "addr", cfg.HTTP.Address)
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if stopHTTP != nil {
		if err := stopHTTP(shutdownCtx); err != nil {
			log.Error("http shutdown", "err", err)
		}
	}
	if err := stopGRPC(shutdownCtx); err != nil {
		log.Error("grpc shutdown", "err", err)
	}
	return nil
}
