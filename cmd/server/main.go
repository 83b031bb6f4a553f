package main

import (
	"context"
	"log"
	"rental-marketplace/internal/intake"
	"rental-marketplace/internal/listing"
	"rental-marketplace/internal/persist"
	"rental-marketplace/internal/server"
	"rental-marketplace/internal/session"
	"rental-marketplace/internal/storage"
	"time"

	"github.com/caarlos0/env/v6"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// appConfig defines application level fields parsed from environment variables
type appConfig struct {
	Environment    string `env:"APP_ENV" envDefault:"development"`
	SessionBackend string `env:"SESSION_BACKEND" envDefault:"file"`
	SessionDir     string `env:"SESSION_DIR" envDefault:"./data/session"`
	Seed           bool   `env:"SEED" envDefault:"true"`
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg.Build(zap.Fields(zap.String("environment", environment)))
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build(zap.Fields(zap.String("environment", environment)))
}

// openPersister builds the session persister selected by backend and the cleanup to run after shutdown
func openPersister(ctx context.Context, sugar *zap.SugaredLogger, app appConfig) (session.Persister, func(), error) {
	switch app.SessionBackend {
	case "postgres":
		cfg := persist.PostgresConfig{}
		if err := env.Parse(&cfg); err != nil {
			return nil, nil, err
		}

		pg, err := persist.NewPostgres(ctx, sugar, cfg, persist.ConnectionTimeout(30*time.Second), persist.MaxConns(4))
		if err != nil {
			return nil, nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return pg, pg.Close, nil
	case "redis":
		cfg := persist.RedisConfig{}
		if err := env.Parse(&cfg); err != nil {
			return nil, nil, err
		}

		rdb := persist.NewRedis(sugar, cfg)
		if err := rdb.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		return rdb, func() {
			if err := rdb.Close(); err != nil {
				sugar.Errorf("Cannot close Redis client: %v", err)
			}
		}, nil
	default:
		f, err := persist.NewFile(sugar, app.SessionDir)
		if err != nil {
			return nil, nil, err
		}
		return f, func() {}, nil
	}
}

func main() {
	app := appConfig{}
	if err := env.Parse(&app); err != nil {
		log.Fatalf("Cannot parse env config: %v", err)
	}

	logger, err := newLogger(app.Environment)
	if err != nil {
		log.Fatalf("Cannot build logger: %v", err)
	}
	defer logger.Sync()

	sugar := logger.Sugar()
	sugar.Info("Application is starting")

	cfg := server.EnvConfig{}
	if err := env.Parse(&cfg); err != nil {
		sugar.Fatalf("Cannot parse env config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	persister, closePersister, err := openPersister(ctx, sugar, app)
	if err != nil {
		sugar.Fatalf("Cannot open %s session backend: %v", app.SessionBackend, err)
	}

	gate, err := session.Open(ctx, sugar, persister)
	if err != nil {
		sugar.Fatalf("Cannot restore session: %v", err)
	}

	var storeOpts []storage.Option
	if app.Seed {
		storeOpts = append(storeOpts, storage.WithSeed())
	}
	store := storage.New(sugar, storeOpts...)

	serverOpts := []server.Option{
		server.WithEnvConfig(cfg),
		server.ReadTimeout(5 * time.Second),
		server.RegisterAfterShutdown(closePersister),
	}

	srv, err := server.NewServer(sugar, server.Deps{
		Store:   store,
		Listing: listing.NewService(sugar, store),
		Gate:    gate,
		Desk:    intake.NewDesk(sugar),
	}, serverOpts...)
	if err != nil {
		sugar.Fatalf("Cannot create Server instance: %v", err)
	}

	if err := srv.Start(); err != nil {
		sugar.Fatalf("Cannot start http srv: %v", err)
	}
}
