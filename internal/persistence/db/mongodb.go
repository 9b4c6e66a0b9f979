package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hilthontt/breakout/internal/infrastructure/configs"
	"github.com/hilthontt/breakout/internal/infrastructure/logging"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	BreakoutAuditLogsCollection = "breakout_audit_logs"

	appName           = "breakout-coordinator"
	disconnectTimeout = 10 * time.Second
)

// Mongo holds the client behind the breakout audit log.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func clientOptions(cfg configs.MongoConfig) (*options.ClientOptions, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongodb uri is required")
	}
	if cfg.Database == "" {
		return nil, errors.New("mongodb database is required")
	}
	if cfg.ConnectTimeout <= 0 {
		return nil, fmt.Errorf("mongodb connect timeout must be positive, got %s", cfg.ConnectTimeout)
	}
	if cfg.MaxPoolSize > 0 && cfg.MinPoolSize > cfg.MaxPoolSize {
		return nil, fmt.Errorf("mongodb min pool size %d exceeds max pool size %d", cfg.MinPoolSize, cfg.MaxPoolSize)
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetMinPoolSize(cfg.MinPoolSize).
		// Audit entries are append-only inserts.
		SetRetryWrites(true)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mongodb options: %w", err)
	}
	return opts, nil
}

// Connect dials MongoDB and pings the primary before returning.
func Connect(ctx context.Context, cfg configs.MongoConfig, logger logging.Logger) (*Mongo, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info(logging.MongoDB, logging.Startup, "connected to mongodb", map[logging.ExtraKey]any{
		"database":      cfg.Database,
		"max_pool_size": cfg.MaxPoolSize,
	})

	return &Mongo{client: client, db: client.Database(cfg.Database)}, nil
}

func (m *Mongo) Database() *mongo.Database {
	return m.db
}

// Ping backs the mongodb readiness check.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.PrimaryPreferred())
}

func (m *Mongo) Close(ctx context.Context) error {
	if m == nil || m.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, disconnectTimeout)
	defer cancel()

	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}
