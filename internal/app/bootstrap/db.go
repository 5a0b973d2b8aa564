// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/ccbportal/internal/app/console"
	"github.com/dalemusser/ccbportal/internal/app/portalclient"
	"github.com/dalemusser/ccbportal/internal/app/system/indexes"
	"github.com/dalemusser/ccbportal/internal/app/system/timeouts"
	"github.com/dalemusser/ccbportal/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and prepares the other back ends: image
// storage and the console registry.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	cctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	images, err := NewImageStore(appCfg)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("image storage: %w", err)
	}

	consoles := NewConsoleRegistry(appCfg, logger)

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		Images:        images,
		Consoles:      consoles,
		Sweeper:       workers.NewConsoleSweeper(consoles, logger, appCfg.ConsoleSweepInterval, appCfg.ConsoleIdleTimeout),
	}, nil
}

// NewImageStore opens the local directory news images are written to;
// their public URLs start with appCfg.StorageLocalURL.
func NewImageStore(appCfg AppConfig) (*storage.Local, error) {
	return storage.NewLocal(storage.LocalConfig{
		BasePath: appCfg.StorageLocalPath,
		BaseURL:  appCfg.StorageLocalURL,
	})
}

// NewConsoleRegistry builds the registry whose consoles talk to the admin
// API at appCfg.APIBaseURL. Every console gets its own client and so its
// own backend session.
func NewConsoleRegistry(appCfg AppConfig, logger *zap.Logger) *console.Registry {
	httpClient := &http.Client{Timeout: timeouts.Long()}
	factory := func() (console.API, error) {
		c, err := portalclient.New(appCfg.APIBaseURL, httpClient, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return console.NewRegistry(factory, appCfg.AlertDuration, logger)
}

// EnsureSchema creates the indexes for admin users and every content
// collection.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ictx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()
	if err := indexes.EnsureAll(ictx, deps.MongoDatabase); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return err
	}
	return nil
}
