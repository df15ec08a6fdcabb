package cmd

import (
	"context"
	"fmt"
	"time"

	"playtab/internal/adapters/memstore"
	"playtab/internal/adapters/mongostore"
	"playtab/internal/adapters/storage"
	"playtab/internal/config"
	"playtab/internal/logging"
	"playtab/internal/paths"
	"playtab/internal/ports"
	"playtab/internal/services"
	"playtab/internal/state"
	"playtab/internal/syncer"
)

// Container holds all dependencies for the application
type Container struct {
	ClientID string

	Store ports.Store
	Bus   *syncer.Broadcaster

	SessionService *services.SessionService
	ReportService  *services.ReportService
	Coordinator    *syncer.Coordinator
}

// NewContainer wires the store backend, the broadcast bus and the
// services. The change feed is optional; backends without one leave
// the coordinator on poll and sweep alone.
func NewContainer(cli *CLI) (*Container, error) {
	clientID, err := state.EnsureClientID()
	if err != nil {
		return nil, fmt.Errorf("failed to ensure client id: %w", err)
	}

	store, err := openStore(cli)
	if err != nil {
		return nil, err
	}

	bus := syncer.NewBroadcaster()
	archiver := services.NewArchiver(store)
	sessionService := services.NewSessionService(store, bus, archiver)
	reportService := services.NewReportService(store)

	var feed ports.ChangeFeed
	if f, ok := store.(ports.ChangeFeed); ok {
		feed = f
	}

	coordinator := syncer.New(store, feed, bus, sessionService, syncer.Options{
		PollInterval: time.Duration(cli.PollSeconds) * time.Second,
	})

	logging.Logger.Info("Container initialized",
		"client_id", clientID,
		"store", storeName(cli),
		"has_change_feed", feed != nil)

	return &Container{
		ClientID:       clientID,
		Store:          store,
		Bus:            bus,
		SessionService: sessionService,
		ReportService:  reportService,
		Coordinator:    coordinator,
	}, nil
}

func storeName(cli *CLI) string {
	if cli.Store == "" {
		return config.StoreSQLite
	}
	return cli.Store
}

func openStore(cli *CLI) (ports.Store, error) {
	switch storeName(cli) {
	case config.StoreMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		database := cli.MongoDatabase
		if database == "" {
			database = "playtab"
		}
		store, err := mongostore.New(ctx, cli.MongoURI, database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		return store, nil

	case config.StoreMemory:
		return memstore.New(), nil

	default:
		dbPath := cli.DBPath
		if dbPath == "" {
			dbPath = paths.GetDBPath()
		}
		store, err := storage.NewSQLiteStore(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return store, nil
	}
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	if c.Store != nil {
		return c.Store.Close()
	}
	return nil
}
