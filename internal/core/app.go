package core

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/kyomu-reader/kyomu/internal/config"
	"github.com/kyomu-reader/kyomu/internal/db"
	"github.com/kyomu-reader/kyomu/internal/events"
	"github.com/kyomu-reader/kyomu/internal/images"
)

// App holds the core components of the application that are shared
// between the server and the other entrypoints.
type App struct {
	Config    *config.Config
	DB        *sql.DB
	Publisher events.Publisher
	Resolver  images.Resolver
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the database connection, running migrations,
// picking the image-URL strategy and connecting the event publisher.
func New() (*App, error) {
	// Load configuration from config.yml
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize the database connection
	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	if err := db.RunMigrations(database); err != nil {
		// We can't proceed without a valid database schema.
		// Close the DB connection before failing.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	resolver, err := images.NewResolver(cfg)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to configure image URL resolver: %w", err)
	}

	publisher, err := events.NewNATSPublisher(cfg, watermill.NewStdLogger(false, false))
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to connect event publisher: %w", err)
	}

	log.Println("Core application setup complete.")
	return &App{
		Config:    cfg,
		DB:        database,
		Publisher: publisher,
		Resolver:  resolver,
	}, nil
}

// Close gracefully closes the application's resources.
func (a *App) Close() {
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			log.Printf("Error closing event publisher: %v", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
