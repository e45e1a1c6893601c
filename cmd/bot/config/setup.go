package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/Jacobbrewer1/satla/pkg/dataaccess"
	"github.com/Jacobbrewer1/satla/pkg/dataaccess/connection"
	"github.com/joho/godotenv"
)

// Store is the opened database and the data access layers built on it.
type Store struct {
	DB      connection.Database
	Guilds  dataaccess.GuildDal
	Tickets dataaccess.TicketDal
}

// Parse reads the configuration from the environment, loading a .env file first when there is one.
// Variables already set in the environment win over the file.
func Parse(l *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	c := &Config{
		BotToken:       os.Getenv(EnvBotToken),
		ApplicationId:  os.Getenv(EnvApplicationId),
		GuildId:        os.Getenv(EnvGuildId),
		DbDriver:       os.Getenv(EnvDbDriver),
		MongoUri:       os.Getenv(EnvMongoUri),
		MongoDatabase:  os.Getenv(EnvMongoDatabase),
		SqlitePath:     os.Getenv(EnvSqlitePath),
		MonitoringPort: os.Getenv(EnvMonitoringPort),
	}

	if c.DbDriver == "" {
		c.DbDriver = dataaccess.DriverMongo
	}
	if c.MongoDatabase == "" {
		c.MongoDatabase = dataaccess.DefaultMongoDatabase
	}
	if c.SqlitePath == "" {
		c.SqlitePath = defaultSqlitePath
	}
	if c.MonitoringPort == "" {
		c.MonitoringPort = defaultMonitoringPort
		l.Info("No monitoring port provided in environment, defaulting to "+defaultMonitoringPort, slog.String("key", EnvMonitoringPort))
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	l.Debug("All required environment variables have been provided", slog.String("driver", c.DbDriver))
	return c, nil
}

// Validate checks that every required value is present.
func (c *Config) Validate() error {
	var errs []error
	if c.BotToken == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvBotToken))
	}
	if c.ApplicationId == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvApplicationId))
	}

	switch c.DbDriver {
	case dataaccess.DriverMongo:
		if c.MongoUri == "" {
			errs = append(errs, fmt.Errorf("%s is required for the %s driver", EnvMongoUri, dataaccess.DriverMongo))
		}
	case dataaccess.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown %s %q", EnvDbDriver, c.DbDriver))
	}
	return errors.Join(errs...)
}

// Connect opens the configured database.
func (c *Config) Connect(ctx context.Context, l *slog.Logger) (*Store, error) {
	switch c.DbDriver {
	case dataaccess.DriverSQLite:
		return c.connectSQLite(ctx, l)
	default:
		return c.connectMongo(ctx, l)
	}
}

func (c *Config) connectMongo(ctx context.Context, l *slog.Logger) (*Store, error) {
	mongoConn := new(connection.MongoDB)
	mongoConn.ConnectionString = c.MongoUri

	client, err := mongoConn.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo: %w", err)
	}

	l.Debug("Connected to MongoDB", slog.String("database", c.MongoDatabase))

	if err := dataaccess.EnsureMongoIndexes(ctx, l, client, c.MongoDatabase); err != nil {
		_ = mongoConn.Disconnect(ctx)
		return nil, fmt.Errorf("error preparing mongo: %w", err)
	}

	return &Store{
		DB:      mongoConn,
		Guilds:  dataaccess.NewGuildDal(l, client, c.MongoDatabase),
		Tickets: dataaccess.NewTicketDal(l, client, c.MongoDatabase),
	}, nil
}

func (c *Config) connectSQLite(ctx context.Context, l *slog.Logger) (*Store, error) {
	sqliteConn := &connection.SQLite{Path: c.SqlitePath}

	db, err := sqliteConn.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite: %w", err)
	}

	store, err := dataaccess.NewSQLiteStore(l, db)
	if err != nil {
		_ = sqliteConn.Disconnect(ctx)
		return nil, fmt.Errorf("error preparing sqlite: %w", err)
	}

	l.Debug("Opened SQLite", slog.String("path", c.SqlitePath))
	return &Store{
		DB:      sqliteConn,
		Guilds:  store,
		Tickets: store,
	}, nil
}
