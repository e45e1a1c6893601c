package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/satla/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const guildDalName = "guild_dal"

type GuildDal interface {
	// SaveGuild saves a guild, creating it if it does not exist.
	SaveGuild(ctx context.Context, guild *entities.Guild) error

	// GetGuildByID gets a guild by ID. ErrNotFound is returned when nothing has been saved for the guild.
	GetGuildByID(ctx context.Context, id string) (*entities.Guild, error)
}

type guildDalImpl struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client

	// database is the name of the Mongo database.
	database string
}

// NewGuildDal creates a new guild data access layer.
func NewGuildDal(l *slog.Logger, client *mongo.Client, database string) GuildDal {
	l = l.With(slog.String(logging.KeyDal, guildDalName))

	if client == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &guildDalImpl{
		l:        l,
		client:   client,
		database: database,
	}
}

func (g *guildDalImpl) SaveGuild(ctx context.Context, guild *entities.Guild) error {
	// Get the guild collection.
	collection := g.client.Database(g.database).Collection(collectionGuilds)

	// Start the prometheus metrics.
	t := monitoring.StartOperation(DriverMongo, guildDalName, "save_guild_config", collectionGuilds)
	defer t.ObserveDuration()

	touchGuild(guild, time.Now().UTC())

	// Save the guild.
	opts := options.Update().SetUpsert(true)
	_, err := collection.UpdateOne(ctx, bson.M{"id": guild.ID}, bson.M{"$set": guild}, opts)
	if err != nil {
		return fmt.Errorf("error updating guild: %w", err)
	}
	return nil
}

// GetGuildByID gets a guild by ID.
func (g *guildDalImpl) GetGuildByID(ctx context.Context, id string) (*entities.Guild, error) {
	// Get the guild collection.
	collection := g.client.Database(g.database).Collection(collectionGuilds)

	// Start the prometheus metrics.
	t := monitoring.StartOperation(DriverMongo, guildDalName, "get_guild_by_id", collectionGuilds)
	defer t.ObserveDuration()

	// Get the guild.
	guild := new(entities.Guild)

	err := collection.FindOne(ctx, bson.M{"id": id}).Decode(guild)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting guild: %w", err)
	}
	return guild, nil
}

// LoadGuild returns the saved guild, or the defaults when nothing has been saved yet.
func LoadGuild(ctx context.Context, dal GuildDal, id string) (*entities.Guild, error) {
	g, err := dal.GetGuildByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return entities.NewGuild(id), nil
	} else if err != nil {
		return nil, err
	}
	return g, nil
}

func touchGuild(g *entities.Guild, now time.Time) {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now
}
