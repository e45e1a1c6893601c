package dataaccess

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoIndexes lists the indexes each collection needs. The unique indexes back the upserts
// in SaveGuild and SaveTicket: without them two concurrent upserts can insert duplicates.
func mongoIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		collectionGuilds: {
			{
				Keys:    bson.D{{Key: "id", Value: 1}},
				Options: options.Index().SetName("guild_id_unique").SetUnique(true),
			},
		},
		collectionTickets: {
			{
				Keys:    bson.D{{Key: "ticket_id", Value: 1}},
				Options: options.Index().SetName("ticket_id_unique").SetUnique(true),
			},
			{
				Keys: bson.D{
					{Key: "guild_id", Value: 1},
					{Key: "user_id", Value: 1},
					{Key: "status", Value: 1},
				},
				Options: options.Index().SetName("guild_user_status"),
			},
		},
	}
}

// EnsureMongoIndexes creates any missing indexes. Creating an index that already exists is a no-op.
func EnsureMongoIndexes(ctx context.Context, l *slog.Logger, client *mongo.Client, database string) error {
	for collection, models := range mongoIndexes() {
		names, err := client.Database(database).Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("error creating indexes on %s: %w", collection, err)
		}

		l.Debug("Mongo indexes ensured",
			slog.String("collection", collection),
			slog.Any("indexes", names),
		)
	}
	return nil
}
