package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"contactdesk-bot/internal/config"
	"contactdesk-bot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection         = "users"
	messagesCollection      = "messages"
	promoCodesCollection    = "promocodes"
	adminSessionsCollection = "admin_sessions"
)

// ConnectDB establishes a connection to the MongoDB database using the provided configuration.
// It returns the MongoDB client, database object, and an error if connection fails.
func ConnectDB(ctx context.Context, cfg *config.Config) (*mongo.Client, *mongo.Database, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(cfg.MongoDBURI).SetServerAPIOptions(serverAPI)

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Send a ping to confirm a successful connection
	var result bson.M
	if err := client.Database("admin").RunCommand(connectCtx, bson.D{{Key: "ping", Value: 1}}).Decode(&result); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	log.Println("Successfully connected and pinged MongoDB!")

	return client, client.Database(cfg.MongoDBDatabase), nil
}

// EnsureSchema creates the indexes the store relies on. Creating an index
// that already exists is a no-op, so this runs on every start.
func EnsureSchema(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
		},
		messagesCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		promoCodesCollection: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique},
		},
		adminSessionsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
		},
	}
	for _, c := range models.Categories {
		specs[c.Collection()] = []mongo.IndexModel{
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		}
	}

	for _, name := range schemaOrder() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, specs[name]); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	log.Printf("[MongoStore] Schema ensured on %d collections", len(specs))
	return nil
}

// schemaOrder fixes the order indexes are created in.
func schemaOrder() []string {
	names := []string{usersCollection, messagesCollection, promoCodesCollection, adminSessionsCollection}
	for _, c := range models.Categories {
		names = append(names, c.Collection())
	}
	return names
}

// MongoStore implements Store on top of a MongoDB database.
type MongoStore struct {
	users         *mongo.Collection
	messages      *mongo.Collection
	promoCodes    *mongo.Collection
	adminSessions *mongo.Collection
	submissions   map[models.Category]*mongo.Collection
}

// NewMongoStore creates a store backed by the given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	s := &MongoStore{
		users:         db.Collection(usersCollection),
		messages:      db.Collection(messagesCollection),
		promoCodes:    db.Collection(promoCodesCollection),
		adminSessions: db.Collection(adminSessionsCollection),
		submissions:   make(map[models.Category]*mongo.Collection, len(models.Categories)),
	}
	for _, c := range models.Categories {
		s.submissions[c] = db.Collection(c.Collection())
	}
	return s
}

var _ Store = (*MongoStore)(nil)

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }
