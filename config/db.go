package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB establishes the MongoDB connection and prepares collections.
func ConnectDB() (*mongo.Client, error) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = os.Getenv("MONGODB_URI")
	}
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Printf("Connected to MongoDB at %s", maskMongoURI(uri))

	if err := setupCollections(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// DatabaseName returns the configured database name.
func DatabaseName() string {
	if name := os.Getenv("DB_NAME"); name != "" {
		return name
	}
	return "medisetu"
}

// GetCollection returns a handle to a collection in the application database.
func GetCollection(client *mongo.Client, name string) *mongo.Collection {
	return client.Database(DatabaseName()).Collection(name)
}

// setupCollections creates the indexes the application depends on. A user is
// unique per (email, role) and per (phone, role) so the same person can hold
// several roles.
func setupCollections(ctx context.Context, client *mongo.Client) error {
	users := GetCollection(client, "users")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "role", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "phone", Value: 1}, {Key: "role", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}

	if _, err := users.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	return nil
}

// maskMongoURI hides credentials before the URI is logged.
func maskMongoURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	if at == -1 {
		return uri
	}
	scheme := strings.Index(uri, "://")
	if scheme == -1 {
		return uri
	}
	return uri[:scheme+3] + "***:***" + uri[at:]
}
