package repositories

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/medisetu/medisetu_backend/config"
	"github.com/medisetu/medisetu_backend/models"
)

var ErrAdminNotFound = errors.New("admin not found")

// AdminRepository looks up back-office accounts.
type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
}

type MongoAdminRepository struct {
	collection *mongo.Collection
}

func NewMongoAdminRepository(db *mongo.Client) *MongoAdminRepository {
	return &MongoAdminRepository{collection: config.GetCollection(db, "admins")}
}

func (r *MongoAdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := r.collection.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&admin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &admin, nil
}
