package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medisetu/medisetu_backend/config"
	"github.com/medisetu/medisetu_backend/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("an account with this email or phone already exists")
)

// UserRepository persists registrations and accounts. The interface exists
// so handlers can be exercised without a running MongoDB.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByPhoneAndRole(ctx context.Context, phone, role string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindByEmailAndRole(ctx context.Context, email, role string) (*models.User, error)
	ExistsForRole(ctx context.Context, role, email, phone string) (bool, error)
	UpdateStatus(ctx context.Context, id, status, reason string) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, status, role string) ([]models.User, error)
}

type MongoUserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Client) *MongoUserRepository {
	return &MongoUserRepository{
		collection: config.GetCollection(db, "users"),
	}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrUserExists
	}
	return err
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

func (r *MongoUserRepository) FindByPhoneAndRole(ctx context.Context, phone, role string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"phone": phone, "role": role})
}

func (r *MongoUserRepository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"phone": phone})
}

func (r *MongoUserRepository) FindByEmailAndRole(ctx context.Context, email, role string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email, "role": role})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) ExistsForRole(ctx context.Context, role, email, phone string) (bool, error) {
	filter := bson.M{
		"role": role,
		"$or": []bson.M{
			{"email": email},
			{"phone": phone},
		},
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MongoUserRepository) UpdateStatus(ctx context.Context, id, status, reason string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	now := time.Now()
	update := bson.M{"$set": bson.M{
		"status":     status,
		"reviewedAt": now,
		"updatedAt":  now,
	}}
	if reason != "" {
		update["$set"].(bson.M)["rejectionReason"] = reason
	} else {
		update["$unset"] = bson.M{"rejectionReason": ""}
	}

	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrUserNotFound
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{
		"$set": bson.M{"isActive": active, "updatedAt": time.Now()},
	})
	return err
}

func (r *MongoUserRepository) List(ctx context.Context, status, role string) ([]models.User, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	if role != "" {
		filter["role"] = role
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}
