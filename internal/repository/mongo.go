package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/app-functions/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// MongoProfileRepository stores profiles in the "users" collection.
type MongoProfileRepository struct {
	users *mongodriver.Collection
}

// NewMongoProfileRepository binds the repository to db and ensures its indexes.
func NewMongoProfileRepository(ctx context.Context, db *mongodriver.Database) (*MongoProfileRepository, error) {
	r := &MongoProfileRepository{users: db.Collection(usersCollection)}
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// ensureIndexes creates the lookup indexes.
//   - email: unique among non-empty values; closes the duplicate insert race
//   - uid: unique among non-empty values
func (r *MongoProfileRepository) ensureIndexes(ctx context.Context) error {
	nonEmpty := func(field string) bson.D {
		return bson.D{{Key: field, Value: bson.D{{Key: "$gt", Value: ""}}}}
	}

	models := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true).SetPartialFilterExpression(nonEmpty("email")),
		},
		{
			Keys:    bson.D{{Key: "uid", Value: 1}},
			Options: options.Index().SetName("uid_unique").SetUnique(true).SetPartialFilterExpression(nonEmpty("uid")),
		},
	}

	if _, err := r.users.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("mongo ensure indexes: %w", err)
	}
	return nil
}

// keyFilter matches a document key that may be stored as a string or, for
// administratively created records, as an ObjectID.
func keyFilter(key string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(key); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{key, oid}}}
	}
	return bson.M{"_id": key}
}

func (r *MongoProfileRepository) findOne(ctx context.Context, filter bson.M) (model.UserProfile, error) {
	var p model.UserProfile
	err := r.users.FindOne(ctx, filter).Decode(&p)
	if errors.Is(err, mongodriver.ErrNoDocuments) {
		return model.UserProfile{}, ErrProfileNotFound
	}
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("mongo find profile: %w", err)
	}
	return p, nil
}

func (r *MongoProfileRepository) FindByUID(ctx context.Context, uid string) (model.UserProfile, error) {
	if uid == "" {
		return model.UserProfile{}, ErrProfileNotFound
	}
	return r.findOne(ctx, bson.M{"uid": uid})
}

func (r *MongoProfileRepository) FindByEmail(ctx context.Context, email string) (model.UserProfile, error) {
	if email == "" {
		return model.UserProfile{}, ErrProfileNotFound
	}
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoProfileRepository) Create(ctx context.Context, profile model.UserProfile) error {
	_, err := r.users.InsertOne(ctx, profile)
	if mongodriver.IsDuplicateKeyError(err) {
		return fmt.Errorf("mongo insert profile %s: %w", profile.Key, ErrDuplicateProfile)
	}
	if err != nil {
		return fmt.Errorf("mongo insert profile %s: %w", profile.Key, err)
	}
	return nil
}

func (r *MongoProfileRepository) SetUID(ctx context.Context, key, uid string) error {
	return r.set(ctx, key, bson.M{"uid": uid})
}

func (r *MongoProfileRepository) UpdateFields(ctx context.Context, key string, update model.ProfileUpdate) error {
	fields := bson.M{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Image != nil {
		fields["image"] = *update.Image
	}
	if len(fields) == 0 {
		return nil
	}
	return r.set(ctx, key, fields)
}

func (r *MongoProfileRepository) set(ctx context.Context, key string, fields bson.M) error {
	res, err := r.users.UpdateOne(ctx, keyFilter(key), bson.M{"$set": fields})
	if mongodriver.IsDuplicateKeyError(err) {
		return fmt.Errorf("mongo update profile %s: %w", key, ErrDuplicateProfile)
	}
	if err != nil {
		return fmt.Errorf("mongo update profile %s: %w", key, err)
	}
	if res.MatchedCount == 0 {
		return ErrProfileNotFound
	}
	return nil
}
