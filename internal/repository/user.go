package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Miro-wq/phonebook-api/internal/model"
)

// UserRepository defines the interface for user-related database operations.
// Every operation is a single-record read or write; the store's single-record
// update primitive is what makes the per-field updates atomic.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*model.User, error)
	UpdateSubscription(ctx context.Context, id, subscription string) (*model.User, error)
	UpdateAvatarURL(ctx context.Context, id, avatarURL string) (*model.User, error)
	UpdateSessionToken(ctx context.Context, id, sessionToken string) (*model.User, error)
	MarkVerified(ctx context.Context, id string) (*model.User, error)
}

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

// NewUserMongoRepository creates the Mongo-backed UserRepository and ensures
// the unique email index exists.
func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userMongoRepository) GetUserByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"verification_token": token})
}

func (r *userMongoRepository) UpdateSubscription(ctx context.Context, id, subscription string) (*model.User, error) {
	return r.updateOne(ctx, id, bson.M{"subscription": subscription})
}

func (r *userMongoRepository) UpdateAvatarURL(ctx context.Context, id, avatarURL string) (*model.User, error) {
	return r.updateOne(ctx, id, bson.M{"avatar_url": avatarURL})
}

func (r *userMongoRepository) UpdateSessionToken(ctx context.Context, id, sessionToken string) (*model.User, error) {
	return r.updateOne(ctx, id, bson.M{"session_token": sessionToken})
}

// MarkVerified clears the verification token and flips the verified flag in a
// single update, deliberately without re-running signup validation: the record
// is in a transitional state where an empty verification token is expected.
func (r *userMongoRepository) MarkVerified(ctx context.Context, id string) (*model.User, error) {
	return r.updateOne(ctx, id, bson.M{"verified": true, "verification_token": ""})
}

func (r *userMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) updateOne(ctx context.Context, id string, set bson.M) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	set["updated_at"] = time.Now()

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}
