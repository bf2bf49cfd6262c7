// Package mongodb stores users as documents in a MongoDB collection.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hongminglow/account-be/internal/models"
	"github.com/hongminglow/account-be/internal/storage"
)

const collectionName = "users"

var _ storage.UserStore = (*Store)(nil)

// Store provides MongoDB-backed persistence for users.
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
}

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Password  string             `bson:"password"`
	IsAdmin   bool               `bson:"isAdmin"`
	Token     string             `bson:"token"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// NewUserStore connects to MongoDB and ensures the username index exists.
func NewUserStore(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &Store{client: client, users: client.Database(database).Collection(collectionName)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// Close disconnects the client.
func (s *Store) Close() {
	if s.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.client.Disconnect(ctx)
	}
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	})
	if err != nil {
		return fmt.Errorf("create username index: %w", err)
	}
	return nil
}

// CreateUser inserts a new user document.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	doc := toDocument(user)
	doc.ID = primitive.NilObjectID
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	res, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return models.User{}, fmt.Errorf("insert user: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.toModel(), nil
}

// FindByUsername fetches a user by username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

// FindByID fetches a user by its hex ObjectID.
func (s *Store) FindByID(ctx context.Context, id string) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, storage.ErrNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

// SaveUser persists the user's current token.
func (s *Store) SaveUser(ctx context.Context, user models.User) error {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return storage.ErrNotFound
	}
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"token": user.CurrentToken}})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return doc.toModel(), nil
}

func toDocument(user models.User) userDocument {
	doc := userDocument{
		Username:  user.Username,
		Password:  user.PasswordHash,
		IsAdmin:   user.IsAdmin,
		Token:     user.CurrentToken,
		CreatedAt: user.CreatedAt,
	}
	if oid, err := primitive.ObjectIDFromHex(user.ID); err == nil {
		doc.ID = oid
	}
	return doc
}

func (d userDocument) toModel() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.Password,
		IsAdmin:      d.IsAdmin,
		CurrentToken: d.Token,
		CreatedAt:    d.CreatedAt,
	}
}
