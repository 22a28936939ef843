package mongo

import (
	"alcyxob/fitlog-bot/internal/domain"
	"alcyxob/fitlog-bot/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a session repository backed by MongoDB.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{collection: db.Collection(sessionCollectionName)}
}

func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.Session) (string, error) {
	session.ID = newID()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return "", err
	}
	return session.ID, nil
}

func (r *mongoSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// LatestOpenByUser matches documents where completedAt is missing or null.
func (r *mongoSessionRepository) LatestOpenByUser(ctx context.Context, userID string) (*domain.Session, error) {
	return r.findOne(ctx, bson.M{"userId": userID, "completedAt": nil})
}

func (r *mongoSessionRepository) LatestByUser(ctx context.Context, userID string) (*domain.Session, error) {
	return r.findOne(ctx, bson.M{"userId": userID})
}

func (r *mongoSessionRepository) findOne(ctx context.Context, filter bson.M) (*domain.Session, error) {
	var session domain.Session
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&session); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// MarkCompleted only matches open sessions, so a second call is a no-op that
// reports ErrNotFound.
func (r *mongoSessionRepository) MarkCompleted(ctx context.Context, id string, at time.Time) error {
	filter := bson.M{"_id": id, "completedAt": nil}
	update := bson.M{"$set": bson.M{"completedAt": at.UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoSessionRepository) ListOpen(ctx context.Context) ([]domain.Session, error) {
	return r.find(ctx, bson.M{"completedAt": nil})
}

func (r *mongoSessionRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Session, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *mongoSessionRepository) find(ctx context.Context, filter bson.M) ([]domain.Session, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []domain.Session
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// EnsureSessionIndexes creates the per-user recency index.
func EnsureSessionIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(sessionCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{
			Keys:    bson.D{{Key: "completedAt", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	return err
}
