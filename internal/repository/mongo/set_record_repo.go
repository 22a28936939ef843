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

// mongoSetRecordRepository implements repository.SetRecordRepository
type mongoSetRecordRepository struct {
	collection *mongo.Collection
}

// NewMongoSetRecordRepository creates a set record repository backed by MongoDB.
func NewMongoSetRecordRepository(db *mongo.Database) repository.SetRecordRepository {
	return &mongoSetRecordRepository{collection: db.Collection(setRecordCollectionName)}
}

func (r *mongoSetRecordRepository) Create(ctx context.Context, record *domain.SetRecord) (string, error) {
	if record.SessionID == "" || record.ExerciseID == "" {
		return "", errors.New("set record requires session and exercise IDs")
	}
	record.ID = newID()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return "", err
	}
	return record.ID, nil
}

func (r *mongoSetRecordRepository) LatestForExercise(ctx context.Context, sessionID, exerciseID string) (*domain.SetRecord, error) {
	var record domain.SetRecord
	filter := bson.M{"sessionId": sessionID, "exerciseId": exerciseID}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *mongoSetRecordRepository) CountForExercise(ctx context.Context, sessionID, exerciseID string) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"sessionId": sessionID, "exerciseId": exerciseID})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *mongoSetRecordRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.SetRecord, error) {
	return r.find(ctx, bson.M{"sessionId": sessionID})
}

func (r *mongoSetRecordRepository) LastActivity(ctx context.Context, sessionID string) (*time.Time, error) {
	var stored struct {
		CreatedAt time.Time `bson:"createdAt"`
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"createdAt": 1})
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID}, opts).Decode(&stored)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &stored.CreatedAt, nil
}

func (r *mongoSetRecordRepository) ListByUser(ctx context.Context, userID string, since *time.Time) ([]domain.SetRecord, error) {
	filter := bson.M{"userId": userID}
	if since != nil {
		filter["createdAt"] = bson.M{"$gte": since.UTC()}
	}
	return r.find(ctx, filter)
}

func (r *mongoSetRecordRepository) find(ctx context.Context, filter bson.M) ([]domain.SetRecord, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []domain.SetRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// EnsureSetRecordIndexes creates the lookup indexes used by the controller and reports.
func EnsureSetRecordIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(setRecordCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sessionId", Value: 1}, {Key: "exerciseId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}}},
	})
	return err
}
