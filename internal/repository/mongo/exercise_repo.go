package mongo

import (
	"alcyxob/fitlog-bot/internal/domain"
	"alcyxob/fitlog-bot/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoMuscleGroupRepository implements repository.MuscleGroupRepository
type mongoMuscleGroupRepository struct {
	collection *mongo.Collection
}

// NewMongoMuscleGroupRepository creates a muscle group repository backed by MongoDB.
func NewMongoMuscleGroupRepository(db *mongo.Database) repository.MuscleGroupRepository {
	return &mongoMuscleGroupRepository{collection: db.Collection(muscleGroupCollectionName)}
}

// Upsert inserts the group unless one with the same slug exists. Existing
// documents are never modified.
func (r *mongoMuscleGroupRepository) Upsert(ctx context.Context, group *domain.MuscleGroup) (string, error) {
	id, err := upsertBySlug(ctx, r.collection, group.Slug, bson.M{
		"slug":     group.Slug,
		"name":     group.Name,
		"position": group.Position,
	})
	if err != nil {
		return "", err
	}
	group.ID = id
	return id, nil
}

func (r *mongoMuscleGroupRepository) GetByID(ctx context.Context, id string) (*domain.MuscleGroup, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoMuscleGroupRepository) GetBySlug(ctx context.Context, slug string) (*domain.MuscleGroup, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *mongoMuscleGroupRepository) findOne(ctx context.Context, filter bson.M) (*domain.MuscleGroup, error) {
	var group domain.MuscleGroup
	if err := r.collection.FindOne(ctx, filter).Decode(&group); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (r *mongoMuscleGroupRepository) List(ctx context.Context) ([]domain.MuscleGroup, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "slug", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []domain.MuscleGroup
	if err = cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

func (r *mongoExerciseRepository) Upsert(ctx context.Context, exercise *domain.Exercise) (string, error) {
	id, err := upsertBySlug(ctx, r.collection, exercise.Slug, bson.M{
		"slug":      exercise.Slug,
		"name":      exercise.Name,
		"kind":      exercise.Kind,
		"groupId":   exercise.GroupID,
		"inputMode": exercise.InputMode,
		"tip":       exercise.Tip,
		"position":  exercise.Position,
	})
	if err != nil {
		return "", err
	}
	exercise.ID = id
	return id, nil
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

func (r *mongoExerciseRepository) ListByGroup(ctx context.Context, groupID string, kind domain.ExerciseKind) ([]domain.Exercise, error) {
	filter := bson.M{"groupId": groupID, "kind": kind}
	findOptions := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "name", Value: 1}})
	return r.find(ctx, filter, findOptions)
}

func (r *mongoExerciseRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Exercise, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (r *mongoExerciseRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Exercise, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exercises []domain.Exercise
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// upsertBySlug inserts fields with a fresh _id when no document carries slug,
// then returns the stored _id.
func upsertBySlug(ctx context.Context, collection *mongo.Collection, slug string, fields bson.M) (string, error) {
	fields["_id"] = newID()
	_, err := collection.UpdateOne(ctx,
		bson.M{"slug": slug},
		bson.M{"$setOnInsert": fields},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return "", err
	}

	var stored struct {
		ID string `bson:"_id"`
	}
	if err := collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&stored); err != nil {
		return "", err
	}
	return stored.ID, nil
}

// EnsureCatalogIndexes creates unique slug indexes and the group lookup index.
func EnsureCatalogIndexes(ctx context.Context, db *mongo.Database) error {
	unique := mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection(muscleGroupCollectionName).Indexes().CreateOne(ctx, unique); err != nil {
		return err
	}
	_, err := db.Collection(exerciseCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		unique,
		{Keys: bson.D{{Key: "groupId", Value: 1}, {Key: "kind", Value: 1}, {Key: "position", Value: 1}}},
	})
	return err
}
