package mongo

import (
	"alcyxob/fitlog-bot/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

const (
	userCollectionName        = "users"
	muscleGroupCollectionName = "muscle_groups"
	exerciseCollectionName    = "exercises"
	sessionCollectionName     = "sessions"
	setRecordCollectionName   = "set_records"
)

// ConnectDB establishes a connection to MongoDB using the provided URI.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Connect is lazy; ping the primary so a bad URI fails at startup.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewStore connects to MongoDB, ensures indexes and wires every repository.
func NewStore(ctx context.Context, uri, dbName string) (*repository.Store, error) {
	client, err := ConnectDB(uri)
	if err != nil {
		return nil, err
	}
	db := client.Database(dbName)

	indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	for _, ensure := range []func(context.Context, *mongo.Database) error{
		EnsureUserIndexes,
		EnsureCatalogIndexes,
		EnsureSessionIndexes,
		EnsureSetRecordIndexes,
	} {
		if err := ensure(indexCtx, db); err != nil {
			_ = DisconnectDB(client)
			return nil, err
		}
	}

	return &repository.Store{
		Users:        NewMongoUserRepository(db),
		MuscleGroups: NewMongoMuscleGroupRepository(db),
		Exercises:    NewMongoExerciseRepository(db),
		Sessions:     NewMongoSessionRepository(db),
		SetRecords:   NewMongoSetRecordRepository(db),
		Close:        func(context.Context) error { return DisconnectDB(client) },
	}, nil
}

// newID returns a fresh ObjectID in hex form. Documents use string _id values
// so that IDs look the same across backends.
func newID() string {
	return primitive.NewObjectID().Hex()
}
