package activity

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/store"
)

// CollectionName is the MongoDB collection holding entries.
const CollectionName = "logs"

// MongoStore keeps entries in a MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// ConnectMongo dials uri, ensures the collection indexes and returns a store
// that owns the client.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := NewMongoStore(client, client.Database(database))
	if err := s.EnsureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewMongoStore wraps an existing database handle. client may be nil when
// the caller manages its lifetime.
func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{client: client, collection: db.Collection(CollectionName)}
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "action_type", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create log indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Insert(ctx context.Context, entry *Entry) error {
	prepare(entry)
	if _, err := s.collection.InsertOne(ctx, entry); err != nil {
		return apperr.Store(err, "failed to write activity log")
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, q Query) ([]*Entry, int, error) {
	filter := bson.M{}
	if !q.Since.IsZero() {
		filter["created_at"] = bson.M{"$gte": q.Since}
	}

	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Store(err, "failed to count activity logs")
	}

	limit := q.Page.Limit
	if limit <= 0 {
		limit = store.DefaultLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(q.Page.Offset)).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperr.Store(err, "failed to list activity logs")
	}
	var entries []*Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, 0, apperr.Store(err, "failed to decode activity logs")
	}
	return entries, int(total), nil
}

// Close disconnects the client when the store owns one.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
