package events

import (
	"context"
	"time"

	"github.com/camview/agent/src/database"
	"github.com/camview/agent/src/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists events in a MongoDB collection, like the factory
// deployment stores its configuration. The cap is enforced after every
// append by deleting everything beyond the newest entries.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(store models.Store) (*MongoStore, error) {
	client, err := database.New(store.URI)
	if err != nil {
		return nil, err
	}
	databaseName := store.Database
	if databaseName == "" {
		databaseName = "camview"
	}
	collectionName := store.Collection
	if collectionName == "" {
		collectionName = "motionevents"
	}
	return &MongoStore{
		collection: client.Database(databaseName).Collection(collectionName),
	}, nil
}

func (m *MongoStore) Append(event models.MotionEvent) error {
	ctx, cancel := m.ctx()
	defer cancel()

	if _, err := m.collection.InsertOne(ctx, event); err != nil {
		return err
	}
	return m.trim(ctx)
}

func (m *MongoStore) Update(event models.MotionEvent) error {
	ctx, cancel := m.ctx()
	defer cancel()

	_, err := m.collection.ReplaceOne(ctx, bson.M{"id": event.ID}, event)
	return err
}

func (m *MongoStore) ListRecent(limit int) ([]models.MotionEvent, error) {
	ctx, cancel := m.ctx()
	defer cancel()

	if limit <= 0 || limit > MaxStoredEvents {
		limit = MaxStoredEvents
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "detected_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := []models.MotionEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// trim silently drops the oldest documents once the cap is exceeded.
func (m *MongoStore) trim(ctx context.Context) error {
	opts := options.Find().
		SetSort(bson.D{{Key: "detected_at", Value: -1}}).
		SetSkip(int64(MaxStoredEvents)).
		SetProjection(bson.M{"id": 1})
	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var stale []models.MotionEvent
	if err := cursor.All(ctx, &stale); err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}
	ids := make([]string, 0, len(stale))
	for _, event := range stale {
		ids = append(ids, event.ID)
	}
	_, err = m.collection.DeleteMany(ctx, bson.M{"id": bson.M{"$in": ids}})
	return err
}

func (m *MongoStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 3*time.Second)
}
