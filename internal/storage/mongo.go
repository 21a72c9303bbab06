package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoEntry struct {
	Namespace string    `bson:"namespace"`
	Key       string    `bson:"key"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoStore keeps one document per entry.
type MongoStore struct {
	client    *mongo.Client
	col       *mongo.Collection
	namespace string
}

// NewMongoStore wraps col. client, when non-nil, is disconnected by Close.
func NewMongoStore(client *mongo.Client, col *mongo.Collection, namespace string) *MongoStore {
	return &MongoStore{client: client, col: col, namespace: namespaceOr(namespace)}
}

func (m *MongoStore) filter(key string) bson.M {
	return bson.M{"namespace": m.namespace, "key": key}
}

func (m *MongoStore) Get(ctx context.Context, key string) ([]byte, error) {
	var e mongoEntry
	if err := m.col.FindOne(ctx, m.filter(key)).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo storage: get %s: %w", key, err)
	}
	return e.Value, nil
}

func (m *MongoStore) Set(ctx context.Context, key string, value []byte) error {
	e := mongoEntry{Namespace: m.namespace, Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := m.col.ReplaceOne(ctx, m.filter(key), e, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo storage: set %s: %w", key, err)
	}
	return nil
}

func (m *MongoStore) Remove(ctx context.Context, key string) error {
	_, err := m.col.DeleteOne(ctx, m.filter(key))
	return err
}

func (m *MongoStore) Clear(ctx context.Context) error {
	_, err := m.col.DeleteMany(ctx, bson.M{"namespace": m.namespace})
	return err
}

func (m *MongoStore) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
