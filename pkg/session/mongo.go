package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures a [MongoStore].
type MongoConfig struct {
	URI        string
	Database   string
	Collection string // defaults to "sessions"
	// TTL is enforced by a TTL index on expires_at. Zero keeps sessions
	// forever.
	TTL time.Duration
}

// MongoStore keeps one document per session, keyed by session ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	ttl    time.Duration
}

// NewMongoStore connects, pings the server and ensures the expiry index.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	name := cfg.Collection
	if name == "" {
		name = "sessions"
	}
	coll := client.Database(cfg.Database).Collection(name)

	if _, err := coll.Indexes().CreateOne(ctx, expiryIndex()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create expiry index: %w", err)
	}
	return &MongoStore{client: client, coll: coll, ttl: cfg.TTL}, nil
}

// expiryIndex lets MongoDB delete documents once expires_at has passed.
// Documents without expires_at are never removed.
func expiryIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
}

func idFilter(id string) bson.D {
	return bson.D{{Key: "_id", Value: id}}
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	var snap Snapshot
	err := s.coll.FindOne(ctx, idFilter(id)).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	// The TTL monitor runs periodically; hide documents it has not reaped yet.
	if snap.IsExpired() {
		return nil, nil
	}
	return &snap, nil
}

func (s *MongoStore) Set(ctx context.Context, snap *Snapshot) error {
	stored := *snap
	stored.ExpiresAt = expiry(s.ttl)
	_, err := s.coll.ReplaceOne(ctx, idFilter(snap.ID), &stored, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo replace: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, idFilter(id)); err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
