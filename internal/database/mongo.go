// server/internal/database/mongo.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bike-parking-api-server/config"
	"bike-parking-api-server/internal/apperr"
	"bike-parking-api-server/internal/logger"
	"bike-parking-api-server/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	accountsCollection   = "accounts"
	facilitiesCollection = "facilities"
	proposalsCollection  = "proposals"
	reviewsCollection    = "proposal_reviews"

	connectTimeout = 10 * time.Second
)

// MongoStore implements store.Store on a MongoDB database.
type MongoStore struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
	now          func() time.Time
}

var _ store.Store = (*MongoStore)(nil)

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// NewMongoStore wraps an open client. With transactions enabled, reviews run inside
// a multi-document transaction (replica set required); otherwise they use the
// claim-and-compensate protocol in mongo_proposals.go.
func NewMongoStore(client *mongo.Client, dbName string, transactions bool) *MongoStore {
	return &MongoStore{
		client:       client,
		db:           client.Database(dbName),
		transactions: transactions,
		now:          time.Now,
	}
}

func (s *MongoStore) accounts() *mongo.Collection   { return s.db.Collection(accountsCollection) }
func (s *MongoStore) facilities() *mongo.Collection { return s.db.Collection(facilitiesCollection) }
func (s *MongoStore) proposals() *mongo.Collection  { return s.db.Collection(proposalsCollection) }
func (s *MongoStore) reviews() *mongo.Collection    { return s.db.Collection(reviewsCollection) }

// EnsureIndexes creates the indexes the store relies on. It is idempotent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.accounts().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("accounts email index: %w", err)
	}

	if _, err := s.facilities().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location.coordinates", Value: "2dsphere"}}},
		{
			Keys:    bson.D{{Key: "sourceProposalId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("facilities indexes: %w", err)
	}

	if _, err := s.proposals().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "submittedBy", Value: 1}, {Key: "submittedAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("proposals indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Open builds the store selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Storage.Driver {
	case "memory":
		logger.Warn("Using in-memory storage; data is lost on restart")
		return NewMemoryStore(), nil
	case "mongo":
		client, err := Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		s := NewMongoStore(client, cfg.Mongo.DBName, cfg.Mongo.Transactions)
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		logger.Info("Connected to MongoDB", "db", cfg.Mongo.DBName, "transactions", cfg.Mongo.Transactions)
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// notFound maps mongo.ErrNoDocuments onto the NotFound kind.
func notFound(err error, msg string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(msg)
	}
	return err
}
