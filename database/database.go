package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"useraccount/config"
	"useraccount/metrics"
	"useraccount/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// codeNamespaceExists is returned by the create command when the collection is already there.
const codeNamespaceExists = 48

// ErrNotConnected is returned by Store operations in degraded mode.
var ErrNotConnected = errors.New("mongodb not connected")

// Dialer opens a client. Tests replace it.
type Dialer func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)

func dialMongo(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	return mongo.Connect(ctx, opts)
}

// Store owns the MongoDB connection. A Store with no client is degraded:
// Connected reports false and inserts are skipped by callers.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	opTimeout  time.Duration
	log        *zap.Logger
}

// Connect opens the connection with a bounded number of attempts and a fixed
// delay between them. It always returns a usable Store; when every attempt
// fails the Store is degraded and the last error is returned alongside it.
func Connect(ctx context.Context, cfg config.MongoConfig, log *zap.Logger) (*Store, error) {
	return connect(ctx, cfg, log, dialMongo)
}

func connect(ctx context.Context, cfg config.MongoConfig, log *zap.Logger, dial Dialer) (*Store, error) {
	store := &Store{opTimeout: cfg.OperationTimeout, log: log}

	opts := options.Client().
		ApplyURI(cfg.URI()).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetSocketTimeout(cfg.SocketTimeout)

	var lastErr error
	for attempt := 1; attempt <= cfg.ConnectAttempts; attempt++ {
		log.Info("Attempting to connect to MongoDB",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", cfg.ConnectAttempts),
			zap.String("url", redact(cfg.URI())),
		)

		client, err := dial(ctx, opts)
		if err == nil {
			err = store.setup(ctx, client, cfg)
			if err != nil {
				_ = client.Disconnect(context.Background())
			}
		}
		if err == nil {
			metrics.MongoConnectAttemptsTotal.WithLabelValues("success").Inc()
			return store, nil
		}

		lastErr = err
		metrics.MongoConnectAttemptsTotal.WithLabelValues("failure").Inc()
		log.Error("MongoDB connection attempt failed", zap.Int("attempt", attempt), zap.Error(err))

		if attempt == cfg.ConnectAttempts {
			break
		}

		log.Info("Retrying MongoDB connection", zap.Duration("delay", cfg.RetryDelay))
		timer := time.NewTimer(cfg.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return store, fmt.Errorf("connect to mongodb: %w", ctx.Err())
		case <-timer.C:
		}
	}

	log.Error("Failed to connect to MongoDB after all retry attempts",
		zap.Int("attempts", cfg.ConnectAttempts),
		zap.Error(lastErr),
	)
	return store, fmt.Errorf("connect to mongodb after %d attempts: %w", cfg.ConnectAttempts, lastErr)
}

// setup verifies the client and makes sure the target collection exists.
// On success the client is attached to the store.
func (s *Store) setup(ctx context.Context, client *mongo.Client, cfg config.MongoConfig) error {
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	db := client.Database(cfg.Database)

	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	s.log.Info("Connected to MongoDB successfully",
		zap.String("database", cfg.Database),
		zap.String("collection", cfg.Collection),
		zap.Strings("availableCollections", names),
	)

	if err := db.CreateCollection(ctx, cfg.Collection); err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Code == codeNamespaceExists {
			s.log.Info("Collection already exists", zap.String("collection", cfg.Collection))
		} else {
			s.log.Warn("Collection creation note", zap.String("collection", cfg.Collection), zap.Error(err))
		}
	} else {
		s.log.Info("Collection created", zap.String("collection", cfg.Collection))
	}

	s.client = client
	s.collection = db.Collection(cfg.Collection)
	return nil
}

// Connected reports whether inserts can be attempted.
func (s *Store) Connected() bool {
	return s != nil && s.collection != nil
}

// InsertProfile appends one profile document.
func (s *Store) InsertProfile(ctx context.Context, profile *models.Profile) (primitive.ObjectID, error) {
	if !s.Connected() {
		return primitive.NilObjectID, ErrNotConnected
	}

	if s.opTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opTimeout)
		defer cancel()
	}

	result, err := s.collection.InsertOne(ctx, profile)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert profile: %w", err)
	}

	id, _ := result.InsertedID.(primitive.ObjectID)
	s.log.Info("User data saved to MongoDB",
		zap.String("collection", s.collection.Name()),
		zap.String("documentId", id.Hex()),
	)
	return id, nil
}

// Close disconnects the client if one is open.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return err
	}
	s.log.Info("MongoDB connection closed")
	return nil
}

func redact(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}
