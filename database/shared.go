package database

import (
	"context"
	"sync/atomic"

	"useraccount/config"
	"useraccount/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SharedStore publishes a Store once the background connect finishes.
// Until then it behaves like a degraded Store. The zero value is a store
// that never connects.
type SharedStore struct {
	current atomic.Pointer[Store]
	done    chan struct{}
}

// ConnectInBackground starts Connect in its own goroutine and returns
// immediately, so the HTTP surface can serve while MongoDB is retried.
func ConnectInBackground(ctx context.Context, cfg config.MongoConfig, log *zap.Logger) *SharedStore {
	return connectInBackground(ctx, cfg, log, dialMongo)
}

func connectInBackground(ctx context.Context, cfg config.MongoConfig, log *zap.Logger, dial Dialer) *SharedStore {
	s := &SharedStore{done: make(chan struct{})}
	go func() {
		defer close(s.done)
		store, err := connect(ctx, cfg, log, dial)
		if err != nil {
			log.Error("Continuing without MongoDB, submissions will not be persisted", zap.Error(err))
		}
		s.current.Store(store)
	}()
	return s
}

// Done is closed when the connect goroutine has finished, successfully or not.
func (s *SharedStore) Done() <-chan struct{} {
	return s.done
}

func (s *SharedStore) Connected() bool {
	return s.current.Load().Connected()
}

func (s *SharedStore) InsertProfile(ctx context.Context, profile *models.Profile) (primitive.ObjectID, error) {
	return s.current.Load().InsertProfile(ctx, profile)
}

// Close waits for the connect goroutine, bounded by ctx, then closes the
// published Store.
func (s *SharedStore) Close(ctx context.Context) error {
	if s.done != nil {
		select {
		case <-s.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.current.Load().Close(ctx)
}
