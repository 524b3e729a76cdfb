package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/taskvoice/internal/config"
	"github.com/fyrsmithlabs/taskvoice/internal/logging"
)

// MongoConfig configures the MongoDB-backed store.
type MongoConfig struct {
	// URI is the MongoDB connection string.
	URI config.Secret

	// Database and Collection name the task collection location.
	Database   string
	Collection string

	// OpTimeout bounds a single operation (insert, query, ping).
	OpTimeout time.Duration
}

// MongoStore implements Store on a MongoDB collection.
//
// One document per task record, keyed by id, with a compound secondary
// index on (owner, created_at) for ordered collection lookup. The store
// holds a single pooled client for the life of the process; the driver's
// pool makes it safe for concurrent requests.
type MongoStore struct {
	cfg     *MongoConfig
	logger  *logging.Logger
	metrics *Metrics

	mu        sync.RWMutex
	client    *mongo.Client
	coll      *mongo.Collection
	connected bool
}

// NewMongoStore creates a MongoDB-backed store. Connect must be called
// before any task operation.
func NewMongoStore(cfg *MongoConfig, logger *logging.Logger, metrics *Metrics) (*MongoStore, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if !cfg.URI.IsSet() {
		return nil, errors.New("mongo URI is required")
	}
	if cfg.Database == "" || cfg.Collection == "" {
		return nil, errors.New("database and collection names are required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 5 * time.Second
	}

	return &MongoStore{
		cfg:     cfg,
		logger:  logger.Named("tasks"),
		metrics: metrics,
	}, nil
}

// Connect establishes the client, verifies the deployment is reachable,
// and ensures the owner lookup index. Idempotent: a connected store
// returns nil immediately.
//
// The process must refuse to serve requests when Connect fails; the
// store does not retry internally.
func (s *MongoStore) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return nil
	}

	opCtx, cancel := context.WithTimeout(ctx, s.cfg.OpTimeout)
	defer cancel()

	client, err := mongo.Connect(opCtx, options.Client().ApplyURI(s.cfg.URI.Value()))
	if err != nil {
		return fmt.Errorf("connecting to mongodb: %w", err)
	}

	if err := client.Ping(opCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("pinging mongodb: %w", err)
	}

	coll := client.Database(s.cfg.Database).Collection(s.cfg.Collection)

	_, err = coll.Indexes().CreateOne(opCtx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "owner", Value: 1},
			{Key: "created_at", Value: 1},
		},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ensuring owner index: %w", err)
	}

	s.client = client
	s.coll = coll
	s.connected = true

	s.logger.Info(ctx, "task store connected",
		zap.String("database", s.cfg.Database),
		zap.String("collection", s.cfg.Collection))

	return nil
}

// CreateTask validates content, assigns an ID and creation time, and
// inserts the record in a single atomic write.
func (s *MongoStore) CreateTask(ctx context.Context, owner, content string) (task *Task, err error) {
	defer s.metrics.observe("create", time.Now(), &err)

	if owner == "" {
		return nil, errors.New("owner is required")
	}

	normalized, err := NormalizeContent(content)
	if err != nil {
		return nil, err
	}

	coll, err := s.collection()
	if err != nil {
		return nil, err
	}

	task = &Task{
		ID:        uuid.NewString(),
		Owner:     owner,
		Content:   normalized,
		CreatedAt: time.Now().UTC(),
	}

	opCtx, cancel := context.WithTimeout(ctx, s.cfg.OpTimeout)
	defer cancel()

	if _, err := coll.InsertOne(opCtx, task); err != nil {
		return nil, storeError("inserting task", err)
	}

	s.logger.Debug(ctx, "task created", zap.String("task.id", task.ID))

	return task, nil
}

// ListTasks returns the owner's collection ordered by creation time.
// The id is a sort tiebreaker so equal timestamps keep a stable order.
func (s *MongoStore) ListTasks(ctx context.Context, owner string) (out []Task, err error) {
	defer s.metrics.observe("list", time.Now(), &err)

	if owner == "" {
		return nil, errors.New("owner is required")
	}

	coll, err := s.collection()
	if err != nil {
		return nil, err
	}

	opCtx, cancel := context.WithTimeout(ctx, s.cfg.OpTimeout)
	defer cancel()

	cursor, err := coll.Find(opCtx,
		bson.D{{Key: "owner", Value: owner}},
		options.Find().SetSort(bson.D{
			{Key: "created_at", Value: 1},
			{Key: "_id", Value: 1},
		}),
	)
	if err != nil {
		return nil, storeError("querying tasks", err)
	}

	out = []Task{}
	if err := cursor.All(opCtx, &out); err != nil {
		return nil, storeError("reading tasks", err)
	}

	return out, nil
}

// Close disconnects the client. Safe to call on a store that never
// connected.
func (s *MongoStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}

	err := s.client.Disconnect(ctx)
	s.client = nil
	s.coll = nil
	s.connected = false

	if err != nil {
		return fmt.Errorf("disconnecting from mongodb: %w", err)
	}
	return nil
}

// collection returns the task collection handle, or ErrUnavailable when
// the store is not connected.
func (s *MongoStore) collection() (*mongo.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.connected {
		return nil, fmt.Errorf("%w: not connected", ErrUnavailable)
	}
	return s.coll, nil
}

// storeError classifies a driver error: transport-level failures map to
// ErrUnavailable so the caller can report a retryable service failure,
// everything else is wrapped as a permanent failure for this request.
func storeError(op string, err error) error {
	if mongo.IsTimeout(err) ||
		mongo.IsNetworkError(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
