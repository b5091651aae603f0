package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/brauliobolano/LinkedInClone/config"
)

var ErrMissingCredentials = errors.New("mongo credentials are not configured: set MONGO_URI or MONGO_DB_USERNAME, MONGO_DB_PASSWORD and MONGO_HOST")

// DialFunc opens a client and waits until it is usable.
type DialFunc func(ctx context.Context, uri string) (*mongo.Client, error)

// Manager owns the single Mongo client of the process. The first successful
// Ensure establishes it; concurrent callers wait on the same attempt.
type Manager struct {
	cfg  config.MongoConfig
	log  *zap.Logger
	dial DialFunc

	mu     sync.Mutex
	client *mongo.Client
}

func NewManager(cfg config.MongoConfig, log *zap.Logger) *Manager {
	return &Manager{cfg: cfg, log: log, dial: ConnectMongo}
}

// NewManagerWithDialer is used where the connection must not touch a real server.
func NewManagerWithDialer(cfg config.MongoConfig, log *zap.Logger, dial DialFunc) *Manager {
	return &Manager{cfg: cfg, log: log, dial: dial}
}

// ConnectURI builds the connection string from configuration.
func ConnectURI(cfg config.MongoConfig) (string, error) {
	if cfg.URI != "" {
		return cfg.URI, nil
	}
	if cfg.Username == "" || cfg.Password == "" || cfg.Host == "" {
		return "", ErrMissingCredentials
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     cfg.Host,
		Path:     "/",
		RawQuery: cfg.Options,
	}
	return u.String(), nil
}

func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Ensure returns the live client, connecting first if needed.
func (m *Manager) Ensure(ctx context.Context) (*mongo.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return m.client, nil
	}

	uri, err := ConnectURI(m.cfg)
	if err != nil {
		return nil, err
	}

	m.log.Info("Connecting to MongoDB", zap.String("database", m.cfg.Database))
	client, err := m.dial(ctx, uri)
	if err != nil {
		m.log.Error("MongoDB connection error", zap.Error(err))
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	m.client = client
	m.log.Info("Connected to MongoDB", zap.String("database", m.cfg.Database))
	return client, nil
}

func (m *Manager) Database(ctx context.Context) (*mongo.Database, error) {
	client, err := m.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(m.cfg.Database), nil
}

func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client != nil
}

func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return nil
	}
	err := m.client.Disconnect(ctx)
	m.client = nil
	return err
}
