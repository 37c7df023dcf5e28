package mongodb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client owns the mongo connection for the process lifetime. It is built
// once in main and injected; Connect is idempotent.
type Client struct {
	uri    string
	dbName string

	mu     sync.Mutex
	client *mongo.Client
}

func New(uri, dbName string) *Client {
	return &Client{uri: uri, dbName: dbName}
}

func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.uri))
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}

	c.client = client
	return nil
}

// Database panics if called before Connect; wiring happens at startup.
func (c *Client) Database() *mongo.Database {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		panic("mongodb: Database called before Connect")
	}
	return c.client.Database(c.dbName)
}

func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client = nil
	return err
}
