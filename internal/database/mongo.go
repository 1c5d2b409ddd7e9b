package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/deppfellow/app-functions/internal/config"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultMongoDatabase = "app"

// Mongo wraps the document store client and the selected database.
type Mongo struct {
	Client *mongodriver.Client
	DB     *mongodriver.Database
	log    *zerolog.Logger
}

// NewMongo connects to MongoDB and pings the primary.
func NewMongo(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*Mongo, error) {
	uri := cfg.Storage.Mongo.URL
	if uri == "" {
		return nil, fmt.Errorf("mongo: empty storage.mongo.url")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, DatabasePingTimeout*time.Second)
	defer cancel()

	if err := cli.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	name := databaseFromURI(uri, cfg.Storage.Mongo.Database)
	logger.Info().Str("database", name).Msg("connected to mongo")

	return &Mongo{
		Client: cli,
		DB:     cli.Database(name),
		log:    logger,
	}, nil
}

// Ping checks the primary is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	m.log.Info().Msg("closing mongo connection")
	return m.Client.Disconnect(ctx)
}

// databaseFromURI takes the database name from the URI path, then the
// configured fallback, then defaultMongoDatabase.
func databaseFromURI(uri, fallback string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	if fallback != "" {
		return fallback
	}
	return defaultMongoDatabase
}
