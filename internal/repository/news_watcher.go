package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/app-functions/internal/model"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const newsCollection = "news"

// NewsHandler receives each inserted news document.
type NewsHandler func(ctx context.Context, evt model.NewsCreatedEvent) error

// MongoNewsWatcher turns inserts on the "news" collection into events.
// It needs a replica set, since change streams are unavailable on standalone servers.
type MongoNewsWatcher struct {
	news   *mongodriver.Collection
	logger *zerolog.Logger
}

func NewMongoNewsWatcher(db *mongodriver.Database, logger *zerolog.Logger) *MongoNewsWatcher {
	return &MongoNewsWatcher{news: db.Collection(newsCollection), logger: logger}
}

type newsChange struct {
	FullDocument bson.M `bson:"fullDocument"`
}

// Watch blocks until ctx is cancelled or the stream fails. Handler errors are
// logged and do not stop the stream.
func (w *MongoNewsWatcher) Watch(ctx context.Context, handle NewsHandler) error {
	pipeline := mongodriver.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "operationType", Value: "insert"}}}},
	}

	stream, err := w.news.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return fmt.Errorf("mongo watch news: %w", err)
	}
	defer stream.Close(context.Background())

	w.logger.Info().Str("collection", newsCollection).Msg("watching for news inserts")

	for stream.Next(ctx) {
		var change newsChange
		if err := stream.Decode(&change); err != nil {
			w.logger.Error().Err(err).Msg("failed to decode news change")
			continue
		}

		evt := NewsEventFromDocument(change.FullDocument)
		if err := handle(ctx, evt); err != nil {
			w.logger.Error().Err(err).Str("news_id", evt.ID).Msg("failed to dispatch news event")
		}
	}

	if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mongo news stream: %w", err)
	}
	return nil
}

// NewsEventFromDocument extracts id, title and timestamp from a news document.
// BSON dates become time.Time; other timestamp values pass through untouched.
func NewsEventFromDocument(doc bson.M) model.NewsCreatedEvent {
	evt := model.NewsCreatedEvent{}

	switch id := doc["_id"].(type) {
	case primitive.ObjectID:
		evt.ID = id.Hex()
	case string:
		evt.ID = id
	case nil:
	default:
		evt.ID = fmt.Sprint(id)
	}

	if title, ok := doc["title"].(string); ok {
		evt.Title = title
	}

	switch ts := doc["timestamp"].(type) {
	case primitive.DateTime:
		evt.Timestamp = ts.Time().UTC().Format(time.RFC3339)
	case primitive.Timestamp:
		evt.Timestamp = int64(ts.T)
	default:
		evt.Timestamp = ts
	}

	return evt
}
