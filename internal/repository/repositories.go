package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/app-functions/internal/config"
	"github.com/deppfellow/app-functions/internal/server"
)

// Repositories groups every repository the services depend on.
type Repositories struct {
	Profiles ProfileRepository

	// News is set only for the mongo driver.
	News *MongoNewsWatcher
}

// NewRepositories builds the repositories for the configured storage driver.
func NewRepositories(s *server.Server) (*Repositories, error) {
	switch s.Config.Storage.Driver {
	case config.StoragePostgres:
		if s.DB == nil {
			return nil, fmt.Errorf("postgres driver selected but no database pool")
		}
		return &Repositories{Profiles: NewPostgresProfileRepository(s.DB.Pool)}, nil

	case config.StorageMongo:
		if s.Mongo == nil {
			return nil, fmt.Errorf("mongo driver selected but no mongo client")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		profiles, err := NewMongoProfileRepository(ctx, s.Mongo.DB)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Profiles: profiles,
			News:     NewMongoNewsWatcher(s.Mongo.DB, s.Logger),
		}, nil

	default:
		s.Logger.Warn().Msg("using in-memory profile storage, data is lost on restart")
		return &Repositories{Profiles: NewMemoryProfileRepository()}, nil
	}
}
