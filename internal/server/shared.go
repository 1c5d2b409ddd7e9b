package server

import (
	"sync"

	"github.com/deppfellow/app-functions/internal/config"
	loggerPkg "github.com/deppfellow/app-functions/internal/logger"
	"github.com/rs/zerolog"
)

type singleton struct {
	mu       sync.Mutex
	instance *Server
}

func (s *singleton) get(build func() (*Server, error)) (*Server, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.instance != nil {
		return s.instance, nil
	}

	instance, err := build()
	if err != nil {
		return nil, err
	}
	s.instance = instance
	return instance, nil
}

var shared singleton

// Shared returns the process-wide Server, creating it on first use.
// Later calls return the existing instance and ignore their arguments.
// A failed initialization is not cached.
func Shared(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	return shared.get(func() (*Server, error) {
		return New(cfg, logger, loggerService)
	})
}
