// Package handler is the first layer after the router.
//
// It binds and validates requests with the validation package,
// calls the service layer and writes the response.
package handler

import (
	"github.com/deppfellow/app-functions/internal/server"
	"github.com/deppfellow/app-functions/internal/service"
)

// Handlers groups every HTTP handler for router setup.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Profile *ProfileHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Profile: NewProfileHandler(s, services.Profile),
	}
}
