package handler

import (
	"net/http"

	"github.com/deppfellow/app-functions/internal/errs"
	"github.com/deppfellow/app-functions/internal/middleware"
	"github.com/deppfellow/app-functions/internal/model"
	"github.com/deppfellow/app-functions/internal/server"
	"github.com/deppfellow/app-functions/internal/service"
	"github.com/labstack/echo/v4"
)

// ProfileHandler serves the caller's own profile.
type ProfileHandler struct {
	Handler
	profiles *service.ProfileService
}

func NewProfileHandler(s *server.Server, profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		Handler:  NewHandler(s),
		profiles: profiles,
	}
}

// Routes returns the GET and POST handlers, for use with ByMethod.
func (h *ProfileHandler) Routes() []MethodRoute {
	return []MethodRoute{
		{
			Method: http.MethodGet,
			Handler: Handle(h.Handler, h.GetProfile, http.StatusOK, func() *model.GetProfileRequest {
				return &model.GetProfileRequest{}
			}),
		},
		{
			Method: http.MethodPost,
			Handler: Handle(h.Handler, h.UpdateProfile, http.StatusOK, func() *model.UpdateProfileRequest {
				return &model.UpdateProfileRequest{}
			}),
		},
	}
}

// GetProfile returns the stored profile, or a default built from the token.
func (h *ProfileHandler) GetProfile(c echo.Context, _ *model.GetProfileRequest) (model.ProfileResponse, error) {
	claims, err := requireClaims(c)
	if err != nil {
		return model.ProfileResponse{}, err
	}

	profile, err := h.profiles.Get(c.Request().Context(), claims)
	if err != nil {
		return model.ProfileResponse{}, err
	}
	return model.NewProfileResponse(profile), nil
}

// UpdateProfile merges name and image into the stored profile.
func (h *ProfileHandler) UpdateProfile(c echo.Context, req *model.UpdateProfileRequest) (model.ProfileResponse, error) {
	claims, err := requireClaims(c)
	if err != nil {
		return model.ProfileResponse{}, err
	}

	profile, err := h.profiles.Update(c.Request().Context(), claims, req.Update())
	if err != nil {
		return model.ProfileResponse{}, err
	}
	return model.NewProfileResponse(profile), nil
}

func requireClaims(c echo.Context) (model.Claims, error) {
	claims, ok := middleware.GetClaims(c)
	if !ok || claims.UID == "" {
		return model.Claims{}, errs.NewForbiddenError("Unauthorized", false)
	}
	return claims, nil
}
