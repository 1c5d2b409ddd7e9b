package model

import "github.com/deppfellow/app-functions/internal/validation"

// DefaultRole is the role of a standard user.
const DefaultRole = 1

// UserProfile is the stored profile of one person.
//
// Key is the storage key. It equals UID for profiles created by account sync,
// but administratively created records may carry any key.
type UserProfile struct {
	Key   string `json:"-" bson:"_id"`
	UID   string `json:"uid" bson:"uid"`
	Email string `json:"email" bson:"email"`
	Name  string `json:"name" bson:"name"`
	Image string `json:"image" bson:"image"`
	Role  int    `json:"role" bson:"role"`
}

// ProfileUpdate holds the mutable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Name  *string
	Image *string
}

// IsEmpty reports whether the update changes nothing.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Name == nil && u.Image == nil
}

// Apply returns p with the non-nil fields of u applied.
func (u ProfileUpdate) Apply(p UserProfile) UserProfile {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Image != nil {
		p.Image = *u.Image
	}
	return p
}

// ProfileResponse is the body returned by the profile endpoint.
type ProfileResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  int    `json:"role"`
	Image string `json:"image"`
	UID   string `json:"uid"`
}

// NewProfileResponse converts a stored profile to its wire form.
func NewProfileResponse(p UserProfile) ProfileResponse {
	return ProfileResponse{
		Email: p.Email,
		Name:  p.Name,
		Role:  p.Role,
		Image: p.Image,
		UID:   p.UID,
	}
}

// GetProfileRequest carries no payload; identity comes from the bearer token.
type GetProfileRequest struct{}

func (r *GetProfileRequest) Validate() error {
	return nil
}

// UpdateProfileRequest is the POST body. Absent or null fields keep their stored value.
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=100"`
	Image *string `json:"image" validate:"omitempty,max=2048"`
}

func (r *UpdateProfileRequest) Validate() error {
	return validation.Struct(r)
}

// Update converts the request into a ProfileUpdate.
func (r *UpdateProfileRequest) Update() ProfileUpdate {
	return ProfileUpdate{Name: r.Name, Image: r.Image}
}
