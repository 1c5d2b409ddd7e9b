package model

// Claims are the identity fields decoded from a verified bearer token.
type Claims struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// DefaultProfile synthesizes the profile returned for an authenticated user
// with no stored record. It is never persisted.
func DefaultProfile(c Claims) UserProfile {
	return UserProfile{
		UID:   c.UID,
		Email: c.Email,
		Name:  c.Name,
		Image: c.Picture,
		Role:  DefaultRole,
	}
}
