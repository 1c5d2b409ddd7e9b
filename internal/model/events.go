package model

// AccountCreatedEvent is emitted by the identity provider when an account is created.
type AccountCreatedEvent struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
}

// Profile builds the profile inserted for a never-seen account, keyed by uid.
func (e AccountCreatedEvent) Profile() UserProfile {
	return UserProfile{
		Key:   e.UID,
		UID:   e.UID,
		Email: e.Email,
		Name:  e.DisplayName,
		Image: e.PhotoURL,
		Role:  DefaultRole,
	}
}

// NewsCreatedEvent describes a newly created news document. Timestamp is
// whatever the producer wrote: a string, a number, or nothing.
type NewsCreatedEvent struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Timestamp any    `json:"timestamp,omitempty"`
}

// NewsNotification is broadcast to the news topic.
type NewsNotification struct {
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
	ID        string `json:"id"`
}

// WelcomeEmail is the payload of the welcome email task.
type WelcomeEmail struct {
	To   string `json:"to"`
	Name string `json:"name"`
}
