package email

import "context"

// SendWelcomeEmail greets a newly synced account.
func (c *Client) SendWelcomeEmail(ctx context.Context, to, name string) error {
	if name == "" {
		name = "there"
	}

	return c.SendEmail(ctx, to, "Welcome aboard!", TemplateWelcome, map[string]string{
		"UserName": name,
	})
}
