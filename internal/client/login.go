package client

import (
	"context"
	"fmt"

	"github.com/abgdnv/invdash/internal/dashboard"
)

// Login stores the credentials and probes /health with them. If the probe
// fails the credentials are cleared and the error matches dashboard.ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, username, password string) error {
	c.creds.Set(username, password)
	if err := c.Health(ctx); err != nil {
		c.creds.Clear()
		c.logger.WarnContext(ctx, "Login failed", "user", username, "error", err)
		return fmt.Errorf("%w: %w", dashboard.ErrInvalidCredentials, err)
	}
	c.logger.InfoContext(ctx, "Logged in", "user", username)
	return nil
}

// Logout forgets the stored credentials.
func (c *Client) Logout() {
	c.creds.Clear()
}

// LoggedIn reports whether credentials are stored.
func (c *Client) LoggedIn() bool {
	_, _, ok := c.creds.Get()
	return ok
}
