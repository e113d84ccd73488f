package disney

import (
	"context"
	"encoding/json"
)

// Client composes the session, the UI driver and the replay fast path into
// the surface the polling loop consumes.
type Client struct {
	session *Session
	driver  *Driver
	replay  *ReplayClient
}

// NewClient creates the full availability client for a resort
func NewClient(resort Resort, showBrowser bool) *Client {
	session := NewSession(resort, showBrowser)
	driver := NewDriver(session)
	return &Client{
		session: session,
		driver:  driver,
		replay:  NewReplayClient(driver, driver),
	}
}

// Session exposes the underlying session for credential management
func (c *Client) Session() *Session {
	return c.session
}

// EnsureSession makes the authenticated browser session ready
func (c *Client) EnsureSession(ctx context.Context) error {
	return c.session.Ensure(ctx)
}

// Search performs a full UI-driven availability search
func (c *Client) Search(ctx context.Context, partySize int, date string) (json.RawMessage, error) {
	return c.driver.Search(ctx, partySize, date)
}

// Replay performs a captured-header availability fetch, falling back to a
// full search when needed
func (c *Client) Replay(ctx context.Context, partySize int, date string) (json.RawMessage, error) {
	return c.replay.Replay(ctx, partySize, date)
}

// Close releases the browser
func (c *Client) Close() {
	c.session.Close()
}
