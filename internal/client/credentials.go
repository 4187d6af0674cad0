package client

import "sync"

// Credentials holds the basic-auth user attached to every request.
type Credentials struct {
	mu       sync.RWMutex
	username string
	password string
	set      bool
}

// credentials is the process-wide holder used by clients built without WithCredentials.
var credentials = &Credentials{}

// DefaultCredentials returns the process-wide credential holder.
func DefaultCredentials() *Credentials {
	return credentials
}

func (c *Credentials) Set(username, password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.username, c.password, c.set = username, password, true
}

func (c *Credentials) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.username, c.password, c.set = "", "", false
}

// Get returns the stored user. ok is false when nothing is set.
func (c *Credentials) Get() (username, password string, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username, c.password, c.set
}
