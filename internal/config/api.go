package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// APIConfig points the dashboard at the product service.
type APIConfig struct {
	BaseURL string        `koanf:"baseurl"`
	Timeout time.Duration `koanf:"timeout"`
}

func (c *APIConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Product API ---\n")
	b.WriteString(fmt.Sprintf("  api.baseurl: %s\n", c.BaseURL))
	b.WriteString(fmt.Sprintf("  api.timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *APIConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.baseurl must be an absolute http(s) URL: %q", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid api timeout: %v", c.Timeout)
	}
	return nil
}
