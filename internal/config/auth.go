package config

import (
	"fmt"
	"strings"
)

// AuthConfig holds the single basic-auth user. The dashboard uses it to prefill the login form.
type AuthConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Realm    string `koanf:"realm"`
}

func (c *AuthConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Auth ---\n")
	b.WriteString(fmt.Sprintf("  auth.username: %s\n", c.Username))
	b.WriteString(fmt.Sprintf("  auth.password: %s\n", maskSecret(c.Password)))
	if c.Realm != "" {
		b.WriteString(fmt.Sprintf("  auth.realm: %s\n", c.Realm))
	}
	return b.String()
}

// Validate requires a complete user, as the product service needs one.
func (c *AuthConfig) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("auth.username is not configured")
	}
	if c.Password == "" {
		return fmt.Errorf("auth.password is not configured")
	}
	return nil
}

func maskSecret(s string) string {
	if s == "" {
		return "<not configured>"
	}
	return "****"
}
