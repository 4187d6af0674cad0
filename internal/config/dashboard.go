package config

import (
	"strings"

	"github.com/abgdnv/invdash/internal/config/configloader"
)

var _ configloader.Validator = (*DashboardConfig)(nil)

// DashboardConfig configures cmd/dashboard. Environment prefix: DASHBOARD_.
type DashboardConfig struct {
	API            APIConfig            `koanf:"api"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
	Log            LogConfig            `koanf:"log"`
	Display        DisplayConfig        `koanf:"display"`
	Telemetry      TelemetryConfig      `koanf:"telemetry"`
	// Login holds the values the login form is prefilled with. Both may be empty.
	Login AuthConfig `koanf:"login"`
}

// DashboardDefaults are the lowest configuration layer of the dashboard.
func DashboardDefaults() map[string]any {
	return telemetryDefaults(map[string]any{
		"api.baseurl":                        "http://localhost:8080/api",
		"api.timeout":                        "10s",
		"circuitbreaker.consecutivefailures": 5,
		"circuitbreaker.errorratepercent":    60,
		"circuitbreaker.opentimeout":         "5s",
		"circuitbreaker.maxrequests":         3,
		"log.level":                          "info",
		"log.format":                         "json",
		"log.file":                           "dashboard.log",
		"display.currencysymbol":             "₹",
		"display.locale":                     "en",
		"login.username":                     "demo",
		"login.password":                     "password",
	})
}

// LoadDashboard loads the dashboard configuration from all layers.
func LoadDashboard() (*DashboardConfig, error) {
	return configloader.Load[*DashboardConfig]("dashboard", DashboardDefaults())
}

func (c *DashboardConfig) String() string {
	var b strings.Builder
	b.WriteString(c.API.String())
	b.WriteString(c.CircuitBreaker.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.Display.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Login.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *DashboardConfig) Validate() error {
	if err := c.API.Validate(); err != nil {
		return err
	}
	if err := c.CircuitBreaker.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Display.Validate(); err != nil {
		return err
	}
	return c.Telemetry.Validate()
}
