package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/invdash/internal/config/configloader"
)

var _ configloader.Validator = (*ProductServiceConfig)(nil)

// ProductServiceConfig configures cmd/product_service. Environment prefix: PRODUCT_SVC_.
type ProductServiceConfig struct {
	HTTPServer HTTPConfig       `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Log        LogConfig        `koanf:"log"`
	GRPC       GrpcServerConfig `koanf:"grpc"`
	Shutdown   ShutdownConfig   `koanf:"shutdown"`
	Auth       AuthConfig       `koanf:"auth"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
}

// ProductServiceDefaults are the lowest configuration layer of the product service.
func ProductServiceDefaults() map[string]any {
	return telemetryDefaults(map[string]any{
		"server.port":               8080,
		"server.maxheaderbytes":     1 << 20,
		"server.timeout.read":       "5s",
		"server.timeout.write":      "10s",
		"server.timeout.idle":       "60s",
		"server.timeout.readheader": "2s",
		"database.timeout":          "10s",
		"database.migrate":          true,
		"log.level":                 "info",
		"log.format":                "json",
		"grpc.enabled":              true,
		"grpc.port":                 "9090",
		"grpc.reflection":           false,
		"shutdown.timeout":          "30s",
		"auth.username":             "demo",
		"auth.password":             "password",
		"auth.realm":                "products",
	})
}

// LoadProductService loads the product service configuration from all layers.
func LoadProductService() (*ProductServiceConfig, error) {
	return configloader.Load[*ProductServiceConfig]("product_svc", ProductServiceDefaults())
}

func (c *ProductServiceConfig) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Database.String())
	b.WriteString(c.Log.String())
	b.WriteString("\n--- gRPC ---\n")
	b.WriteString(fmt.Sprintf("  grpc.enabled: %t\n", c.GRPC.Enabled))
	b.WriteString(fmt.Sprintf("  grpc.port: %s\n", c.GRPC.Port))
	b.WriteString(fmt.Sprintf("  grpc.reflection: %t\n", c.GRPC.ReflectionEnabled))
	b.WriteString(c.Shutdown.String())
	b.WriteString(c.Auth.String())
	b.WriteString(c.Telemetry.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *ProductServiceConfig) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.GRPC.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Telemetry.Validate()
}
