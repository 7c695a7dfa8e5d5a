package config

import (
	"fmt"
	"strings"
	"time"
)

// Driver identifies the storage backend selected by the database URL scheme.
type Driver string

const (
	DriverMongo    Driver = "mongodb"
	DriverPostgres Driver = "postgres"
	DriverMemory   Driver = "memory"
)

const defaultDatabaseName = "catalog"

type DatabaseConfig struct {
	URL     string        `koanf:"url"`
	Name    string        `koanf:"name"`
	Timeout time.Duration `koanf:"timeout"`
}

// String returns a string representation of the database configuration with credentials masked.
func (c *DatabaseConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Database ---\n")
	b.WriteString(fmt.Sprintf("  url: %s\n", MaskURL(c.URL)))
	b.WriteString(fmt.Sprintf("  name: %s\n", c.Name))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *DatabaseConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("database URL is not configured")
	}
	if c.Driver() == "" {
		return fmt.Errorf("database URL must start with 'mongodb://', 'postgres://' or 'memory://': %s", MaskURL(c.URL))
	}
	if c.Driver() != DriverMemory && c.Timeout <= 0 {
		return fmt.Errorf("database connect timeout is not configured")
	}
	if c.Name == "" {
		c.Name = defaultDatabaseName
	}
	return nil
}

// Driver resolves the storage backend from the URL scheme.
// Returns an empty Driver if the scheme is not supported.
func (c *DatabaseConfig) Driver() Driver {
	switch {
	case strings.HasPrefix(c.URL, "mongodb://"), strings.HasPrefix(c.URL, "mongodb+srv://"):
		return DriverMongo
	case strings.HasPrefix(c.URL, "postgres://"), strings.HasPrefix(c.URL, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(c.URL, "memory://"):
		return DriverMemory
	default:
		return ""
	}
}

// MaskURL hides the credentials part of a connection URL.
func MaskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	// Mask the URL by replacing the username and password with "****"
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		scheme := ""
		if i := strings.Index(parts[0], "://"); i >= 0 {
			scheme = parts[0][:i+3]
		}
		return scheme + "****@" + parts[1]
	}
	if strings.HasPrefix(url, "memory://") {
		return url
	}
	return "****"
}
