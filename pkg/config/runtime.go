package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

const defaultShutdownTimeout = 10 * time.Second

// ShutdownConfig bounds how long servers may take to drain on shutdown.
// A zero timeout falls back to ten seconds.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Shutdown ---\n")
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("shutdown timeout must not be negative: %s", c.Timeout)
	}
	if c.Timeout == 0 {
		c.Timeout = defaultShutdownTimeout
	}
	return nil
}

// PProfConfig enables the net/http/pprof endpoints on a separate listener.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *PProfConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- PProf ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	if c.Enabled {
		b.WriteString(fmt.Sprintf("  address: %s\n", c.Addr))
	}
	return b.String()
}

func (c *PProfConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("pprof is enabled but address %q is not host:port: %w", c.Addr, err)
	}
	return nil
}
