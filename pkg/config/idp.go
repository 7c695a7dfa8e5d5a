package config

import (
	"fmt"
	"strings"
	"time"
)

// IdP configures bearer token verification. When JwksURL is empty the service
// trusts the caller identity forwarded by the gateway instead.
type IdP struct {
	JwksURL     string        `koanf:"jwksurl"`
	Issuer      string        `koanf:"issuer"`
	ClientID    string        `koanf:"clientid"`
	MinInterval time.Duration `koanf:"mininterval"`
}

// Enabled reports whether token verification is configured.
func (c *IdP) Enabled() bool {
	return c.JwksURL != ""
}

// String returns a string representation of the IdP configuration.
func (c *IdP) String() string {
	var b strings.Builder
	b.WriteString("\n--- IdP ---\n")
	if !c.Enabled() {
		b.WriteString("  mode: gateway header\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("  jwksurl: %s\n", c.JwksURL))
	b.WriteString(fmt.Sprintf("  issuer: %s\n", c.Issuer))
	b.WriteString(fmt.Sprintf("  clientid: %s\n", c.ClientID))
	b.WriteString(fmt.Sprintf("  mininterval: %s\n", c.MinInterval))
	return b.String()
}

func (c *IdP) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Issuer == "" {
		return fmt.Errorf("IdP issuer cannot be empty")
	}
	if c.ClientID == "" {
		return fmt.Errorf("IdP client ID cannot be empty")
	}
	if c.MinInterval <= 0 {
		return fmt.Errorf("IdP minimum interval must be greater than zero")
	}
	return nil
}
