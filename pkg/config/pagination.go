package config

import (
	"fmt"
	"strings"
)

// PaginationConfig bounds the page size accepted by list endpoints.
// MaxLimit of zero leaves the limit uncapped.
type PaginationConfig struct {
	MaxLimit int `koanf:"maxlimit"`
}

// String returns a string representation of the pagination configuration.
func (c *PaginationConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Pagination ---\n")
	if c.MaxLimit == 0 {
		b.WriteString("  maxlimit: <unlimited>\n")
	} else {
		b.WriteString(fmt.Sprintf("  maxlimit: %d\n", c.MaxLimit))
	}
	return b.String()
}

func (c *PaginationConfig) Validate() error {
	if c.MaxLimit < 0 {
		return fmt.Errorf("pagination max limit must not be negative: %d", c.MaxLimit)
	}
	return nil
}
