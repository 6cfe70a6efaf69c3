package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if strings.TrimSpace(c.Token.Key) == "" {
		return fmt.Errorf("token.key must not be empty")
	}
	if len(c.Token.Key) < 16 {
		return fmt.Errorf("token.key must be at least 16 characters (got %d)", len(c.Token.Key))
	}

	if strings.TrimSpace(c.LocalStore.Path) == "" {
		return fmt.Errorf("local_store.path must not be empty")
	}

	if c.Ledger.CallTimeout <= 0 {
		return fmt.Errorf("ledger.call_timeout must be > 0 (got %v)", c.Ledger.CallTimeout)
	}

	return nil
}
