package config

import (
	"fmt"
	"net"
)

// Validate performs validation on the complete configuration. The
// offering terms themselves are validated separately by Terms, which
// has the converted numeric values to work with.
func Validate(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := validateJournalConfig(&config.Journal); err != nil {
		return fmt.Errorf("journal config validation failed: %w", err)
	}

	if err := validateRatesConfig(config); err != nil {
		return fmt.Errorf("rates config validation failed: %w", err)
	}

	if _, err := config.Terms(); err != nil {
		return fmt.Errorf("offering config validation failed: %w", err)
	}

	return nil
}

func validateServerConfig(server *ServerConfig) error {
	if server.Addr == "" {
		return fmt.Errorf("addr cannot be empty")
	}
	if _, _, err := net.SplitHostPort(server.Addr); err != nil {
		return fmt.Errorf("addr %q is not host:port: %w", server.Addr, err)
	}
	return nil
}

func validateJournalConfig(journal *JournalConfig) error {
	if journal.Enabled && journal.Path == "" {
		return fmt.Errorf("path cannot be empty when the journal is enabled")
	}
	return nil
}

func validateRatesConfig(config *Config) error {
	if config.Rates.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", config.Rates.CacheSize)
	}
	refresh, err := config.RatesRefresh()
	if err != nil {
		return fmt.Errorf("invalid refresh_interval %q: %w", config.Rates.RefreshInterval, err)
	}
	if refresh <= 0 {
		return fmt.Errorf("refresh_interval must be positive, got %s", refresh)
	}
	return nil
}
