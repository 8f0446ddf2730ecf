// Package config handles configuration for the server component,
// including defaults, a JSON or YAML file overlay, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/zkpauth/internal/server/auth"
	"github.com/dmitrijs2005/zkpauth/internal/zkp/chaumpedersen"
)

// Config holds runtime settings for the zkpauth server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the public gRPC endpoint.
//   - EndpointAddrAdmin: bind address for /metrics and /healthz; empty disables it.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps registrations in memory only.
//   - Group: named group preset; GroupP/GroupQ/GroupG/GroupH override it with hex values.
//   - SessionFormat / SecretKey / SessionValidityDuration: session id issuance.
//   - AuthIDValidityDuration / SweepInterval: lifetime of pending proof rounds.
//   - RateLimitPerMinute / RateLimitBurst: per-peer limit; zero disables it.
//   - LogLevel / LogFormat: slog level and handler.
type Config struct {
	EndpointAddrGRPC        string
	EndpointAddrAdmin       string
	DatabaseDSN             string
	Group                   string
	GroupP                  string
	GroupQ                  string
	GroupG                  string
	GroupH                  string
	SessionFormat           string
	SecretKey               string
	SessionValidityDuration time.Duration
	AuthIDValidityDuration  time.Duration
	SweepInterval           time.Duration
	RateLimitPerMinute      int
	RateLimitBurst          int
	LogLevel                string
	LogFormat               string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrAdmin = ":9090"
	c.DatabaseDSN = ""
	c.Group = chaumpedersen.PresetRFC5114_2048
	c.SessionFormat = auth.FormatOpaque
	c.SessionValidityDuration = 1 * time.Hour
	c.AuthIDValidityDuration = 5 * time.Minute
	c.SweepInterval = 1 * time.Minute
	c.RateLimitPerMinute = 0
	c.RateLimitBurst = 0
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}

// GroupParams resolves the configured group. Explicit hex values win over
// the preset name.
func (c *Config) GroupParams() (*chaumpedersen.Params, error) {
	if c.GroupP != "" || c.GroupQ != "" || c.GroupG != "" || c.GroupH != "" {
		p, err := chaumpedersen.ParseHex(c.GroupP, c.GroupQ, c.GroupG, c.GroupH)
		if err != nil {
			return nil, err
		}
		if p.H == nil {
			return nil, errors.New("group parameter h is empty")
		}
		return p, nil
	}
	return chaumpedersen.Preset(c.Group)
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	if c.EndpointAddrGRPC == "" {
		return errors.New("grpc endpoint address is empty")
	}
	switch c.SessionFormat {
	case auth.FormatOpaque:
	case auth.FormatJWT:
		if c.SecretKey == "" {
			return errors.New("jwt sessions need a secret key")
		}
	default:
		return fmt.Errorf("unknown session format %q", c.SessionFormat)
	}
	if c.AuthIDValidityDuration < 0 || c.SessionValidityDuration < 0 || c.SweepInterval < 0 {
		return errors.New("durations must not be negative")
	}
	if c.RateLimitPerMinute < 0 || c.RateLimitBurst < 0 {
		return errors.New("rate limit must not be negative")
	}
	if _, err := c.GroupParams(); err != nil {
		return fmt.Errorf("group: %w", err)
	}
	return nil
}
