package config

import (
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/zkpauth/internal/zkp/chaumpedersen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	return &Config{
		EndpointAddrGRPC:        ":50051",
		EndpointAddrAdmin:       ":9090",
		Group:                   "rfc5114-2048-256",
		SessionFormat:           "opaque",
		SessionValidityDuration: 1 * time.Hour,
		AuthIDValidityDuration:  5 * time.Minute,
		SweepInterval:           1 * time.Minute,
		LogLevel:                "info",
		LogFormat:               "json",
	}
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, defaults(), &c)
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")
	assert.Equal(t, defaults(), c)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempFile(t, "cfg.yaml", "endpoint_addr_grpc: \":7000\"\ngroup: toy\n")
	os.Args = []string{"testbin", "-c", path, "-a", ":8000"}

	c := LoadConfig()

	assert.Equal(t, ":8000", c.EndpointAddrGRPC)
	assert.Equal(t, "toy", c.Group)
}

func TestGroupParams(t *testing.T) {
	t.Run("preset", func(t *testing.T) {
		c := defaults()
		c.Group = chaumpedersen.PresetToy
		p, err := c.GroupParams()
		require.NoError(t, err)
		assert.Equal(t, int64(23), p.P.Int64())
	})

	t.Run("hex overrides preset", func(t *testing.T) {
		c := defaults()
		c.GroupP, c.GroupQ, c.GroupG, c.GroupH = "17", "b", "4", "9"
		p, err := c.GroupParams()
		require.NoError(t, err)
		assert.Equal(t, int64(23), p.P.Int64())
		assert.Equal(t, int64(11), p.Q.Int64())
		assert.Equal(t, int64(9), p.H.Int64())
	})

	t.Run("hex without h", func(t *testing.T) {
		c := defaults()
		c.GroupP, c.GroupQ, c.GroupG = "17", "b", "4"
		_, err := c.GroupParams()
		assert.Error(t, err)
	})

	t.Run("unknown preset", func(t *testing.T) {
		c := defaults()
		c.Group = "modp-3"
		_, err := c.GroupParams()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"jwt with secret", func(c *Config) { c.SessionFormat, c.SecretKey = "jwt", "k" }, false},
		{"jwt without secret", func(c *Config) { c.SessionFormat = "jwt" }, true},
		{"unknown format", func(c *Config) { c.SessionFormat = "cookie" }, true},
		{"empty grpc address", func(c *Config) { c.EndpointAddrGRPC = "" }, true},
		{"negative ttl", func(c *Config) { c.AuthIDValidityDuration = -time.Second }, true},
		{"negative rate", func(c *Config) { c.RateLimitPerMinute = -1 }, true},
		{"bad group", func(c *Config) { c.Group = "nope" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
