package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/zkpauth/internal/flagx"
	"github.com/dmitrijs2005/zkpauth/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk form of Config. Duration fields accept strings
// such as "5m" as well as integer nanoseconds. Only fields present in the
// file override the running Config.
type FileConfig struct {
	EndpointAddrGRPC        *string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	EndpointAddrAdmin       *string         `json:"endpoint_addr_admin" yaml:"endpoint_addr_admin"`
	DatabaseDSN             *string         `json:"database_dsn" yaml:"database_dsn"`
	Group                   *string         `json:"group" yaml:"group"`
	GroupP                  *string         `json:"group_p" yaml:"group_p"`
	GroupQ                  *string         `json:"group_q" yaml:"group_q"`
	GroupG                  *string         `json:"group_g" yaml:"group_g"`
	GroupH                  *string         `json:"group_h" yaml:"group_h"`
	SessionFormat           *string         `json:"session_format" yaml:"session_format"`
	SecretKey               *string         `json:"secret_key" yaml:"secret_key"`
	SessionValidityDuration *timex.Duration `json:"session_validity_duration" yaml:"session_validity_duration"`
	AuthIDValidityDuration  *timex.Duration `json:"auth_id_validity_duration" yaml:"auth_id_validity_duration"`
	SweepInterval           *timex.Duration `json:"sweep_interval" yaml:"sweep_interval"`
	RateLimitPerMinute      *int            `json:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`
	RateLimitBurst          *int            `json:"rate_limit_burst" yaml:"rate_limit_burst"`
	LogLevel                *string         `json:"log_level" yaml:"log_level"`
	LogFormat               *string         `json:"log_format" yaml:"log_format"`
}

// parseFile overlays values from the file named by -c or -config in args.
// Files ending in .yaml or .yml are read as YAML, anything else as JSON.
// It panics if the file cannot be read or decoded.
func parseFile(config *Config, args []string) {

	path := flagx.ConfigFileFlag(args)

	// nothing to load
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrAdmin, c.EndpointAddrAdmin)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.Group, c.Group)
	setString(&config.GroupP, c.GroupP)
	setString(&config.GroupQ, c.GroupQ)
	setString(&config.GroupG, c.GroupG)
	setString(&config.GroupH, c.GroupH)
	setString(&config.SessionFormat, c.SessionFormat)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	if c.SessionValidityDuration != nil {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.AuthIDValidityDuration != nil {
		config.AuthIDValidityDuration = c.AuthIDValidityDuration.Duration
	}
	if c.SweepInterval != nil {
		config.SweepInterval = c.SweepInterval.Duration
	}
	if c.RateLimitPerMinute != nil {
		config.RateLimitPerMinute = *c.RateLimitPerMinute
	}
	if c.RateLimitBurst != nil {
		config.RateLimitBurst = *c.RateLimitBurst
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
