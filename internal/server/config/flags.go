package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/zkpauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-m string   admin HTTP bind address, empty disables it
//	-d string   PostgreSQL DSN
//	-g string   group preset (toy, rfc5114-1024-160, rfc5114-2048-256)
//	-f string   session format (opaque, jwt)
//	-s string   JWT HMAC secret key
//	-t int      session validity, minutes
//	-i int      auth_id validity, seconds
//	-w int      sweep interval, seconds
//	-r int      rate limit, requests per minute per peer
//	-b int      rate limit burst
//	-l string   log level
//	-o string   log format (json, text)
//
// Only flags from this list are taken from args, so flags owned by other
// components do not collide.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-m", "-d", "-g", "-f", "-s", "-t", "-i", "-w", "-r", "-b", "-l", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.EndpointAddrAdmin, "m", config.EndpointAddrAdmin, "address and port for metrics and health")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.Group, "g", config.Group, "group preset")
	fs.StringVar(&config.SessionFormat, "f", config.SessionFormat, "session format")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidity := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session validity (in minutes)")
	authIDValidity := fs.Int("i", int(config.AuthIDValidityDuration.Seconds()), "auth_id validity (in seconds)")
	sweepInterval := fs.Int("w", int(config.SweepInterval.Seconds()), "sweep interval (in seconds)")

	fs.IntVar(&config.RateLimitPerMinute, "r", config.RateLimitPerMinute, "requests per minute per peer")
	fs.IntVar(&config.RateLimitBurst, "b", config.RateLimitBurst, "rate limit burst")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "o", config.LogFormat, "log format")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Minute
	config.AuthIDValidityDuration = time.Duration(*authIDValidity) * time.Second
	config.SweepInterval = time.Duration(*sweepInterval) * time.Second
}
