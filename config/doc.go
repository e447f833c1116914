// Package config loads the service's env-driven deployment configuration
// into one immutable struct. See the env tags on the section structs for
// the full variable list; only DATABASE_URL and REDIS_URL are required.
package config
