// Package config loads, normalizes, and validates ballotlink configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BALLOTLINK_SKIP_PATTERN. The Config type centralizes every knob the linker
// and CLI need: where outputs and logs go, whether runs are recorded, which
// ballot choices carry no identity, and how logging is formatted.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, a compilable skip pattern, and clear validation errors.
package config
