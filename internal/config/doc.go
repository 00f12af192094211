// Package config loads, normalizes, and validates ttsprep configuration data.
//
// It supplies recipe defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DL_DIR, TTSPREP_STAGE and TTSPREP_STOP_STAGE. The Config type centralizes
// every knob the stage runner and CLI need, so the download root, the data
// tree, the recipe scripts and the external tool names are discovered in one
// pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, a validated stage range, and clear validation errors.
package config
