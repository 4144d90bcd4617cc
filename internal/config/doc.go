// Package config loads, normalizes, and validates murmur configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY and NOTION_TOKEN. The Config type centralizes every knob the
// daemon and CLI need, so scan roots, ledger location, and external service
// credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical extension sets, and clear validation errors.
package config
