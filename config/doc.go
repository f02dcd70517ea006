// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package config loads and validates the application configuration.

Load reads an optional YAML file (via -config) and applies environment
variable overrides through cleanenv:

	cfg, err := config.Load(os.Args[1:])

Every setting has an env tag; see the struct fields for names and
defaults. Validation rejects a missing ADMIN_KEY and incomplete alert
channel settings when alerting is enabled.
*/
package config
