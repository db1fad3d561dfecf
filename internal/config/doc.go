// Package config provides centralized configuration management for pollscope.
// It loads settings from several sources, validates them and exposes a
// typed Config to the rest of the application.
//
// # Configuration Sources
//
// Configuration is resolved in the following order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file (config.yaml, configs/config.yaml or POLL_CONFIG_FILE)
//	3. Default values (lowest priority)
//
// Binaries may call LoadEnvFiles first to populate the environment from a
// .env file. Variables already present in the environment are not replaced.
//
// # Environment Variables
//
// All environment variables use the POLL_ prefix followed by the section
// and field name:
//
//	POLL_SERVER_PORT=8080
//	POLL_SOURCE_FORMAT=csv
//	POLL_SOURCE_URL=https://docs.google.com/spreadsheets/d/e/.../pub?output=csv
//	POLL_SOURCE_REFRESH_INTERVAL=15m
//	POLL_LOGGING_LEVEL=debug
//	POLL_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Source Formats
//
// Source.Format selects how the poll table is read:
//
//	csv     published CSV export, requires Source.URL
//	xlsx    published XLSX export, requires Source.URL
//	sheets  Google Sheets API v4, requires Source.SheetID and an API key or credentials file
//
// A RefreshInterval of zero disables periodic refresh.
package config
