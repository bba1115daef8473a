// Package config provides centralized configuration management for the
// lead/lag analysis service. It handles loading configuration from multiple
// sources, validation, and provides a type-safe API for accessing
// configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern LEADLAG_* for namespacing:
//
//	LEADLAG_SERVER_PORT=8080
//	LEADLAG_LOGGING_LEVEL=info
//	LEADLAG_ANALYSIS_MAX_SHIFT=12
//	LEADLAG_PATHS_RESULTS_DIR=results
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
