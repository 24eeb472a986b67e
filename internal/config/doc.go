// Package config provides the application configuration for the tabkit
// command line tools. It is distinct from package settings, which parses the
// INI settings files describing individual export jobs; this package only
// covers how the tools themselves run (logging, working directories).
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. An optional YAML config file
//	3. Built-in defaults (lowest priority)
//
// The sources are merged field by field: a later source only fills fields
// the earlier ones left empty.
//
// # Environment Variables
//
// All environment variables follow the pattern TABKIT_* for namespacing:
//
//	TABKIT_LOGGING_LEVEL=debug
//	TABKIT_LOGGING_OUTPUT=both
//	TABKIT_PATHS_DATA_DIR=/srv/statements/data
//	TABKIT_CONFIG=/etc/tabkit/tabkit.yaml
//
// # Config File
//
// Without an explicit TABKIT_CONFIG path, tabkit.yaml and config/tabkit.yaml
// are probed relative to the working directory:
//
//	logging:
//	  level: info
//	  output: both
//	  file_path: logs/tabkit.log
//	paths:
//	  data_dir: data
//	  logs_dir: logs
//	  archive_dir: archive
//
// The merged configuration is validated before use; an unknown log level or
// output mode fails Load with a descriptive error.
package config
