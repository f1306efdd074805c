// Package config provides configuration management for regroup.
//
// Configuration is read from an optional YAML file, overridden by
// REGROUP_* environment variables, completed with defaults and validated:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("regroup.yaml")
//
// Examples of environment overrides:
//
//   - REGROUP_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - REGROUP_CONVERT_GROUP_NAMES overrides convert.group_names (comma separated)
//   - REGROUP_RULESET_SOURCE overrides ruleset.source
//   - REGROUP_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Validation errors carry the dotted field path:
//
//	configuration validation failed with 2 errors:
//	  - ruleset.path: path is required when source is 'file'
//	  - ruleset.target: target "Netflix" must be one of convert.group_names, DIRECT or REJECT
//
// # Example Configuration
//
//	server:
//	  listen_address: "0.0.0.0:5555"
//
//	convert:
//	  group_names: ["OpenAI"]
//	  regions:
//	    - label: "01港"
//	      markers: ["港", "HK"]
//	    - label: "06美"
//	      markers: ["美", "US"]
//	  rate_pattern: '倍率:([\d.]+)'
//
//	ruleset:
//	  source: file
//	  path: ./openai.list
//	  watch: true
//
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
package config
