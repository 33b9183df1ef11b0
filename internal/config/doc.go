// Package config provides configuration loading and validation for the
// softphone media engine. It handles YAML-based configuration with struct
// validation covering the transport, audio graph, recording, and monitoring
// parameters.
package config
