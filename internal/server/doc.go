// Package server implements the HTTP API for monitoring and managing the
// media engine. It exposes health, session, configuration, and statistics
// endpoints alongside Prometheus metrics.
package server
