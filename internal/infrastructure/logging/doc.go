// Package logging provides structured logging for the Gray Logic Tuya bridge.
//
// It wraps log/slog so every component logs the same way:
//
//   - JSON output for production, text for development
//   - service and version attributes on every entry
//   - level filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.With("component", "tuya").Info("select added", "unique_id", id)
//
// Never log MQTT passwords or InfluxDB tokens.
package logging
