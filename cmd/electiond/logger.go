// logger.go - Structured logging setup for the election daemon
package main

import "github.com/opencore/govote/internal/govlog"

// initLogger configures the process-wide zerolog logger from the daemon's
// config, routing every subsequent log line in this binary and in the
// internal packages it calls through the same sink.
func initLogger(cfg *Config) {
	govlog.Init(cfg.LogLevel, cfg.LogFile)
}
