// Package logging provides structured logging for the vBox client.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the client. It provides both general logging
// functions and specialized functions for protocol-specific logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (frame hex dumps, heartbeats, splitter state)
//   - Info: Normal operations (connections, requests, state changes)
//   - Warn: Non-fatal issues (connection drops, retries, malformed frames)
//   - Error: Fatal issues (login failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Connected to vBox",
//	    zap.String("remote_addr", "192.168.1.23:11501"),
//	    zap.String("version", "v2"),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
// Connection Logging:
//
//	logging.LogConnection(remoteAddr, "connected")
//	logging.LogConnection(remoteAddr, "disconnected")
//
// Frame Logging:
//
//	logging.LogFrame("sent", "RoomCount", msgID, frame)
//	logging.LogRawBytes("splitter residue", buf)
//
// # Configuration
//
// Logging is silent by default so CLI output stays clean. Set VBOX_LOG_LEVEL
// to enable it:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
