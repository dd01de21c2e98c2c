// Package logging provides structured debug logging for superchat.
//
// The chat UI owns the terminal, so diagnostics go to a JSON-lines file
// instead: {state dir}/debug.log, written only when logging is enabled
// (--debug or logging.enabled). Otherwise callers use [NopLogger].
//
// # Features
//
//   - JSON-formatted structured logging via slog
//   - Configurable log levels (DEBUG, INFO, WARN, ERROR)
//   - Context propagation (session ID, slot and model, phase)
//   - Size-based rotation with numbered backups
//   - Reading and filtering entries back for `superchat logs`
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(config.StateDir(), "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	log := logger.WithSession(sessionID).WithPhase("debate")
//	log.WithSlot(2, "gemini-flash").Info("dispatch completed", "input_tokens", 812)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"dispatch completed","session_id":"...","phase":"debate","slot":2,"model":"gemini-flash","input_tokens":812}
//
// # Reading Logs
//
//	entries, err := logging.ReadEntries(config.StateDir())
//	recent := logging.Filter{MinLevel: "warn", Since: time.Now().Add(-time.Hour)}.Apply(entries)
package logging
