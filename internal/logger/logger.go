// Package logger builds the process-wide zap logger. Components receive
// it as a constructor parameter; tests pass zap.NewNop().
package logger

import "go.uber.org/zap"

// New returns a console logger writing to stderr. Verbose lowers the
// level to debug; otherwise info and above are emitted.
func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if verbose {
		cfg.Level.SetLevel(zap.DebugLevel)
	} else {
		cfg.Level.SetLevel(zap.InfoLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}
