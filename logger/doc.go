// Package logger provides structured logging for platform services
// using zerolog.
//
// Every component receives a *Logger in its constructor and tags itself
// with WithComponent. Fields are passed as maps so call sites stay short:
//
//	log := logger.New(&cfg, "api").WithComponent("cache")
//	log.Warn("cache unavailable", logger.ErrorFields("get", err))
package logger
