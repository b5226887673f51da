// Package logger provides the application-wide structured logger:
//   - a zap.SugaredLogger global with a runtime-adjustable level,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - leveled convenience functions that read the logger from a context.
package logger
