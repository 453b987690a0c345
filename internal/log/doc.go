// Package log builds the slog loggers used by waveload.
//
// Every logger is wrapped in a RedactingHandler, which masks attribute values
// that look like credentials before they reach the output:
//   - request headers passed through from profiles (Authorization, Cookie)
//   - AWS credentials seen by the dns command (access key IDs, secret keys,
//     session tokens)
//   - bearer and basic auth values, regardless of the attribute key
//
// # Usage
//
//	logger := log.New(os.Stderr, log.Options{Verbose: true})
//	logger.Info("profile loaded", "authorization", "Bearer abc") // masked
//	slog.SetDefault(logger)
package log
