// Package logging configures log/slog for regroup.
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
// Records logged with a context carry the request ID set by the HTTP
// middleware:
//
//	ctx = logging.WithRequestID(ctx, "3f1c...")
//	logger.InfoContext(ctx, "conversion completed", "proxies", 12)
//
// Proxy credentials (password, uuid, psk and similar keys) are masked
// before they reach the output.
package logging
