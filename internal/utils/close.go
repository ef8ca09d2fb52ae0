package utils

import (
	"io"

	"github.com/MrSnakeDoc/reel/internal/logger"
)

// maxDrain caps how much of an unread body is discarded before closing.
const maxDrain = 64 << 10

// DrainClose discards the rest of rc and closes it so the underlying
// connection goes back to the pool. Errors are ignored.
func DrainClose(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, maxDrain))
	_ = rc.Close()
}

// CloseLogged closes c and logs any error under the given name.
// Use on shutdown paths where a failed close is worth a warning.
func CloseLogged(c io.Closer, log logger.Logger, name string) {
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("resource", name), logger.Error(err))
		return
	}
	log.Debug("closed", logger.String("resource", name))
}
