package testutil

import (
	"io"

	"github.com/sirupsen/logrus"
)

// QuietLogger returns a logrus logger that discards everything. Tests pass
// it wherever production code requires a logger.
func QuietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
