// Package log constructs the application logger.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a logrus logger writing text lines to stderr, keeping
// stdout free for data output such as the summary table. Verbose enables
// debug-level logging.
func NewLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	log.Level = logrus.InfoLevel
	if verbose {
		log.Level = logrus.DebugLevel
	}
	log.Out = os.Stderr
	return log
}
