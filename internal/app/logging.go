package app

import (
	"os"

	"github.com/sirupsen/logrus"
)

// ConfigureLogging sets the level and format of the logrus standard logger.
// verbose forces debug level.
func ConfigureLogging(level string, verbose bool) error {
	lvl := logrus.InfoLevel
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return err
		}
		lvl = parsed
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}
