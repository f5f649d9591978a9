// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Setup configures logrus' standard logger and returns it.
// format is "text" or "json"; level is any logrus level name.
func Setup(out io.Writer, level, format string) (*logrus.Logger, error) {
	logger := logrus.StandardLogger()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)

	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format %q (must be 'text' or 'json')", format)
	}

	if out != nil {
		logger.SetOutput(out)
	}
	return logger, nil
}
