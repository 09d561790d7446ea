package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Init configures the global logrus logger. format is "json" or "text"; when
// empty, JSON is used in production.
func Init(level, format string, production bool) {
	logrus.SetOutput(os.Stdout)

	switch {
	case strings.EqualFold(format, "json"), format == "" && production:
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", level)
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	logrus.Info("Logger initialized")
}
