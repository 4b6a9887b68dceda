package logging

import (
	"github.com/sirupsen/logrus"
)

// Log is the shared application logger. Setup must be called once from main;
// before that it behaves as a default logrus logger, which keeps tests quiet
// about ordering.
var Log = logrus.New()

// Setup configures the shared logger from the configured level and environment.
func Setup(level string, production bool) {
	if production {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	Log.SetLevel(parsed)
}
