// Package logger configures the process-wide structured logger.
package logger

import (
	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// Init sets the log level and output format. JSON in production so log
// aggregation keeps working; human-readable text everywhere else.
func Init(level string, production bool) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if production {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
