package config

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// InitLogger builds the JSON logger used everywhere. Unknown levels fall
// back to info.
func InitLogger(level string) *logrus.Logger {
	return initLogger(level, os.Stdout)
}

func initLogger(level string, out io.Writer) *logrus.Logger {
	Log = logrus.New()
	Log.SetFormatter(&logrus.JSONFormatter{})
	Log.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
	return Log
}

// Component returns an entry tagged with the component name.
func Component(name string) *logrus.Entry {
	if Log == nil {
		InitLogger("info")
	}
	return Log.WithField("component", name)
}
