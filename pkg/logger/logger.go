package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// InitLogger configures the shared logrus instance. Level defaults to
// info and can be overridden with the LOG_LEVEL env variable.
func InitLogger() {
	// Output to stdout instead of the default stderr
	Log.Out = os.Stdout

	// Structured JSON logs
	Log.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
}
