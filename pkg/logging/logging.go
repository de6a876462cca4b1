package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// GetLogger builds the application logger. JSON output for log collectors,
// level from LOG_LEVEL (default info).
func GetLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	level, err := logrus.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}
