package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

const projectName = "metronome"

var (
	projectLogger *logrus.Logger
	loggerOnce    sync.Once
)

func base() *logrus.Logger {
	loggerOnce.Do(func() {
		projectLogger = logrus.New()
		projectLogger.SetOutput(os.Stderr)
		projectLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		projectLogger.SetLevel(logrus.InfoLevel)
	})
	return projectLogger
}

// GetProjectLogger returns the shared project logger tagged with the project name.
func GetProjectLogger() *logrus.Entry {
	return base().WithField("name", projectName)
}

// SetLevel parses and applies a log level such as "debug" or "warn".
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	base().SetLevel(lvl)
	return nil
}

// SetOutput redirects all project logging. The TUI uses this to keep log
// lines off the terminal it draws on.
func SetOutput(w io.Writer) {
	base().SetOutput(w)
}
