package cli

import (
	"io"

	"github.com/sirupsen/logrus"
)

// newLogger returns a logger writing debug output to w when debug is set,
// and discarding everything otherwise.
func newLogger(debug bool, w io.Writer) *logrus.Entry {
	log := logrus.New()

	if debug {
		log.SetOutput(w)
		log.SetLevel(logrus.DebugLevel)
		log.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	} else {
		log.Out = io.Discard
		log.SetLevel(logrus.ErrorLevel)
	}

	return logrus.NewEntry(log)
}
