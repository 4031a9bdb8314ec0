package logging

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. Every entry is one JSON object per line
// with the timestamp under "ts" in the given location.
func New(level string, loc *time.Location) *logrus.Logger {
	return NewWithWriter(os.Stdout, level, loc)
}

// NewWithWriter is New with an explicit destination, used by tests.
func NewWithWriter(w io.Writer, level string, loc *time.Location) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&locationFormatter{
		loc: loc,
		JSONFormatter: logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "ts",
			},
		},
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

type locationFormatter struct {
	logrus.JSONFormatter
	loc *time.Location
}

func (f *locationFormatter) Format(e *logrus.Entry) ([]byte, error) {
	if f.loc != nil {
		e.Time = e.Time.In(f.loc)
	}
	return f.JSONFormatter.Format(e)
}
