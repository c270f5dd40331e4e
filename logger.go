package pushflow

import (
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
)

// LogWithFields wraps logrus's WithFields
func LogWithFields(fields map[string]interface{}) *logrus.Entry {
	_, file, line, _ := runtime.Caller(1)

	fields["file"] = file
	fields["line"] = fmt.Sprintf("%d", line)

	return logrus.WithFields(fields)
}

// InitLogrus configures the standard logger from a format name and a level name.
func InitLogrus(format, level string) error {
	switch format {
	case LogFormatLTSV:
		logrus.SetFormatter(&LtsvFormatter{})
	case LogFormatJSON:
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case LogFormatText, "":
		logrus.SetFormatter(&logrus.TextFormatter{})
	default:
		return fmt.Errorf("unknown log format: %s", format)
	}

	if level == "" {
		return nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	return nil
}
