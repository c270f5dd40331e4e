package pushflow

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// LtsvFormatter is ltsv format for logrus
type LtsvFormatter struct {
	DisableTimestamp bool
	TimestampFormat  string
	DisableSorting   bool
}

// reserved labels written before or after the entry fields
var reservedLabels = []string{"level", "msg", "time"}

// Format entry
func (f *LtsvFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	data := make(logrus.Fields, len(entry.Data))
	for k, v := range entry.Data {
		data[k] = v
	}
	prefixFieldClashes(data)

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	if !f.DisableSorting {
		sort.Strings(keys)
	}

	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = time.RFC3339
	}

	b := &bytes.Buffer{}
	f.appendKeyValue(b, "level", entry.Level.String())
	if entry.Message != "" {
		f.appendKeyValue(b, "msg", entry.Message)
	}
	for _, key := range keys {
		f.appendKeyValue(b, key, data[key])
	}
	if !f.DisableTimestamp {
		f.appendKeyValue(b, "time", entry.Time.Format(timestampFormat))
	}

	// replace the trailing tab
	if b.Len() > 0 {
		b.Truncate(b.Len() - 1)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// isPlain reports whether text can be written as an LTSV value without quoting.
func isPlain(text string) bool {
	if text == "" {
		return false
	}
	for _, ch := range text {
		if !((ch >= 'a' && ch <= 'z') ||
			(ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') ||
			ch == '-' || ch == '.' || ch == '_' || ch == ':') {
			return false
		}
	}
	return true
}

func (f *LtsvFormatter) appendKeyValue(b *bytes.Buffer, key string, value interface{}) {
	b.WriteString(key)
	b.WriteByte(':')

	switch value := value.(type) {
	case string:
		writeString(b, value)
	case int:
		b.WriteString(strconv.Itoa(value))
	case int64:
		b.WriteString(strconv.FormatInt(value, 10))
	case int32:
		b.WriteString(strconv.FormatInt(int64(value), 10))
	case float64:
		b.WriteString(strconv.FormatFloat(value, 'f', -1, 64))
	case float32:
		b.WriteString(strconv.FormatFloat(float64(value), 'f', -1, 32))
	case bool:
		b.WriteString(strconv.FormatBool(value))
	case error:
		writeString(b, value.Error())
	case fmt.Stringer:
		writeString(b, value.String())
	default:
		writeString(b, fmt.Sprintf("%v", value))
	}

	b.WriteByte('\t')
}

func writeString(b *bytes.Buffer, s string) {
	if isPlain(s) {
		b.WriteString(s)
		return
	}
	// strconv.Quote escapes tab and newline, so the line stays one record.
	b.WriteString(strconv.Quote(s))
}

func prefixFieldClashes(data logrus.Fields) {
	for _, label := range reservedLabels {
		if v, ok := data[label]; ok {
			data["fields."+label] = v
			delete(data, label)
		}
	}
}
