package pushflow

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestQuoting(t *testing.T) {
	tf := &LtsvFormatter{}

	checkQuoting := func(q bool, value interface{}) {
		b, _ := tf.Format(logrus.WithField("test", value))
		idx := bytes.Index(b, ([]byte)("test:"))
		cont := bytes.Equal(b[idx+5:idx+6], []byte{'"'})
		if cont != q {
			if q {
				t.Errorf("quoting expected for: %#v", value)
			} else {
				t.Errorf("quoting not expected for: %#v", value)
			}
		}
	}

	checkQuoting(false, "abcd")
	checkQuoting(false, "v1.0")
	checkQuoting(false, "1234567890")
	checkQuoting(false, "resp_uid")
	checkQuoting(false, "2020-09-13T12:26:40Z")
	checkQuoting(true, "12:26 40")
	checkQuoting(true, `say "hi"`)
	checkQuoting(true, "/foobar")
	checkQuoting(true, "x y")
	checkQuoting(true, "x,y")
	checkQuoting(true, "")
	checkQuoting(false, errors.New("invalid"))
	checkQuoting(true, errors.New("invalid argument"))
	checkQuoting(false, 410)
	checkQuoting(false, 0.25)
}

func TestLtsvLine(t *testing.T) {
	tf := &LtsvFormatter{TimestampFormat: time.RFC3339}
	entry := logrus.WithFields(logrus.Fields{
		"status": 410,
		"token":  "abcd",
		"time":   "clash",
		"reason": "line\tbreak\n",
	})
	entry.Time = time.Date(2020, 9, 13, 12, 26, 40, 0, time.UTC)
	entry.Level = logrus.WarnLevel
	entry.Message = "gone"

	b, err := tf.Format(entry)
	if err != nil {
		t.Fatal(err)
	}
	want := "level:warning\tmsg:gone\tfields.time:clash\treason:\"line\\tbreak\\n\"\tstatus:410\ttoken:abcd\ttime:2020-09-13T12:26:40Z\n"
	if string(b) != want {
		t.Errorf("unexpected line:\n got %q\nwant %q", string(b), want)
	}
	if strings.Count(string(b), "\n") != 1 {
		t.Errorf("one record per line expected: %q", string(b))
	}
	if _, ok := entry.Data["fields.time"]; ok {
		t.Error("entry data must not be modified")
	}
}
