package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

type nilErr struct{}

func (*nilErr) Error() string { return "never" }

func TestFormatNilErrorField(t *testing.T) {
	var ne *nilErr

	c := DebugConfig()
	tf := &textFormatter{c.TextFormat, jsonFormatter{conf: c.JSONFormat}}

	entry := logrus.WithFields(logrus.Fields{
		"ns":        "TEST",
		"nil value": ne,
	})
	if _, err := tf.Format(entry); err != nil {
		t.Fatal(err)
	}
}

func TestFormatColoredText(t *testing.T) {
	c := DebugConfig()
	c.TextFormat.DisableTimestamp = true
	tf := &textFormatter{c.TextFormat, jsonFormatter{conf: c.JSONFormat}}

	entry := logrus.WithFields(logrus.Fields{
		"ns":    "submit",
		"job":   "train",
		"error": errors.New("boom"),
		"lines": "one\ntwo",
	})
	entry.Message = "Job failed"
	entry.Buffer = &bytes.Buffer{}

	out, err := tf.Format(entry)
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	for _, want := range []string{"submit", "Job failed", "train", "boom", "one\n" + strings.Repeat(" ", 21) + "two"} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected %q in output:\n%s", want, s)
		}
	}
}
