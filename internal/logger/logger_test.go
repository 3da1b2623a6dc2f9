package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestVerboseToggle(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	SetVerbose(false)
	Debug("hidden %d", 1)
	if buf.Len() != 0 {
		t.Error("nothing should be written while verbose is off")
	}

	SetVerbose(true)
	defer SetVerbose(false)

	Section("Vectorization")
	Debug("chunks: %d", 3)
	Info("stored %d records", 3)
	Warn("item %d failed", 2)

	out := buf.String()
	for _, want := range []string{"=== Vectorization ===", "[DEBUG] chunks: 3", "[INFO] stored 3 records", "[WARN] item 2 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if !IsVerbose() {
		t.Error("IsVerbose should report the enabled state")
	}
}
