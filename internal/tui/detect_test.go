package tui

import (
	"bytes"
	"os"
	"testing"
)

func TestDetectMode_EnvironmentForcesPlain(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"EGRESOS_PLAIN", map[string]string{"EGRESOS_PLAIN": "1", "CI": "", "NO_COLOR": ""}},
		{"CI", map[string]string{"EGRESOS_PLAIN": "", "CI": "true", "NO_COLOR": ""}},
		{"NO_COLOR", map[string]string{"EGRESOS_PLAIN": "", "CI": "", "NO_COLOR": "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := DetectMode(os.Stdout); got != ModePlain {
				t.Errorf("DetectMode() = %d, want ModePlain", got)
			}
		})
	}
}

func TestDetectMode_NonFileWriter(t *testing.T) {
	t.Setenv("EGRESOS_PLAIN", "")
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "")

	if got := DetectMode(&bytes.Buffer{}); got != ModePlain {
		t.Errorf("DetectMode() = %d, want ModePlain", got)
	}
}

func TestDetectMode_RegularFile(t *testing.T) {
	t.Setenv("EGRESOS_PLAIN", "")
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "")

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got := DetectMode(f); got != ModePlain {
		t.Errorf("DetectMode() = %d, want ModePlain", got)
	}
}
