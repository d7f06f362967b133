package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	v, c, d := Info()
	if v == "" || c == "" || d == "" {
		t.Errorf("Info returned empty fields: %q %q %q", v, c, d)
	}
	if v != GetVersion() {
		t.Errorf("GetVersion (%s) should match Info version (%s)", GetVersion(), v)
	}
}

func TestString(t *testing.T) {
	s := String()
	for _, part := range []string{"version=", "commit=", "date="} {
		if !strings.Contains(s, part) {
			t.Errorf("String should contain %q, got %q", part, s)
		}
	}
}
