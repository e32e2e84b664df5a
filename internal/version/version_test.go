package version

import (
	"strings"
	"testing"
)

func TestString_ContainsAllThreeFields(t *testing.T) {
	t.Parallel()

	origV, origC, origB := Version, Commit, BuildDate
	Version, Commit, BuildDate = "1.2.3", "abc123", "2026-08-06"
	t.Cleanup(func() { Version, Commit, BuildDate = origV, origC, origB })

	got := String()
	for _, want := range []string{"1.2.3", "abc123", "2026-08-06"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, expected it to contain %q", got, want)
		}
	}
}
