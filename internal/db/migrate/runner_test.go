package migrate

import (
	"strings"
	"testing"
)

func TestRun_EmptyDSN(t *testing.T) {
	err := Run("", "up")
	if err == nil {
		t.Fatal("Run with empty DSN should fail")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("error = %q, should name DATABASE_URL", err.Error())
	}
}

func TestRun_InvalidDirection(t *testing.T) {
	for _, direction := range []string{"", "sideways", "UP", "Down"} {
		err := Run("postgres://localhost/webstack", direction)
		if err == nil {
			t.Errorf("Run with direction %q should fail", direction)
			continue
		}
		if !strings.Contains(err.Error(), "direction") {
			t.Errorf("direction %q: error = %q, should reject the direction", direction, err.Error())
		}
	}
}

func TestRun_ValidDirectionsReachTheDatabase(t *testing.T) {
	// No database listens here; both directions must get past validation and
	// fail on the connection instead.
	for _, direction := range []string{"up", "down"} {
		err := Run("postgres://localhost:1/webstack", direction)
		if err == nil {
			t.Errorf("direction %q: expected connection failure", direction)
			continue
		}
		if strings.Contains(err.Error(), "direction") {
			t.Errorf("direction %q rejected: %v", direction, err)
		}
	}
}
