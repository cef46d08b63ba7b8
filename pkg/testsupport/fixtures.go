// Package testsupport holds helpers shared by this module's tests: fixture
// loading and test data generation.
package testsupport

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
)

// NewID generates a fresh identifier for test records.
func NewID() string {
	return uuid.NewString()
}

// LoadFixture loads raw test data from a fixture file. The path is relative
// to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}
	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals
// it into dest.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	if err := json.Unmarshal(LoadFixture(t, path), dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}
