package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/nfrund/propdesk/internal/config"
	"github.com/nfrund/propdesk/internal/logging"
)

// ConfigForTests loads the .env.test file and returns a valid config.Provider.
// This is the definitive way to get configuration for tests.
func ConfigForTests(t *testing.T) config.Provider {
	t.Helper()

	root := ProjectRoot(t)
	env, err := godotenv.Read(filepath.Join(root, ".env.test"))
	if err != nil {
		t.Fatalf("failed to load .env.test file: %v", err)
	}

	// t.Setenv restores the previous values when the test ends.
	for key, value := range env {
		t.Setenv(key, value)
	}

	logging.New()

	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("invalid test configuration: %v", err)
	}
	return cfg
}

// ProjectRoot walks up from the working directory to the folder holding go.mod.
func ProjectRoot(t *testing.T) string {
	t.Helper()
	path, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			return path
		}
		if path == filepath.Dir(path) {
			t.Fatalf("could not find project root with go.mod")
		}
		path = filepath.Dir(path)
	}
}
