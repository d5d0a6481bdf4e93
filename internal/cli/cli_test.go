package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		initPath = ""
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out, "sportcheck "+Version) {
		t.Errorf("Unexpected version output: %s", out)
	}
}

func TestConfigShow_RedactsKeys(t *testing.T) {
	t.Setenv("SERPAPI_API_KEY", "serp-secret-1234")

	out, err := execute(t, "config", "show")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if strings.Contains(out, "serp-secret-1234") {
		t.Error("Expected search key to be masked")
	}
	if !strings.Contains(out, "****1234") {
		t.Errorf("Expected masked key in output, got:\n%s", out)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sportcheck.yaml")

	if _, err := execute(t, "config", "init", "--path", path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected config file, got %v", err)
	}
	if !strings.Contains(string(data), "provider: gemini") {
		t.Errorf("Expected default provider in config, got:\n%s", data)
	}

	if _, err := execute(t, "config", "init", "--path", path); err == nil {
		t.Error("Expected error when config already exists")
	}
}

func TestCheck_RequiresConfig(t *testing.T) {
	for _, name := range []string{"GEMINI_API_KEY", "GEMINI_MODEL", "SERPAPI_API_KEY", "SUMMARIZATION_MODEL"} {
		t.Setenv(name, "")
	}

	_, err := execute(t, "check", "Team A won")
	if err == nil || !strings.Contains(err.Error(), "missing required settings") {
		t.Errorf("Expected missing settings error, got %v", err)
	}
}
