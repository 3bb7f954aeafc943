package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { configPath = "" })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConfigInitShowPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	out, err := run(t, "config", "path", "--config", path)
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, want %q", out, path)
	}

	if _, err := run(t, "config", "init", "--config", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := run(t, "config", "init", "--config", path); err == nil {
		t.Error("second config init without --force should fail")
	}

	t.Setenv("PICKUPPAL_LEVEL_UP_POLICY", "loop")
	out, err = run(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, `level_up_policy = "loop"`) {
		t.Errorf("config show missing env override:\n%s", out)
	}
}

func TestServe_InvalidConfig(t *testing.T) {
	t.Setenv("PICKUPPAL_QUEUE_SIZE", "-3")
	if _, err := run(t, "serve", "--config", filepath.Join(t.TempDir(), "none.toml")); err == nil {
		t.Fatal("serve should fail on an invalid config")
	}
}
