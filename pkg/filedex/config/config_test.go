package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	for _, key := range []string{"OUTPUT", "COMPRESSION", "COMPRESSION_LEVEL", "COLOR", "FORMAT", "TEMPLATE", "LOGGING_LEVEL", "LOGGING_PATH"} {
		t.Setenv(EnvPrefix+"_"+key, "")
		os.Unsetenv(EnvPrefix + "_" + key)
	}
	return home
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output != DefaultOutput {
		t.Errorf("Output = %q, want %q", cfg.Output, DefaultOutput)
	}
	if cfg.Compression != DefaultCompression {
		t.Errorf("Compression = %q, want %q", cfg.Compression, DefaultCompression)
	}
	if cfg.CompressionLevel != DefaultCompressionLevel {
		t.Errorf("CompressionLevel = %d, want %d", cfg.CompressionLevel, DefaultCompressionLevel)
	}
	if !cfg.Color {
		t.Error("Color = false, want true")
	}
	if cfg.Format != DefaultFormat {
		t.Errorf("Format = %q, want %q", cfg.Format, DefaultFormat)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, DefaultLogLevel)
	}
	if cfg.Logging.Path != "" {
		t.Errorf("Logging.Path = %q, want empty", cfg.Logging.Path)
	}
}

func TestLoad_FromFile(t *testing.T) {
	home := isolate(t)
	configDir := filepath.Join(home, ".config", "filedex")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	content := `
output: backups.fdx.zst
compression: zstd
compression_level: 9
color: false
format: json
logging:
  level: debug
  path: ~/logs/filedex.log
`
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output != "backups.fdx.zst" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if cfg.Compression != "zstd" || cfg.CompressionLevel != 9 {
		t.Errorf("Compression = %q level %d", cfg.Compression, cfg.CompressionLevel)
	}
	if cfg.Color {
		t.Error("Color = true, want false")
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q", cfg.Format)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if want := filepath.Join(home, "logs", "filedex.log"); cfg.Logging.Path != want {
		t.Errorf("Logging.Path = %q, want %q", cfg.Logging.Path, want)
	}
}

func TestLoad_XDGConfigHome(t *testing.T) {
	isolate(t)
	xdgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdgHome)

	dir := filepath.Join(xdgHome, "filedex")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("format: csv\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Format != "csv" {
		t.Errorf("Format = %q, want csv", cfg.Format)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	isolate(t)
	file := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(file, []byte("compression: lz4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Compression != "lz4" {
		t.Errorf("Compression = %q, want lz4", cfg.Compression)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() with missing explicit file succeeded")
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", "filedex")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("format: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(""); err == nil {
		t.Error("Load() with malformed YAML succeeded")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("FILEDEX_COMPRESSION", "none")
	t.Setenv("FILEDEX_COLOR", "false")
	t.Setenv("FILEDEX_LOGGING_LEVEL", "error")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Compression != "none" {
		t.Errorf("Compression = %q, want none", cfg.Compression)
	}
	if cfg.Color {
		t.Error("Color = true, want false")
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error", cfg.Logging.Level)
	}
}

func TestWriteDefault(t *testing.T) {
	home := isolate(t)

	path, err := WriteDefault()
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	if want := filepath.Join(home, ".config", "filedex", "config.yaml"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "output: "+DefaultOutput) {
		t.Errorf("default config missing output key:\n%s", data)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() of written default error = %v", err)
	}
	if cfg.Output != DefaultOutput || cfg.Format != DefaultFormat || !cfg.Color {
		t.Errorf("written default does not round trip: %+v", cfg)
	}

	if err := os.WriteFile(path, []byte("format: yaml\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteDefault(); err != nil {
		t.Fatalf("second WriteDefault() error = %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "format: yaml\n" {
		t.Error("WriteDefault overwrote an existing file")
	}
}

func TestExpandPath(t *testing.T) {
	home := isolate(t)

	tests := []struct {
		in, want string
	}{
		{"~/x/y.log", filepath.Join(home, "x", "y.log")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
	}
	for _, tt := range tests {
		got, err := ExpandPath(tt.in)
		if err != nil {
			t.Fatalf("ExpandPath(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultLogPath(t *testing.T) {
	if !strings.HasSuffix(DefaultLogPath(), filepath.Join("filedex", "filedex.log")) {
		t.Errorf("DefaultLogPath() = %q", DefaultLogPath())
	}
}
