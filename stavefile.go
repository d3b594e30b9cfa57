//go:build stave

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
)

// Default target when running `stave` with no arguments.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"l": Lint,
	"i": Install,
	"c": Clean,
	"s": Smoke,
}

const (
	binaryName = "filedex"
	mainPkg    = "./cmd/filedex"
	binDir     = "bin"
)

// All lints, tests, builds and smoke-tests the binary.
func All() error {
	st.Deps(Lint, Test)
	st.Deps(Build)
	st.Deps(Smoke)
	return nil
}

// Build compiles the filedex binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating bin directory: %w", err)
	}
	return sh.RunV("go", "build", "-ldflags", buildLdflags(), "-o", binaryPath(), mainPkg)
}

// Install runs go install with version information.
func Install() error {
	return sh.RunV(st.GoCmd(), "install", "-ldflags", buildLdflags(), mainPkg)
}

// Test runs all tests with race detection and coverage.
func Test() error {
	return sh.RunV("go", "test", "-race", "-cover", "./...")
}

// Smoke builds an archive from a small manifest with the compiled binary
// and checks that searching it finds the expected paths.
func Smoke() error {
	st.Deps(Build)

	dir, err := os.MkdirTemp("", "filedex-smoke-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	manifest := filepath.Join(dir, "filelist.json")
	content := "\ufeff" + `[{"path":"C:\\data\\","type":"Folder"},` +
		`{"path":"C:\\data\\mydoc.txt","type":"File"},` +
		`{"path":"C:\\data\\myvideo.mp4","type":"File"}]`
	if err := os.WriteFile(manifest, []byte(content), 0o644); err != nil {
		return err
	}

	bin := binaryPath()
	for _, codec := range []string{"gzip", "zstd", "lz4", "none"} {
		archivePath := filepath.Join(dir, "index-"+codec)
		if err := sh.Run(bin, "create", "-q", "-c", codec, manifest, archivePath); err != nil {
			return fmt.Errorf("create (%s): %w", codec, err)
		}
		out, err := sh.Output(bin, "search", "--no-color", archivePath, "my")
		if err != nil {
			return fmt.Errorf("search (%s): %w", codec, err)
		}
		if want := "C:\\data\\mydoc.txt\nC:\\data\\myvideo.mp4"; out != want {
			return fmt.Errorf("search (%s) = %q, want %q", codec, out, want)
		}
		if st.Verbose() {
			fmt.Printf("smoke %s: ok\n", codec)
		}
	}
	return nil
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if st.Verbose() {
		fmt.Printf("Removing %s/\n", binDir)
	}
	return sh.Rm(binDir + "/")
}

// Fmt formats all Go code.
func Fmt() error {
	if err := sh.Run("gofmt", "-w", "."); err != nil {
		return fmt.Errorf("running gofmt: %w", err)
	}
	return sh.Run("goimports", "-w", ".")
}

// Tidy runs go mod tidy.
func Tidy() error {
	return sh.RunV("go", "mod", "tidy")
}

func binaryPath() string {
	p := filepath.Join(binDir, binaryName)
	if runtime.GOOS == "windows" {
		p += ".exe"
	}
	return p
}

// buildLdflags injects version, commit and date into package main.
func buildLdflags() string {
	version := "dev"
	commit := "unknown"
	date := time.Now().UTC().Format(time.RFC3339)

	if v, err := sh.Output("git", "describe", "--tags", "--always"); err == nil && v != "" {
		version = strings.TrimSpace(v)
	}
	if c, err := sh.Output("git", "rev-parse", "--short", "HEAD"); err == nil && c != "" {
		commit = strings.TrimSpace(c)
	}

	return fmt.Sprintf("-s -w -X main.version=%s -X main.commit=%s -X main.date=%s", version, commit, date)
}
