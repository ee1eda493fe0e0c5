package repo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()

	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init(%q): %v", dir, err)
	}
	if r.RootDir != dir {
		t.Errorf("RootDir = %q, want %q", r.RootDir, dir)
	}

	gitDir := filepath.Join(dir, ".git")
	if r.GitDir != gitDir {
		t.Errorf("GitDir = %q, want %q", r.GitDir, gitDir)
	}

	assertDir(t, gitDir)
	assertFile(t, filepath.Join(gitDir, "HEAD"))
	assertDir(t, filepath.Join(gitDir, "objects"))
	assertDir(t, filepath.Join(gitDir, "refs", "heads"))

	if r.Store == nil {
		t.Error("Store is nil after Init")
	}
}

func TestInit_ExistingRepo_Error(t *testing.T) {
	dir := t.TempDir()

	if _, err := Init(dir); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	if _, err := Init(dir); err == nil {
		t.Fatal("second Init should fail on existing repo, got nil error")
	}
}

func TestInit_HeadDefault(t *testing.T) {
	dir := t.TempDir()

	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(r.GitDir, "HEAD"))
	if err != nil {
		t.Fatalf("read HEAD: %v", err)
	}
	if string(data) != "ref: refs/heads/main\n" {
		t.Errorf("HEAD content = %q, want %q", data, "ref: refs/heads/main\n")
	}

	ref, err := r.Head()
	if err != nil {
		t.Fatalf("Head(): %v", err)
	}
	if ref != "refs/heads/main" {
		t.Errorf("Head() = %q, want %q", ref, "refs/heads/main")
	}
}

func TestOpen_FromSubdirectory(t *testing.T) {
	dir := t.TempDir()

	if _, err := Init(dir); err != nil {
		t.Fatalf("Init: %v", err)
	}

	sub := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	r, err := Open(sub)
	if err != nil {
		t.Fatalf("Open(%q): %v", sub, err)
	}
	if r.RootDir != dir {
		t.Errorf("RootDir = %q, want %q", r.RootDir, dir)
	}
	if r.GitDir != filepath.Join(dir, ".git") {
		t.Errorf("GitDir = %q, want %q", r.GitDir, filepath.Join(dir, ".git"))
	}
}

func TestOpen_NoRepo_Error(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatal("Open should fail in non-repo directory, got nil error")
	}
}

// helpers

func assertDir(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory %q to exist: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("%q exists but is not a directory", path)
	}
}

func assertFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected file %q to exist: %v", path, err)
		return
	}
	if info.IsDir() {
		t.Errorf("%q exists but is a directory, expected file", path)
	}
}
