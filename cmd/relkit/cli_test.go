package main

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"relkit/internal/config"
	"relkit/internal/version"
)

func mustParse(t *testing.T, s string) version.Version {
	t.Helper()
	v, err := version.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestInitCmd(t *testing.T) {
	root := setupGlobals(t)

	initForce = false
	if err := initCmd.RunE(initCmd, nil); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	path := filepath.Join(root, config.Dir, config.FileName)
	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("scaffolded config does not load: %v", err)
	}
	if len(loaded.Notes.Categories) == 0 {
		t.Error("scaffolded config should carry default categories")
	}

	// Second run refuses without --force.
	if err := initCmd.RunE(initCmd, nil); err == nil {
		t.Error("init should refuse to overwrite")
	}
	initForce = true
	defer func() { initForce = false }()
	if err := initCmd.RunE(initCmd, nil); err != nil {
		t.Errorf("init --force failed: %v", err)
	}
}

func TestBumpCmd_Patch(t *testing.T) {
	root := setupGlobals(t)

	path := filepath.Join(root, "version.txt")
	if err := os.WriteFile(path, []byte("__version__: v0.1.47\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := bumpCmd.RunE(bumpCmd, []string{"patch"}); err != nil {
		t.Fatalf("bump failed: %v", err)
	}

	v, err := version.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "v0.1.48" {
		t.Errorf("marker = %s, want v0.1.48", v)
	}
}

func TestBumpCmd_Set(t *testing.T) {
	root := setupGlobals(t)

	path := filepath.Join(root, "version.txt")
	if err := os.WriteFile(path, []byte("__version__: v0.1.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	bumpSet = "v2.0.0"
	defer func() { bumpSet = "" }()

	if err := bumpCmd.RunE(bumpCmd, nil); err != nil {
		t.Fatalf("bump --set failed: %v", err)
	}

	v, err := version.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "v2.0.0" {
		t.Errorf("marker = %s", v)
	}
}

func TestBumpCmd_RequiresMode(t *testing.T) {
	root := setupGlobals(t)

	path := filepath.Join(root, "version.txt")
	if err := os.WriteFile(path, []byte("__version__: v0.1.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := bumpCmd.RunE(bumpCmd, nil); err == nil {
		t.Error("bump without level/--set/--dev should fail")
	}
}

func TestReleaseCmd_RejectsNonAdvancing(t *testing.T) {
	root := setupGlobals(t)
	logger = zap.NewNop()

	path := filepath.Join(root, "version.txt")
	if err := os.WriteFile(path, []byte("__version__: v2.0.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := executeRelease(t.Context(), mustParse(t, "v2.0.0"), mustParse(t, "v1.0.0")); err == nil {
		t.Error("release to an older version should fail")
	}
	if err := executeRelease(t.Context(), mustParse(t, "v2.0.0"), mustParse(t, "v2.0.0")); err == nil {
		t.Error("release to the same version should fail")
	}
}
